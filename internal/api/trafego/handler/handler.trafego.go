// Package trafegohdl - handler do tráfego: fila de cobranças e marcação como cobrado.
package trafegohdl

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/base/handler"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/api/middleware"
	trafegodto "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/trafego/dto"
	trafegosvc "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/trafego/service"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/global"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/logger"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/web"
)

const (
	queuePath = "/trafego"
	msgBilled = "Cobrança marcada como realizada."
)

// QueuePage é o view-model da fila do tráfego
type QueuePage struct {
	trafegosvc.Queue
	Question string
}

// TrafegoHandler trata as rotas do tráfego
type TrafegoHandler struct {
	Service *trafegosvc.TrafegoService
}

// NewTrafegoHandler cria uma nova instância de TrafegoHandler
func NewTrafegoHandler() (*TrafegoHandler, error) {
	if global.Backend == nil || global.Guard == nil {
		return nil, fmt.Errorf("backend ou guarda não inicializados")
	}
	var notifier trafegosvc.Notifier
	if global.Notifier != nil {
		notifier = global.Notifier
	}
	return &TrafegoHandler{Service: trafegosvc.NewTrafegoService(global.Backend, global.Guard, notifier)}, nil
}

// HandleQueue mostra as cobranças EM_TRAFEGO
func (h *TrafegoHandler) HandleQueue(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		q, err := h.Service.Queue(c.Context(), middleware.BackendCookie(c))
		if err != nil {
			return basehdl.HandleError(c, err)
		}
		return basehdl.Render(c, common.StatusOK, web.PageTrafegoQueue, basehdl.NewView(c, "Tráfego", QueuePage{
			Queue:    q,
			Question: trafegosvc.ConfirmText,
		}))
	})
}

// HandleConfirmPage mostra a confirmação sem depender de JavaScript
func (h *TrafegoHandler) HandleConfirmPage(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		return h.renderConfirm(c, common.StatusOK)
	})
}

// HandleMarkBilled marca a cobrança; sem confirmar=sim devolve a página de confirmação
func (h *TrafegoHandler) HandleMarkBilled(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input trafegodto.CobrarInput
		_ = c.Bind().Form(&input)

		user, _ := middleware.CurrentUser(c)
		id := c.Params("id")
		r, err := h.Service.MarkBilled(c.Context(), middleware.BackendCookie(c), user, id, input.Confirmar)
		if err != nil {
			if errors.Is(err, trafegosvc.ErrNotConfirmed) {
				return h.renderConfirm(c, common.StatusOK)
			}
			if common.StatusOf(err) == common.StatusUnauthorized {
				return basehdl.HandleError(c, err)
			}
			logger.WithRequestModule(c, "trafego").WithError(err).WithField("relatorio_id", id).Warn("Cobrança recusada")
			return basehdl.RedirectWith(c, queuePath, "erro", common.MessageOf(err))
		}

		logger.LogStatusChange(c, id, string(r.Status), string(relatorio.StatusCobrado), map[string]interface{}{
			"numero_os": r.NumeroOS,
			"valor":     r.ValorText(),
		})
		return basehdl.RedirectWith(c, queuePath, "ok", msgBilled)
	})
}

func (h *TrafegoHandler) renderConfirm(c fiber.Ctx, status int) error {
	conf, err := h.Service.Confirmation(c.Context(), middleware.BackendCookie(c), c.Params("id"))
	if err != nil {
		return basehdl.HandleError(c, err)
	}
	return basehdl.Render(c, status, web.PageTrafegoConfirm, basehdl.NewView(c, "Confirmar cobrança", conf))
}
