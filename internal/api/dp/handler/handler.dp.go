// Package dphdl - handler do DP: fila em cards e formulário de processamento.
package dphdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/base/handler"
	dpdto "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/dp/dto"
	dpsvc "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/dp/service"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/api/middleware"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/global"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/logger"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/web"
)

const (
	queuePath    = "/dp"
	msgProcessed = "Relatório processado e enviado para o tráfego."
)

// QueuePage é o view-model da fila do DP
type QueuePage struct {
	Cards []dpsvc.Card
}

// DPHandler trata as rotas do DP
type DPHandler struct {
	Service *dpsvc.DPService
}

// NewDPHandler cria uma nova instância de DPHandler
func NewDPHandler() (*DPHandler, error) {
	if global.Backend == nil || global.Guard == nil {
		return nil, fmt.Errorf("backend ou guarda não inicializados")
	}
	var notifier dpsvc.Notifier
	if global.Notifier != nil {
		notifier = global.Notifier
	}
	return &DPHandler{Service: dpsvc.NewDPService(global.Backend, global.Guard, notifier)}, nil
}

// HandleQueue mostra os relatórios EM_DP
func (h *DPHandler) HandleQueue(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		cards, err := h.Service.Queue(c.Context(), middleware.BackendCookie(c))
		if err != nil {
			return basehdl.HandleError(c, err)
		}
		return basehdl.Render(c, common.StatusOK, web.PageDPQueue, basehdl.NewView(c, "DP", QueuePage{Cards: cards}))
	})
}

// HandleProcessPage abre o formulário vazio
func (h *DPHandler) HandleProcessPage(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		return h.renderForm(c, common.StatusOK, dpsvc.NewProcessForm(dpdto.ProcessInput{}))
	})
}

// HandleProcess trata as ações do formulário: adicionar/remover documento re-renderiza, confirmar envia
func (h *DPHandler) HandleProcess(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input dpdto.ProcessInput
		if err := c.Bind().Form(&input); err != nil {
			return basehdl.HandleError(c, common.ErrInvalidInput)
		}
		form := dpsvc.NewProcessForm(input)
		if err := global.Validate.Struct(input); err != nil {
			form.Error = global.FirstValidationMessage(err)
			return h.renderForm(c, common.StatusBadRequest, form)
		}

		if !form.Apply(input.Acao, input.NovoDocumento) {
			return h.renderForm(c, common.StatusOK, form)
		}

		user, _ := middleware.CurrentUser(c)
		id := c.Params("id")
		r, err := h.Service.Process(c.Context(), middleware.BackendCookie(c), user, id, form)
		if err != nil {
			switch status := common.StatusOf(err); {
			case status == common.StatusUnauthorized:
				return basehdl.HandleError(c, err)
			case status < common.StatusInternalServerError:
				logger.WithRequestModule(c, "dp").WithError(err).WithField("relatorio_id", id).Warn("Processamento recusado")
				form.Error = common.MessageOf(err)
				return h.renderForm(c, status, form)
			default:
				return basehdl.HandleError(c, err)
			}
		}

		logger.LogStatusChange(c, id, string(r.Status), string(relatorio.StatusEmTrafego), map[string]interface{}{
			"numero_os":  r.NumeroOS,
			"documentos": len(form.Documentos),
		})
		return basehdl.RedirectWith(c, queuePath, "ok", msgProcessed)
	})
}

func (h *DPHandler) renderForm(c fiber.Ctx, status int, form *dpsvc.ProcessForm) error {
	page, err := h.Service.Load(c.Context(), middleware.BackendCookie(c), c.Params("id"), form)
	if err != nil {
		return basehdl.HandleError(c, err)
	}
	return basehdl.Render(c, status, web.PageDPProcess, basehdl.NewView(c, "Processar OS "+page.Report.NumeroOS, page))
}
