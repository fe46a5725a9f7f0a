// Package adminhdl - handler do administrativo: listagem, detalhe, envio ao DP e exportações.
package adminhdl

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	admindto "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/admin/dto"
	adminsvc "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/admin/service"
	basehdl "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/base/handler"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/api/middleware"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/global"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/logger"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/web"
)

const (
	listPath   = "/admin"
	mimeXLSX   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	msgEnviado = "Relatório enviado para o DP."
)

// AdminHandler trata as rotas do administrativo
type AdminHandler struct {
	Service *adminsvc.AdminService
	now     func() time.Time
}

// NewAdminHandler cria uma nova instância de AdminHandler
func NewAdminHandler() (*AdminHandler, error) {
	if global.Backend == nil || global.Guard == nil {
		return nil, fmt.Errorf("backend ou guarda não inicializados")
	}
	var notifier adminsvc.Notifier
	if global.Notifier != nil {
		notifier = global.Notifier
	}
	return &AdminHandler{
		Service: adminsvc.NewAdminService(global.Backend, global.Guard, notifier),
		now:     time.Now,
	}, nil
}

// bindFilters lê e valida os filtros da query
func bindFilters(c fiber.Ctx) (admindto.ListQuery, error) {
	var q admindto.ListQuery
	if err := c.Bind().Query(&q); err != nil {
		return q, common.ErrInvalidInput
	}
	if err := global.Validate.Struct(q.Filters()); err != nil {
		return q, common.NewError(common.ErrCodeValidationInput, global.FirstValidationMessage(err), common.StatusBadRequest, nil)
	}
	return q, nil
}

// HandleList mostra a listagem filtrada e paginada com as estatísticas
func (h *AdminHandler) HandleList(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		q, err := bindFilters(c)
		if err != nil {
			return basehdl.HandleError(c, err)
		}
		page, err := h.Service.ListPage(c.Context(), middleware.BackendCookie(c), q.Filters(), q.Page)
		if err != nil {
			return basehdl.HandleError(c, err)
		}
		return basehdl.Render(c, common.StatusOK, web.PageAdminList, basehdl.NewView(c, "Relatórios", page))
	})
}

// HandleDetail mostra um relatório; os filtros da query voltam no link "Voltar"
func (h *AdminHandler) HandleDetail(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		q, err := bindFilters(c)
		if err != nil {
			q = admindto.ListQuery{}
		}
		detail, err := h.Service.Detail(c.Context(), middleware.BackendCookie(c), c.Params("id"), q.Filters())
		if err != nil {
			return basehdl.HandleError(c, err)
		}
		return basehdl.Render(c, common.StatusOK, web.PageAdminDetail, basehdl.NewView(c, "OS "+detail.Report.NumeroOS, detail))
	})
}

// HandleByNumero abre o detalhe pelo número da OS
func (h *AdminHandler) HandleByNumero(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var q admindto.OSQuery
		if err := c.Bind().Query(&q); err != nil {
			return basehdl.HandleError(c, common.ErrInvalidInput)
		}
		q.NumeroOS = strings.TrimSpace(q.NumeroOS)
		if err := global.Validate.Struct(q); err != nil {
			return basehdl.RedirectWith(c, listPath, "erro", "Informe o número da OS.")
		}
		r, err := h.Service.ByNumero(c.Context(), middleware.BackendCookie(c), q.NumeroOS)
		if err != nil {
			if common.StatusOf(err) == common.StatusNotFound {
				return basehdl.RedirectWith(c, listPath, "erro", "OS "+q.NumeroOS+" não encontrada.")
			}
			return basehdl.HandleError(c, err)
		}
		return c.Redirect().Status(common.StatusSeeOther).To("/admin/relatorios/" + url.PathEscape(r.ID))
	})
}

// HandleSendToDP finaliza a revisão e volta para a listagem (PRG)
func (h *AdminHandler) HandleSendToDP(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input admindto.SendToDPInput
		_ = c.Bind().Form(&input)
		voltar := safeBack(input.Voltar)

		user, _ := middleware.CurrentUser(c)
		id := c.Params("id")
		r, err := h.Service.SendToDP(c.Context(), middleware.BackendCookie(c), user, id)
		if err != nil {
			if common.StatusOf(err) == common.StatusUnauthorized {
				return basehdl.HandleError(c, err)
			}
			logger.WithRequestModule(c, "admin").WithError(err).WithField("relatorio_id", id).Warn("Envio ao DP recusado")
			return basehdl.RedirectWith(c, voltar, "erro", common.MessageOf(err))
		}

		logger.LogStatusChange(c, id, string(r.Status), string(relatorio.StatusEmDP), map[string]interface{}{"numero_os": r.NumeroOS})
		return basehdl.RedirectWith(c, voltar, "ok", msgEnviado)
	})
}

// safeBack aceita só caminhos locais do administrativo
func safeBack(voltar string) string {
	if strings.HasPrefix(voltar, listPath) && !strings.HasPrefix(voltar, "//") {
		return voltar
	}
	return listPath
}

// HandleExportHTML baixa a exportação HTML do backend
func (h *AdminHandler) HandleExportHTML(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		q, err := bindFilters(c)
		if err != nil {
			return basehdl.HandleError(c, err)
		}
		exp, err := h.Service.ExportHTML(c.Context(), middleware.BackendCookie(c), q.Filters())
		if err != nil {
			return basehdl.HandleError(c, err)
		}
		contentType := exp.ContentType
		if contentType == "" {
			contentType = fiber.MIMETextHTMLCharsetUTF8
		}
		logger.LogAction("exportar_html", c, "", map[string]interface{}{"bytes": len(exp.Body)})
		return sendAttachment(c, adminsvc.ExportFileName(h.now(), "html"), contentType, exp.Body)
	})
}

// HandleExportXLSX gera a planilha com todas as linhas filtradas
func (h *AdminHandler) HandleExportXLSX(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		q, err := bindFilters(c)
		if err != nil {
			return basehdl.HandleError(c, err)
		}
		body, err := h.Service.ExportXLSX(c.Context(), middleware.BackendCookie(c), q.Filters())
		if err != nil {
			return basehdl.HandleError(c, err)
		}
		logger.LogAction("exportar_xlsx", c, "", map[string]interface{}{"bytes": len(body)})
		return sendAttachment(c, adminsvc.ExportFileName(h.now(), "xlsx"), mimeXLSX, body)
	})
}

func sendAttachment(c fiber.Ctx, name, contentType string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Status(common.StatusOK).Send(body)
}
