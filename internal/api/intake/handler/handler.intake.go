// Package intakehdl - handler do porteiro: formulário dinâmico, prévia e envio.
package intakehdl

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/base/handler"
	intakedto "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/intake/dto"
	intakesvc "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/intake/service"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/api/middleware"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/global"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/logger"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/web"
)

const (
	pageTitle       = "Novo relatório"
	resultTitle     = "Relatório enviado"
	maxPhotoBytes   = 10 << 20
	msgTipoInvalido = "Selecione um tipo de relatório válido"
)

// IntakeHandler trata as rotas do porteiro
type IntakeHandler struct {
	Service *intakesvc.IntakeService
	now     func() time.Time
}

// NewIntakeHandler cria uma nova instância de IntakeHandler
func NewIntakeHandler() (*IntakeHandler, error) {
	if global.Backend == nil || global.Guard == nil {
		return nil, fmt.Errorf("backend ou guarda não inicializados")
	}
	return &IntakeHandler{
		Service: intakesvc.NewIntakeService(global.Backend, global.Guard),
		now:     time.Now,
	}, nil
}

// HandleHome atende GET /: porteiro vê o formulário, os outros setores vão para a própria página
func (h *IntakeHandler) HandleHome(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		user, err := middleware.CurrentUser(c)
		if err != nil {
			if errors.Is(err, common.ErrSessionInvalid) {
				middleware.ClearTicket(c)
			}
			return middleware.RedirectToLogin(c, err)
		}
		if user.Setor != session.SetorPorteiro {
			return c.Redirect().Status(common.StatusSeeOther).To(session.HomePath(user.Setor))
		}
		middleware.SetUser(c, user)

		var q intakedto.HomeQuery
		if err := c.Bind().Query(&q); err != nil {
			return basehdl.HandleError(c, common.ErrInvalidInput)
		}
		if err := global.Validate.Struct(q); err != nil {
			q.Tipo = "-"
		}

		types, err := h.Service.ListTypes(c.Context(), middleware.BackendCookie(c))
		if err != nil {
			return basehdl.HandleError(c, err)
		}

		view := basehdl.NewView(c, pageTitle, nil)
		var draft *intakesvc.Draft
		if q.Tipo != "" {
			if t, ok := intakesvc.FindType(types, q.Tipo); ok {
				draft = intakesvc.NewDraft(t.ReportType, user.Nome)
			} else {
				view.Erro = msgTipoInvalido
			}
		}
		view.Data = intakesvc.NewFormPage(types, draft, h.now())
		return basehdl.Render(c, common.StatusOK, web.PageIntake, view)
	})
}

// HandlePreview devolve o texto do relatório para a prévia ao vivo
func (h *IntakeHandler) HandlePreview(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		user, _ := middleware.CurrentUser(c)
		values, files, err := readForm(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidInput)
			return nil
		}

		types, err := h.Service.ListTypes(c.Context(), middleware.BackendCookie(c))
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}
		t, ok := intakesvc.FindType(types, values[intakedto.FieldTipo])
		if !ok || t.SchemaError != "" {
			basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, msgTipoInvalido, common.StatusBadRequest, nil))
			return nil
		}

		d := intakesvc.NewDraft(t.ReportType, user.Nome)
		d.FillFromForm(values, values[intakedto.FieldTocados])
		markPhotos(d, values, files)

		basehdl.HandleResponse(c, intakedto.PreviewResponse{
			Texto:   d.Preview(h.now()),
			Tocados: d.TouchedList(),
		}, nil)
		return nil
	})
}

// HandleSubmit envia o relatório e mostra o texto final para compartilhar
func (h *IntakeHandler) HandleSubmit(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		user, _ := middleware.CurrentUser(c)
		cookie := middleware.BackendCookie(c)

		values, files, err := readForm(c)
		if err != nil {
			return basehdl.HandleError(c, common.ErrInvalidInput)
		}

		types, err := h.Service.ListTypes(c.Context(), cookie)
		if err != nil {
			return basehdl.HandleError(c, err)
		}
		t, ok := intakesvc.FindType(types, values[intakedto.FieldTipo])
		if !ok || t.SchemaError != "" {
			return h.renderForm(c, types, nil, common.StatusBadRequest, msgTipoInvalido)
		}

		d := intakesvc.NewDraft(t.ReportType, user.Nome)
		d.FillFromForm(values, values[intakedto.FieldTocados])
		if err := attachPhotos(d, values, files); err != nil {
			return h.renderForm(c, types, d, common.StatusOf(err), common.MessageOf(err))
		}

		res, err := h.Service.Submit(c.Context(), cookie, user.ID, d, h.now())
		if err != nil {
			if common.StatusOf(err) == common.StatusUnauthorized {
				return basehdl.HandleError(c, err)
			}
			logger.WithRequestModule(c, "intake").WithError(err).Warn("Envio de relatório recusado")
			return h.renderForm(c, types, d, common.StatusOf(err), common.MessageOf(err))
		}

		logger.LogAction("relatorio_criado", c, res.ID, map[string]interface{}{
			"tipo_id":      t.ID,
			"fotos_salvas": res.FotosSalvas,
		})
		view := basehdl.NewView(c, resultTitle, res)
		view.Ok = "Relatório enviado com sucesso!"
		return basehdl.Render(c, common.StatusOK, web.PageIntakeResult, view)
	})
}

func (h *IntakeHandler) renderForm(c fiber.Ctx, types []intakesvc.TypeOption, d *intakesvc.Draft, status int, msg string) error {
	view := basehdl.NewView(c, pageTitle, intakesvc.NewFormPage(types, d, h.now()))
	view.Erro = msg
	return basehdl.Render(c, status, web.PageIntake, view)
}

// readForm lê o formulário em multipart ou urlencoded (a prévia usa urlencoded)
func readForm(c fiber.Ctx) (map[string]string, map[string]*multipart.FileHeader, error) {
	values := make(map[string]string)
	files := make(map[string]*multipart.FileHeader)

	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, err
		}
		for k, vs := range form.Value {
			if len(vs) > 0 {
				values[k] = vs[0]
			}
		}
		for k, fhs := range form.File {
			if len(fhs) > 0 && fhs[0].Size > 0 {
				files[k] = fhs[0]
			}
		}
		return values, files, nil
	}

	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		if _, seen := values[key]; !seen {
			values[key] = string(v)
		}
	})
	return values, files, nil
}

// attachPhotos lê as fotos novas e reanexa as que voltaram em campos ocultos
func attachPhotos(d *intakesvc.Draft, values map[string]string, files map[string]*multipart.FileHeader) error {
	for _, campo := range d.Tipo.Campos {
		if !campo.IsFile() {
			continue
		}
		name := campo.Name
		if fh, ok := files[name]; ok {
			data, err := readFile(fh)
			if err != nil {
				return common.NewError(common.ErrCodeValidationInput, "Não foi possível ler a foto de "+campo.Label, common.StatusBadRequest, err.Error())
			}
			if err := d.AttachPhoto(name, fh.Filename, data); err != nil {
				return err
			}
			continue
		}
		if values[intakedto.PhotoRemovePfx+name] != "" {
			d.RemovePhoto(name)
			continue
		}
		if dataURL := values[intakedto.PhotoDataPfx+name]; dataURL != "" {
			if err := d.RestorePhoto(name, values[intakedto.PhotoNamePfx+name], dataURL); err != nil {
				return err
			}
		}
	}
	return nil
}

// markPhotos só registra quais campos têm foto; a prévia não precisa dos bytes
func markPhotos(d *intakesvc.Draft, values map[string]string, files map[string]*multipart.FileHeader) {
	for _, campo := range d.Tipo.Campos {
		if !campo.IsFile() {
			continue
		}
		name := campo.Name
		_, hasFile := files[name]
		present := hasFile || values[intakedto.PhotoPresentPfx+name] != "" || values[intakedto.PhotoDataPfx+name] != ""
		if present && (hasFile || values[intakedto.PhotoRemovePfx+name] == "") {
			d.Photos[name] = intakesvc.Photo{FileName: values[intakedto.PhotoNamePfx+name]}
		}
	}
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxPhotoBytes {
		return nil, fmt.Errorf("arquivo maior que %d bytes", maxPhotoBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
}
