// Package basehdl contém helpers comuns dos handlers: respostas JSON, páginas HTML e erros.
package basehdl

import (
	"errors"
	"fmt"
	"net/url"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/api/middleware"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/global"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/logger"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/web"
)

const defaultAppName = "Sistema de Relatórios"

// JSONResponse devolve JSON com Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	return middleware.JSONResponse(c, statusCode, data)
}

// SafeHandlerWrapper executa o handler e transforma panic em resposta de erro
func SafeHandlerWrapper(c fiber.Ctx, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithRequest(c).WithFields(logrus.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("Panic no handler")
			err = HandleError(c, common.NewError(
				common.ErrCodeInternalServer,
				common.MsgInternalError,
				common.StatusInternalServerError,
				fmt.Sprintf("%v", r),
			))
		}
	}()
	return fn()
}

// HandleResponse escreve o envelope JSON padrão (sucesso ou erro)
func HandleResponse(c fiber.Ctx, data interface{}, err error) {
	if err != nil {
		middleware.HandleErrorResponse(c, err)
		return
	}
	_ = JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    data,
		"status":  "success",
	})
}

// NewView monta o View de uma página com usuário da sessão e mensagens ?ok= / ?erro=
func NewView(c fiber.Ctx, title string, data any) web.View {
	v := web.View{
		Title:   title,
		AppName: appName(),
		Ok:      c.Query("ok"),
		Erro:    c.Query("erro"),
		Data:    data,
	}
	if u, ok := c.Locals(middleware.LocalUser).(session.User); ok {
		v.User = &u
	}
	return v
}

func appName() string {
	if global.ServerConfig != nil && global.ServerConfig.AppName != "" {
		return global.ServerConfig.AppName
	}
	return defaultAppName
}

// Render escreve uma página HTML completa
func Render(c fiber.Ctx, status int, page string, v web.View) error {
	body, err := web.Default().Render(page, v)
	if err != nil {
		logger.WithRequest(c).WithError(err).WithField("page", page).Error("Falha ao renderizar página")
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(common.StatusInternalServerError).SendString(common.MsgInternalError)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(body)
}

// ErrorPage é o view-model da página de erro
type ErrorPage struct {
	Status  int
	Message string
	Back    string
}

// HandleError responde um erro: JSON nas chamadas de API, página nas demais.
// Sessão recusada pelo backend leva de volta ao login.
func HandleError(c fiber.Ctx, err error) error {
	logError(c, err)

	if middleware.WantsJSON(c) {
		middleware.HandleErrorResponse(c, err)
		return nil
	}

	var customErr *common.Error
	if errors.As(err, &customErr) && customErr.Code.Code == common.ErrCodeAuthSession.Code {
		middleware.ClearTicket(c)
		return c.Redirect().Status(common.StatusSeeOther).To("/login?erro=" + url.QueryEscape(common.ErrSessionInvalid.Error()))
	}

	back := "/login"
	if u, ok := c.Locals(middleware.LocalUser).(session.User); ok {
		back = session.HomePath(u.Setor)
	}
	status := common.StatusOf(err)
	return Render(c, status, web.PageError, NewView(c, "Erro", ErrorPage{
		Status:  status,
		Message: common.MessageOf(err),
		Back:    back,
	}))
}

// RedirectWith faz o PRG com mensagem de sucesso (ok) ou erro (erro)
func RedirectWith(c fiber.Ctx, path, key, msg string) error {
	target := path
	if msg != "" {
		sep := "?"
		if u, err := url.Parse(path); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		target += sep + key + "=" + url.QueryEscape(msg)
	}
	return c.Redirect().Status(common.StatusSeeOther).To(target)
}

func logError(c fiber.Ctx, err error) {
	entry := logger.WithRequest(c).WithFields(logrus.Fields{
		"path":   c.Path(),
		"method": c.Method(),
		"status": common.StatusOf(err),
	}).WithError(err)
	if common.StatusOf(err) >= common.StatusInternalServerError {
		entry.Error("Falha ao processar requisição")
		return
	}
	entry.Warn("Requisição recusada")
}
