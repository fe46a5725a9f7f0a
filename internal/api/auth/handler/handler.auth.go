// Package authhdl - handler de login, logout e verificação de sessão.
package authhdl

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v3"

	authdto "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/auth/dto"
	authsvc "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/auth/service"
	basehdl "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/base/handler"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/api/middleware"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/global"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/logger"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/web"
)

const loginTitle = "Entrar"

// AuthHandler trata as rotas de autenticação
type AuthHandler struct {
	Service  *authsvc.AuthService
	sessions *session.Manager
}

// NewAuthHandler cria uma nova instância de AuthHandler
func NewAuthHandler() (*AuthHandler, error) {
	if global.Backend == nil || global.Sessions == nil {
		return nil, fmt.Errorf("backend ou sessões não inicializados")
	}
	return &AuthHandler{
		Service:  authsvc.NewAuthService(global.Backend, global.Sessions),
		sessions: global.Sessions,
	}, nil
}

// HandleLoginPage mostra o login; quem já tem sessão vai direto para a sua página
func (h *AuthHandler) HandleLoginPage(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		if user, err := middleware.CurrentUser(c); err == nil {
			return c.Redirect().Status(common.StatusSeeOther).To(session.HomePath(user.Setor))
		}
		return basehdl.Render(c, common.StatusOK, web.PageLogin, basehdl.NewView(c, loginTitle, authsvc.NewLoginPage(c.Query("setor"))))
	})
}

// HandleLogin autentica, repassa os cookies do backend e grava o ticket
func (h *AuthHandler) HandleLogin(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input authdto.LoginInput
		if err := c.Bind().Form(&input); err != nil {
			return h.renderLogin(c, common.StatusBadRequest, input.Setor, common.MsgBadRequest)
		}
		if err := global.Validate.Struct(input); err != nil {
			return h.renderLogin(c, common.StatusBadRequest, input.Setor, global.FirstValidationMessage(err))
		}

		login, err := h.Service.Login(c.Context(), input.Setor, input.Codigo)
		if err != nil {
			logger.LogAuth("login_falhou", c, map[string]interface{}{
				"setor": input.Setor,
				"erro":  common.MessageOf(err),
			})
			return h.renderLogin(c, common.StatusOf(err), input.Setor, common.MessageOf(err))
		}

		for _, sc := range login.SetCookies {
			c.Response().Header.Add(fiber.HeaderSetCookie, sc)
		}
		c.Cookie(&fiber.Cookie{
			Name:     session.TicketCookie,
			Value:    login.Ticket,
			Path:     "/",
			MaxAge:   int(h.sessions.TTL().Seconds()),
			HTTPOnly: true,
			Secure:   h.sessions.Secure(),
			SameSite: fiber.CookieSameSiteLaxMode,
		})

		middleware.SetUser(c, login.User)
		logger.LogAuth("login", c, map[string]interface{}{"nome": login.User.Nome})
		return c.Redirect().Status(common.StatusSeeOther).To(session.HomePath(login.User.Setor))
	})
}

func (h *AuthHandler) renderLogin(c fiber.Ctx, status int, setor, msg string) error {
	view := basehdl.NewView(c, loginTitle, authsvc.NewLoginPage(setor))
	view.Erro = msg
	return basehdl.Render(c, status, web.PageLogin, view)
}

// HandleLogout encerra a sessão no backend e apaga o ticket
func (h *AuthHandler) HandleLogout(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		if user, err := middleware.CurrentUser(c); err == nil {
			middleware.SetUser(c, user)
		}

		cookies, err := h.Service.Logout(c.Context(), middleware.BackendCookie(c))
		if err != nil {
			logger.WithRequestModule(c, "auth").WithError(err).Warn("Logout no backend falhou")
		}
		for _, sc := range cookies {
			c.Response().Header.Add(fiber.HeaderSetCookie, sc)
		}
		middleware.ClearTicket(c)
		logger.LogAuth("logout", c, nil)
		return c.Redirect().Status(common.StatusSeeOther).To("/login?ok=" + url.QueryEscape("Sessão encerrada."))
	})
}

// HandleCheckAuth confirma a sessão junto ao backend
func (h *AuthHandler) HandleCheckAuth(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		user, _ := middleware.CurrentUser(c)
		checked, err := h.Service.Check(c.Context(), middleware.BackendCookie(c), user)
		if err != nil {
			var customErr *common.Error
			if errors.As(err, &customErr) && customErr.StatusCode == common.StatusUnauthorized {
				middleware.ClearTicket(c)
			}
			basehdl.HandleResponse(c, nil, err)
			return nil
		}
		basehdl.HandleResponse(c, authdto.CheckAuthResponse{
			Authenticated: true,
			ID:            checked.ID,
			Nome:          checked.Nome,
			Setor:         checked.Setor,
			Home:          session.HomePath(checked.Setor),
		}, nil)
		return nil
	})
}
