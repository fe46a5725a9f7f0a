package middleware

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/global"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/logger"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
)

// Chaves de c.Locals preenchidas pela autenticação
const (
	LocalUserID = "user_id"
	LocalSetor  = "setor"
	LocalUser   = "user"
)

// CurrentUser lê o ticket de sessão do cookie; não exige login
func CurrentUser(c fiber.Ctx) (session.User, error) {
	if u, ok := c.Locals(LocalUser).(session.User); ok {
		return u, nil
	}
	ticket := c.Cookies(session.TicketCookie)
	if ticket == "" {
		return session.User{}, common.ErrSessionMissing
	}
	if global.Sessions == nil {
		return session.User{}, common.ErrSessionInvalid
	}
	u, err := global.Sessions.Parse(ticket)
	if err != nil {
		return session.User{}, common.ErrSessionInvalid
	}
	return u, nil
}

// BackendCookie é o cabeçalho Cookie repassado ao backend (sem o ticket local)
func BackendCookie(c fiber.Ctx) string {
	return session.ForwardHeader(c.Get(fiber.HeaderCookie))
}

// ClearTicket apaga o ticket local no navegador
func ClearTicket(c fiber.Ctx) {
	secure := global.Sessions != nil && global.Sessions.Secure()
	c.Cookie(&fiber.Cookie{
		Name:     session.TicketCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// RedirectToLogin manda páginas para /login e responde 401 JSON nas rotas de API
func RedirectToLogin(c fiber.Ctx, err error) error {
	if WantsJSON(c) {
		HandleErrorResponse(c, err)
		return nil
	}
	target := "/login"
	if errors.Is(err, common.ErrSessionInvalid) {
		target += "?erro=" + url.QueryEscape(common.MessageOf(err))
	}
	return c.Redirect().Status(common.StatusSeeOther).To(target)
}

// RequireRoles exige sessão válida de um dos setores; sem setores, qualquer usuário logado passa
func RequireRoles(setores ...string) fiber.Handler {
	allowed := make(map[string]bool, len(setores))
	for _, s := range setores {
		allowed[s] = true
	}

	return func(c fiber.Ctx) error {
		// o mesmo prefixo pode registrar o middleware mais de uma vez; CurrentUser reaproveita c.Locals
		user, err := CurrentUser(c)
		if err != nil {
			if errors.Is(err, common.ErrSessionInvalid) {
				ClearTicket(c)
			}
			logger.WithRequest(c).WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Debug("Requisição sem sessão válida")
			return RedirectToLogin(c, err)
		}

		if len(allowed) > 0 && !allowed[user.Setor] {
			logger.WithRequest(c).WithFields(logrus.Fields{
				"path":    c.Path(),
				"user_id": user.ID,
				"setor":   user.Setor,
			}).Warn("Setor sem acesso à rota")
			if WantsJSON(c) {
				HandleErrorResponse(c, common.ErrWrongRole)
				return nil
			}
			return c.Redirect().Status(common.StatusSeeOther).To(session.HomePath(user.Setor) + "?erro=" + url.QueryEscape(common.MsgForbidden))
		}

		SetUser(c, user)
		return c.Next()
	}
}

// SetUser grava o usuário da sessão em c.Locals
func SetUser(c fiber.Ctx, user session.User) {
	c.Locals(LocalUserID, user.ID)
	c.Locals(LocalSetor, user.Setor)
	c.Locals(LocalUser, user)
}
