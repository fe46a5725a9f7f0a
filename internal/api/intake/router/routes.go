// Package router registra as rotas do domínio intake: página inicial do porteiro, prévia e envio.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	intakehdl "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/intake/handler"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/api/middleware"
	apirouter "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/router"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
)

// Register registra as rotas do porteiro
func Register(root fiber.Router, r *apirouter.Router) error {
	h, err := intakehdl.NewIntakeHandler()
	if err != nil {
		return fmt.Errorf("failed to create intake handler: %w", err)
	}

	// "/" verifica a sessão no próprio handler; middleware em "/" valeria para a app inteira
	root.Get("/", h.HandleHome)

	porteiroOnly := middleware.RequireRoles(session.SetorPorteiro)
	apirouter.RegisterRouteWithMiddleware(root, "/porteiro", fiber.MethodPost, "/preview", []fiber.Handler{porteiroOnly}, h.HandlePreview)
	apirouter.RegisterRouteWithMiddleware(root, "/porteiro", fiber.MethodPost, "/relatorios", []fiber.Handler{porteiroOnly}, h.HandleSubmit)
	return nil
}
