// Package router registra as rotas do domínio admin: listagem, detalhe, envio ao DP e exportações.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	adminhdl "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/admin/handler"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/api/middleware"
	apirouter "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/router"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
)

// Register registra as rotas do administrativo
func Register(root fiber.Router, r *apirouter.Router) error {
	h, err := adminhdl.NewAdminHandler()
	if err != nil {
		return fmt.Errorf("failed to create admin handler: %w", err)
	}

	adminOnly := middleware.RequireRoles(session.SetorAdmin)
	mws := []fiber.Handler{adminOnly}
	apirouter.RegisterRouteWithMiddleware(root, "/admin", fiber.MethodGet, "/", mws, h.HandleList)
	apirouter.RegisterRouteWithMiddleware(root, "/admin", fiber.MethodGet, "/os", mws, h.HandleByNumero)
	apirouter.RegisterRouteWithMiddleware(root, "/admin", fiber.MethodGet, "/relatorios/:id", mws, h.HandleDetail)
	apirouter.RegisterRouteWithMiddleware(root, "/admin", fiber.MethodPost, "/relatorios/:id/enviar-dp", mws, h.HandleSendToDP)
	apirouter.RegisterRouteWithMiddleware(root, "/admin", fiber.MethodGet, "/exportar/html", mws, h.HandleExportHTML)
	apirouter.RegisterRouteWithMiddleware(root, "/admin", fiber.MethodGet, "/exportar/xlsx", mws, h.HandleExportXLSX)
	return nil
}
