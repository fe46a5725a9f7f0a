// Package router registra as rotas do domínio dp: fila e processamento.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	dphdl "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/dp/handler"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/api/middleware"
	apirouter "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/router"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
)

// Register registra as rotas do DP (admin também acessa)
func Register(root fiber.Router, r *apirouter.Router) error {
	h, err := dphdl.NewDPHandler()
	if err != nil {
		return fmt.Errorf("failed to create dp handler: %w", err)
	}

	mws := []fiber.Handler{middleware.RequireRoles(session.SetorDP, session.SetorAdmin)}
	apirouter.RegisterRouteWithMiddleware(root, "/dp", fiber.MethodGet, "/", mws, h.HandleQueue)
	apirouter.RegisterRouteWithMiddleware(root, "/dp", fiber.MethodGet, "/relatorios/:id", mws, h.HandleProcessPage)
	apirouter.RegisterRouteWithMiddleware(root, "/dp", fiber.MethodPost, "/relatorios/:id/processar", mws, h.HandleProcess)
	return nil
}
