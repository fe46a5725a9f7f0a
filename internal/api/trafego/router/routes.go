// Package router registra as rotas do domínio trafego: fila e cobrança.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/api/middleware"
	apirouter "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/router"
	trafegohdl "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/trafego/handler"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
)

// Register registra as rotas do tráfego (admin também acessa)
func Register(root fiber.Router, r *apirouter.Router) error {
	h, err := trafegohdl.NewTrafegoHandler()
	if err != nil {
		return fmt.Errorf("failed to create trafego handler: %w", err)
	}

	mws := []fiber.Handler{middleware.RequireRoles(session.SetorTrafego, session.SetorAdmin)}
	apirouter.RegisterRouteWithMiddleware(root, "/trafego", fiber.MethodGet, "/", mws, h.HandleQueue)
	apirouter.RegisterRouteWithMiddleware(root, "/trafego", fiber.MethodGet, "/relatorios/:id", mws, h.HandleConfirmPage)
	apirouter.RegisterRouteWithMiddleware(root, "/trafego", fiber.MethodPost, "/relatorios/:id/cobrar", mws, h.HandleMarkBilled)
	return nil
}
