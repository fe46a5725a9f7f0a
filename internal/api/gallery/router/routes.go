// Package router registra as rotas do domínio gallery: visualizador e download de fotos.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	galleryhdl "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/gallery/handler"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/api/middleware"
	apirouter "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/router"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
)

// Register registra as rotas de fotos
func Register(root fiber.Router, r *apirouter.Router) error {
	h, err := galleryhdl.NewGalleryHandler()
	if err != nil {
		return fmt.Errorf("failed to create gallery handler: %w", err)
	}

	mws := []fiber.Handler{middleware.RequireRoles(session.SetorAdmin, session.SetorDP, session.SetorTrafego)}
	apirouter.RegisterRouteWithMiddleware(root, "/fotos", fiber.MethodGet, "/:id/:indice", mws, h.HandleView)
	apirouter.RegisterRouteWithMiddleware(root, "/fotos", fiber.MethodGet, "/:id/:indice/download", mws, h.HandleDownload)
	return nil
}
