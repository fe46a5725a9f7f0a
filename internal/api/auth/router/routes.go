// Package router registra as rotas do domínio auth: login, logout, check-auth e health.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	authhdl "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/auth/handler"
	basehdl "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/base/handler"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/api/middleware"
	apirouter "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/router"
)

// Register registra as rotas de autenticação e sistema
func Register(root fiber.Router, r *apirouter.Router) error {
	if err := registerSystemRoutes(root); err != nil {
		return err
	}
	return registerAuthRoutes(root)
}

func registerSystemRoutes(router fiber.Router) error {
	systemHandler, err := basehdl.NewSystemHandler()
	if err != nil {
		return fmt.Errorf("failed to create system handler: %w", err)
	}
	router.Get("/health", systemHandler.HandleHealth)
	return nil
}

func registerAuthRoutes(router fiber.Router) error {
	authHandler, err := authhdl.NewAuthHandler()
	if err != nil {
		return fmt.Errorf("failed to create auth handler: %w", err)
	}
	router.Get("/login", authHandler.HandleLoginPage)
	router.Post("/login", authHandler.HandleLogin)
	router.Post("/logout", authHandler.HandleLogout)

	authOnly := middleware.RequireRoles()
	apirouter.RegisterRouteWithMiddleware(router, "/api", fiber.MethodGet, "/check-auth", []fiber.Handler{authOnly}, authHandler.HandleCheckAuth)
	return nil
}
