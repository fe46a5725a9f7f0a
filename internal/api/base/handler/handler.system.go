package basehdl

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/global"
)

// SystemHandler trata as rotas de sistema
type SystemHandler struct{}

// NewSystemHandler cria uma nova instância de SystemHandler
func NewSystemHandler() (*SystemHandler, error) {
	return &SystemHandler{}, nil
}

// HandleHealth verifica o backend REST e o Redis da guarda (quando configurado)
func (h *SystemHandler) HandleHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	services := fiber.Map{"api": "ok"}
	healthData := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services":  services,
	}
	degraded := false

	if global.Backend != nil {
		if err := global.Backend.Ping(ctx); err != nil {
			degraded = true
			services["backend"] = "error"
			healthData["backend_error"] = err.Error()
		} else {
			services["backend"] = "ok"
		}
	} else {
		degraded = true
		services["backend"] = "not_initialized"
	}

	if global.Redis != nil {
		if err := global.Redis.Ping(ctx).Err(); err != nil {
			degraded = true
			services["redis"] = "error"
			healthData["redis_error"] = err.Error()
		} else {
			services["redis"] = "ok"
		}
	} else {
		services["redis"] = "disabled"
	}

	if degraded {
		healthData["status"] = "degraded"
		return JSONResponse(c, common.StatusServiceUnavailable, fiber.Map{
			"code":    common.StatusServiceUnavailable,
			"message": "Sistema com problemas",
			"data":    healthData,
			"status":  "error",
		})
	}

	return JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    healthData,
		"status":  "success",
	})
}
