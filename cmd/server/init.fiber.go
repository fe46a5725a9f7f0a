package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/google/uuid"

	"github.com/VictorDevAgencia74/sistema-relatorios/config"
	adminrouter "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/admin/router"
	authrouter "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/auth/router"
	basehdl "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/base/handler"
	dprouter "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/dp/router"
	galleryrouter "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/gallery/router"
	intakerouter "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/intake/router"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/api/router"
	trafegorouter "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/trafego/router"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/global"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/logger"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/web"
)

// InitFiberApp cria a aplicação Fiber com os middlewares necessários
func InitFiberApp() (*fiber.App, error) {
	cfg := global.ServerConfig

	app := fiber.New(fiber.Config{
		// =========================================
		// 1. CONFIGURAÇÃO BÁSICA
		// =========================================
		AppName:       cfg.AppName,
		ServerHeader:  cfg.AppName,
		StrictRouting: false, // /admin e /admin/ são a mesma página
		CaseSensitive: true,

		// =========================================
		// 2. LIMITES E TIMEOUTS
		// =========================================
		BodyLimit:    10 * 1024 * 1024, // Formulário do porteiro com fotos (10MB)
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,

		// =========================================
		// 3. ERROS NÃO TRATADOS PELOS HANDLERS
		// =========================================
		ErrorHandler: handleFiberError,
	})

	// 1. Request ID
	app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: uuid.NewString,
	}))

	// 2. CORS
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(cfg.CORS_Origins),
		AllowMethods:     []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodHead, fiber.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID", "X-Requested-With"},
		AllowCredentials: cfg.CORS_AllowCredentials && cfg.CORS_Origins != "*",
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		MaxAge:           24 * 60 * 60,
	}))

	// 3. Security headers
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	})

	// 4. Rate limit
	log := logger.GetAppLogger()
	if cfg.RateLimit_Enabled && cfg.RateLimit_Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit_Max,
			Expiration: time.Duration(cfg.RateLimit_Window) * time.Second,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return basehdl.JSONResponse(c, common.StatusTooManyRequests, fiber.Map{
					"code":    common.StatusTooManyRequests,
					"message": common.MsgTooManyRequests,
					"status":  "error",
				})
			},
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/health" || c.Method() == fiber.MethodOptions || isStatic(c.Path())
			},
		}))
		log.Infof("Rate limiting enabled: %d requests per %d seconds", cfg.RateLimit_Max, cfg.RateLimit_Window)
	} else {
		log.Info("Rate limiting disabled")
	}

	// 5. Recover
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			logger.WithRequest(c).WithFields(map[string]interface{}{
				"panic": e,
			}).Error("Panic recovered")
		},
	}))

	// Arquivos estáticos embutidos (CSS, JS, placeholder)
	app.Get("/static*", static.New("", static.Config{FS: web.StaticFS()}))

	if err := router.SetupRoutes(app,
		authrouter.Register,
		intakerouter.Register,
		adminrouter.Register,
		dprouter.Register,
		trafegorouter.Register,
		galleryrouter.Register,
	); err != nil {
		return nil, fmt.Errorf("registrar rotas: %w", err)
	}

	// Página 404 para o resto
	app.Use(func(c fiber.Ctx) error {
		return basehdl.HandleError(c, common.NewError(common.ErrCodeUpstreamStatus, "Página não encontrada", common.StatusNotFound, nil))
	})

	return app, nil
}

// handleFiberError converte *fiber.Error (rota inexistente, corpo grande demais) no formato padrão
func handleFiberError(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := common.MsgInternalError
	errorCode := common.ErrCodeInternalServer

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
		switch code {
		case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge:
			errorCode = common.ErrCodeValidationInput
		case fiber.StatusUnauthorized:
			errorCode = common.ErrCodeAuthSession
		case fiber.StatusForbidden:
			errorCode = common.ErrCodeAuthRole
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			errorCode = common.ErrCodeUpstreamStatus
		}
		if code == fiber.StatusRequestEntityTooLarge {
			message = "Arquivos grandes demais. Envie fotos menores."
		}
	}

	logger.WithRequest(c).WithFields(map[string]interface{}{
		"code":      code,
		"errorCode": errorCode.Code,
		"message":   message,
	}).Error("Request error")

	return basehdl.HandleError(c, common.NewError(errorCode, message, code, nil))
}

func corsOrigins(raw string) []string {
	if raw == "" || raw == "*" {
		return []string{"*"}
	}
	return config.SplitList(raw)
}

func isStatic(path string) bool {
	return strings.HasPrefix(path, "/static/")
}
