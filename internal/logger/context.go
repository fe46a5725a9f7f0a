package logger

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// ContextKey é o tipo das chaves de contexto
type ContextKey string

const (
	// RequestIDKey guarda o request ID no contexto
	RequestIDKey ContextKey = "requestID"
	// UserIDKey guarda o ID do usuário no contexto
	UserIDKey ContextKey = "userID"
	// SetorKey guarda o setor do usuário no contexto
	SetorKey ContextKey = "setor"
)

// WithContext retorna uma entry com os campos presentes no contexto
func WithContext(ctx context.Context) *logrus.Entry {
	entry := GetAppLogger().WithContext(ctx)

	if requestID := ctx.Value(RequestIDKey); requestID != nil {
		entry = entry.WithField("request_id", requestID)
	}
	if userID := ctx.Value(UserIDKey); userID != nil {
		entry = entry.WithField("user_id", userID)
	}
	if setor := ctx.Value(SetorKey); setor != nil {
		entry = entry.WithField("setor", setor)
	}

	return entry
}

// RequestID lê o request ID gerado pelo middleware requestid
func RequestID(c fiber.Ctx) string {
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		return rid
	}
	if rid := c.Get("X-Request-ID"); rid != "" {
		return rid
	}
	return c.GetRespHeader("X-Request-ID")
}

// WithRequest retorna uma entry com request_id, método, path, IP e, quando houver, o usuário logado
func WithRequest(c fiber.Ctx) *logrus.Entry {
	entry := GetAppLogger().WithContext(c.Context())

	if requestID := RequestID(c); requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}
	if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
		entry = entry.WithField("user_id", userID)
	}
	if setor, ok := c.Locals("setor").(string); ok && setor != "" {
		entry = entry.WithField("setor", setor)
	}

	return entry.WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"ip":     c.IP(),
	})
}

// WithFields retorna uma entry com campos extras
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return GetAppLogger().WithFields(logrus.Fields(fields))
}

// WithError retorna uma entry com o erro
func WithError(err error) *logrus.Entry {
	return GetAppLogger().WithError(err)
}

// WithModule retorna uma entry marcada com o módulo (auth, intake, admin, dp, trafego, gallery, backend, notify)
func WithModule(module string) *logrus.Entry {
	return GetAppLogger().WithField("module", module)
}

// WithRequestModule junta WithRequest e o nome do módulo
func WithRequestModule(c fiber.Ctx, module string) *logrus.Entry {
	return WithRequest(c).WithField("module", module)
}
