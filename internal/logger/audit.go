package logger

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// AuditAction é um registro de auditoria
type AuditAction struct {
	Action     string                 `json:"action"`      // Ação (ex.: "login", "status_em_dp")
	UserID     string                 `json:"user_id"`     // Usuário que executou
	Setor      string                 `json:"setor"`       // Setor do usuário
	ResourceID string                 `json:"resource_id"` // ID do relatório afetado
	IP         string                 `json:"ip"`          // IP de origem
	UserAgent  string                 `json:"user_agent"`  // User agent
	Details    map[string]interface{} `json:"details"`     // Detalhes extras
	Timestamp  time.Time              `json:"timestamp"`   // Momento da ação
}

// LogAction grava uma ação no log de auditoria
func LogAction(action string, c fiber.Ctx, resourceID string, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}

	audit := AuditAction{
		Action:     action,
		ResourceID: resourceID,
		IP:         c.IP(),
		UserAgent:  c.Get("User-Agent"),
		Details:    details,
		Timestamp:  time.Now(),
	}

	if uid, ok := c.Locals("user_id").(string); ok {
		audit.UserID = uid
	}
	if setor, ok := c.Locals("setor").(string); ok {
		audit.Setor = setor
	}
	if requestID := RequestID(c); requestID != "" {
		audit.Details["request_id"] = requestID
	}

	GetAuditLogger().WithFields(logrus.Fields{
		"action":      audit.Action,
		"user_id":     audit.UserID,
		"setor":       audit.Setor,
		"resource_id": audit.ResourceID,
		"ip":          audit.IP,
		"user_agent":  audit.UserAgent,
		"details":     audit.Details,
		"timestamp":   audit.Timestamp,
	}).Info("Audit log")
}

// LogAuth grava login/logout
func LogAuth(action string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["auth_action"] = action
	LogAction("auth_"+action, c, "", details)
}

// LogStatusChange grava uma transição de status de relatório
func LogStatusChange(c fiber.Ctx, relatorioID, from, to string, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["from"] = from
	details["to"] = to
	LogAction("status_"+to, c, relatorioID, details)
}
