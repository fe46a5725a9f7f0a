package global

import (
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/VictorDevAgencia74/sistema-relatorios/config"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/backend"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/inflight"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/notify"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
)

// ServerConfig é a configuração carregada no início do processo
var ServerConfig *config.Configuration

// Validate é o validator compartilhado (com os validadores customizados registrados)
var Validate *validator.Validate

// Dependências de execução, montadas em cmd/server antes das rotas
var (
	Backend  *backend.Client       // Cliente da API REST
	Sessions *session.Manager      // Emissão e leitura do ticket de sessão
	Guard    inflight.Guard        // Guarda de ações em andamento
	Notifier *notify.Notifier      // Avisos de mudança de status (nil = desligado)
	Redis    redis.UniversalClient // Conexão Redis da guarda (nil = guarda em memória)
)
