package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/VictorDevAgencia74/sistema-relatorios/config"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/backend"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/global"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/inflight"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/notify"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
)

// tamanho do LRU da guarda em memória
const memoryGuardSize = 4096

// InitGlobal inicializa as variáveis globais
func InitGlobal() {
	initValidator() // Validadores customizados
	initConfig()    // Configuração do servidor
	initBackend()   // Cliente REST
	initSessions()  // Ticket de sessão
	initGuard()     // Guarda de ações em andamento
	initNotifier()  // Avisos de mudança de status
}

// initValidator registra os validadores customizados
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// initConfig lê a configuração do servidor
func initConfig() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("Failed to initialize config: %v", err)
	}
	global.ServerConfig = cfg
	logrus.Info("Initialized server config")
}

func initBackend() {
	cfg := global.ServerConfig
	global.Backend = backend.New(cfg.BackendURL, cfg.BackendTimeoutDuration())
	logrus.WithField("backend_url", cfg.BackendURL).Info("Initialized backend client")
}

func initSessions() {
	cfg := global.ServerConfig
	global.Sessions = session.NewManager(cfg.SessionSecret, cfg.SessionTTL(), cfg.CookieSecure)
	logrus.WithField("ttl", cfg.SessionTTL().String()).Info("Initialized session manager")
}

// initGuard usa Redis quando configurado; sem Redis a guarda fica em memória (uma instância só)
func initGuard() {
	cfg := global.ServerConfig
	if cfg.RedisAddr == "" {
		global.Guard = inflight.NewMemoryGuard(memoryGuardSize, cfg.InFlightTTL())
		logrus.Info("Initialized in-memory action guard")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	guard := inflight.NewRedisGuard(client, cfg.InFlightTTL())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := guard.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("Redis indisponível, usando guarda em memória")
		_ = client.Close()
		global.Guard = inflight.NewMemoryGuard(memoryGuardSize, cfg.InFlightTTL())
		return
	}

	global.Redis = client
	global.Guard = guard
	logrus.WithField("redis_addr", cfg.RedisAddr).Info("Initialized Redis action guard")
}

func initNotifier() {
	n := notify.NewFromConfig(global.ServerConfig)
	if !n.Enabled() {
		logrus.Info("Status notifications disabled")
		return
	}
	global.Notifier = n
	logrus.WithField("channels", n.Channels()).Info("Initialized status notifier")
}
