package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration contém a configuração estática do servidor web
type Configuration struct {
	AppName string `env:"APP_NAME" envDefault:"Sistema de Relatórios"` // Nome exibido no servidor e nas páginas
	Address string `env:"ADDRESS" envDefault:":8080"`                  // Endereço de escuta

	// Backend REST
	BackendURL     string `env:"BACKEND_URL,required"`           // URL base do backend (ex.: http://localhost:5000)
	BackendTimeout int    `env:"BACKEND_TIMEOUT" envDefault:"15"` // Timeout das chamadas ao backend (segundos)

	// Sessão
	SessionSecret   string `env:"SESSION_SECRET,required"`           // Segredo para assinar o ticket de sessão
	SessionTTLHours int    `env:"SESSION_TTL_HOURS" envDefault:"12"` // Validade do ticket (horas)
	CookieSecure    bool   `env:"COOKIE_SECURE" envDefault:"false"`  // Cookie só por HTTPS

	// CORS e rate limit
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Origens permitidas (separadas por vírgula, * = todas)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Permite credenciais
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Requisições por janela (0 = desliga)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Janela (segundos)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Liga/desliga o limiter

	// Guarda de ações em andamento
	RedisAddr          string `env:"REDIS_ADDR"`                          // Redis (vazio = guarda em memória)
	RedisPassword      string `env:"REDIS_PASSWORD"`                      // Senha do Redis
	RedisDB            int    `env:"REDIS_DB" envDefault:"0"`             // Banco do Redis
	InFlightTTLSeconds int    `env:"INFLIGHT_TTL_SECONDS" envDefault:"30"` // Validade máxima de um token de ação

	// Fotos
	PhotoFetchTimeout int `env:"PHOTO_FETCH_TIMEOUT" envDefault:"20"` // Timeout do download de fotos (segundos)

	// Notificações de mudança de status (opcionais)
	SMTPHost       string `env:"SMTP_HOST"`                                             // Servidor SMTP (vazio = sem e-mail)
	SMTPPort       int    `env:"SMTP_PORT" envDefault:"587"`                            // Porta SMTP
	SMTPUsername   string `env:"SMTP_USERNAME"`                                         // Usuário SMTP
	SMTPPassword   string `env:"SMTP_PASSWORD"`                                         // Senha SMTP
	SMTPFrom       string `env:"SMTP_FROM"`                                             // Remetente
	NotifyEmails   string `env:"NOTIFY_EMAILS"`                                         // Destinatários separados por vírgula
	NotifyWebhook  string `env:"NOTIFY_WEBHOOK_URL"`                                    // Webhook (vazio = sem webhook)
	NotifyTimeout  int    `env:"NOTIFY_TIMEOUT" envDefault:"10"`                        // Timeout de cada envio (segundos)
	NotifyOnStatus string `env:"NOTIFY_ON_STATUS" envDefault:"EM_DP,EM_TRAFEGO,COBRADO"` // Status que disparam aviso
}

// BackendTimeoutDuration retorna o timeout do backend como time.Duration
func (c *Configuration) BackendTimeoutDuration() time.Duration {
	if c.BackendTimeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.BackendTimeout) * time.Second
}

// SessionTTL retorna a validade do ticket de sessão
func (c *Configuration) SessionTTL() time.Duration {
	if c.SessionTTLHours <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// InFlightTTL retorna a validade de um token de ação
func (c *Configuration) InFlightTTL() time.Duration {
	if c.InFlightTTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.InFlightTTLSeconds) * time.Second
}

// PhotoTimeout retorna o timeout do download de fotos
func (c *Configuration) PhotoTimeout() time.Duration {
	if c.PhotoFetchTimeout <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.PhotoFetchTimeout) * time.Second
}

// SplitList quebra uma lista separada por vírgula, sem itens vazios
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnvPath retorna o arquivo env do ambiente atual (config/env/<GO_ENV>.env)
func getEnvPath() string {
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// logger ainda pode não estar inicializado aqui
		fmt.Printf("Não foi possível obter o diretório atual: %v\n", err)
		return ""
	}

	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", goEnv))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig lê a configuração do arquivo env (quando existir) e das variáveis de ambiente.
// Variáveis já definidas no ambiente têm precedência sobre o arquivo.
func NewConfig() (*Configuration, error) {
	if envPath := getEnvPath(); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("carregar %s: %w", envPath, err)
			}
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ler configuração: %w", err)
	}

	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	return &cfg, nil
}
