package logger

import (
	"os"
	"strings"

	"github.com/caarlos0/env"
)

// LogConfig contém a configuração do sistema de logs
type LogConfig struct {
	// Nível: trace, debug, info, warn, error, fatal
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// Formato: json, text
	Format string `env:"LOG_FORMAT" envDefault:"text"`

	// Saída: file, stdout, both
	Output string `env:"LOG_OUTPUT" envDefault:"both"`

	// Rotação
	MaxSize    int  `env:"LOG_MAX_SIZE" envDefault:"100"`   // MB
	MaxBackups int  `env:"LOG_MAX_BACKUPS" envDefault:"7"`  // Arquivos antigos mantidos
	MaxAge     int  `env:"LOG_MAX_AGE" envDefault:"7"`      // Dias mantidos
	Compress   bool `env:"LOG_COMPRESS" envDefault:"true"`  // Comprimir arquivos antigos

	// Caminhos
	LogPath   string `env:"LOG_PATH" envDefault:"./logs"`
	AppFile   string `env:"LOG_APP_FILE" envDefault:"app.log"`
	AuditFile string `env:"LOG_AUDIT_FILE" envDefault:"audit.log"`
	ErrorFile string `env:"LOG_ERROR_FILE" envDefault:"error.log"`

	// Filtros (lista separada por vírgula, vazio ou "*" = tudo)
	FilterModules   string `env:"LOG_FILTER_MODULES" envDefault:"*"`
	FilterSetores   string `env:"LOG_FILTER_SETORES" envDefault:"*"`
	FilterEndpoints string `env:"LOG_FILTER_ENDPOINTS" envDefault:"*"`
	FilterMethods   string `env:"LOG_FILTER_METHODS" envDefault:"*"`
	FilterLogTypes  string `env:"LOG_FILTER_LOG_TYPES" envDefault:"*"`
}

// DefaultConfig retorna a configuração padrão ajustada pelo GO_ENV e pelas variáveis LOG_*
func DefaultConfig() *LogConfig {
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	cfg := &LogConfig{}
	if err := env.Parse(cfg); err != nil {
		cfg = &LogConfig{
			Level:      "info",
			Format:     "text",
			Output:     "both",
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   true,
			LogPath:    "./logs",
			AppFile:    "app.log",
			AuditFile:  "audit.log",
			ErrorFile:  "error.log",
		}
	}

	// Em desenvolvimento o padrão é debug + texto; fora dele, json
	if os.Getenv("LOG_LEVEL") == "" && goEnv == "development" {
		cfg.Level = "debug"
	}
	if os.Getenv("LOG_FORMAT") == "" && goEnv != "development" {
		cfg.Format = "json"
	}

	cfg.Level = strings.ToLower(cfg.Level)
	cfg.Format = strings.ToLower(cfg.Format)
	cfg.Output = strings.ToLower(cfg.Output)

	return cfg
}
