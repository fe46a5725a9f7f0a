package logger

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// FilterHook marca entradas que não passam nos filtros configurados:
// módulo, setor, endpoint, método HTTP e nível.
// O AsyncHook descarta as entradas marcadas com "_filtered".
type FilterHook struct {
	allowedModules   map[string]bool
	allowedSetores   map[string]bool
	allowedEndpoints map[string]bool
	allowedMethods   map[string]bool
	allowedLogTypes  map[string]bool

	mu sync.RWMutex
}

// NewFilterHook cria o hook a partir da configuração
func NewFilterHook(cfg *LogConfig) *FilterHook {
	hook := &FilterHook{}
	hook.updateFilters(cfg)
	return hook
}

func (h *FilterHook) updateFilters(cfg *LogConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.allowedModules = parseFilter(cfg.FilterModules)
	h.allowedSetores = parseFilter(cfg.FilterSetores)
	h.allowedEndpoints = parseFilter(cfg.FilterEndpoints)
	h.allowedMethods = parseFilter(cfg.FilterMethods)
	h.allowedLogTypes = parseFilter(cfg.FilterLogTypes)
}

// parseFilter converte "a,b,c" num conjunto em minúsculas.
// Vazio ou "*" retorna nil (sem filtro).
func parseFilter(filterStr string) map[string]bool {
	filterStr = strings.TrimSpace(filterStr)
	if filterStr == "" || filterStr == "*" {
		return nil
	}

	result := make(map[string]bool)
	for _, v := range strings.Split(filterStr, ",") {
		v = strings.TrimSpace(v)
		if v == "*" {
			return nil
		}
		if v != "" {
			result[strings.ToLower(v)] = true
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// Levels retorna os níveis tratados
func (h *FilterHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire marca a entrada quando algum filtro ativo a rejeita.
// Campos ausentes na entrada não filtram.
func (h *FilterHook) Fire(entry *logrus.Entry) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.allowedLogTypes != nil && !h.allowedLogTypes[strings.ToLower(entry.Level.String())] {
		entry.Data["_filtered"] = true
		return nil
	}

	if rejectField(h.allowedModules, entry.Data["module"]) ||
		rejectField(h.allowedSetores, entry.Data["setor"]) ||
		rejectField(h.allowedMethods, entry.Data["method"]) {
		entry.Data["_filtered"] = true
		return nil
	}

	if h.allowedEndpoints != nil {
		endpoint, _ := entry.Data["endpoint"].(string)
		if endpoint == "" {
			endpoint, _ = entry.Data["path"].(string)
		}
		if endpoint != "" {
			endpoint = strings.ToLower(endpoint)
			matched := false
			for allowed := range h.allowedEndpoints {
				if strings.HasPrefix(endpoint, allowed) {
					matched = true
					break
				}
			}
			if !matched {
				entry.Data["_filtered"] = true
			}
		}
	}

	return nil
}

func rejectField(allowed map[string]bool, value interface{}) bool {
	if allowed == nil {
		return false
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return false
	}
	return !allowed[strings.ToLower(s)]
}

// UpdateFilters troca os filtros em tempo de execução
func (h *FilterHook) UpdateFilters(cfg *LogConfig) {
	h.updateFilters(cfg)
}
