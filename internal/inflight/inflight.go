// Package inflight impede que a mesma ação seja executada duas vezes ao mesmo tempo
// (duplo clique, reenvio de formulário, duas abas).
package inflight

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
)

// Ações protegidas
const (
	ActionSubmitReport = "enviar_relatorio"
	ActionSendToDP     = "enviar_dp"
	ActionProcessDP    = "processar_dp"
	ActionMarkBilled   = "marcar_cobrado"
)

// Guard concede um token exclusivo por chave até ser liberado ou expirar
type Guard interface {
	// Acquire retorna common.ErrInFlight quando a chave já está ocupada
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Key monta a chave usuário + ação + relatório
func Key(userID, action, reportID string) string {
	return strings.Join([]string{"inflight", userID, action, reportID}, ":")
}

// MemoryGuard guarda os tokens num LRU com expiração, válido para uma única instância
type MemoryGuard struct {
	mu     sync.Mutex
	tokens *expirable.LRU[string, string]
}

// NewMemoryGuard cria o guard em memória
func NewMemoryGuard(size int, ttl time.Duration) *MemoryGuard {
	if size <= 0 {
		size = 4096
	}
	return &MemoryGuard{tokens: expirable.NewLRU[string, string](size, nil, ttl)}
}

// Acquire implementa Guard
func (g *MemoryGuard) Acquire(_ context.Context, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.tokens.Get(key); busy {
		return nil, common.ErrInFlight
	}
	token := uuid.NewString()
	g.tokens.Add(key, token)

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if current, ok := g.tokens.Peek(key); ok && current == token {
			g.tokens.Remove(key)
		}
	}, nil
}

// releaseScript apaga a chave só se o token ainda for o nosso
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard usa SET NX com TTL, compartilhado entre instâncias
type RedisGuard struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisGuard cria o guard sobre um cliente Redis já conectado
func NewRedisGuard(client redis.UniversalClient, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl}
}

// Acquire implementa Guard
func (g *RedisGuard) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, "Falha ao registrar a ação", common.StatusServiceUnavailable, err.Error())
	}
	if !ok {
		return nil, common.ErrInFlight
	}

	return func() {
		// a liberação não depende do context da requisição, que pode já ter sido cancelado
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, g.client, []string{key}, token).Err()
	}, nil
}

// Ping verifica a conexão com o Redis
func (g *RedisGuard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}
