package inflight

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
)

func guards(t *testing.T) map[string]Guard {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]Guard{
		"memoria": NewMemoryGuard(16, time.Minute),
		"redis":   NewRedisGuard(client, time.Minute),
	}
}

func TestGuardRejectsDuplicate(t *testing.T) {
	for name, g := range guards(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := Key("7", ActionSendToDP, "42")

			release, err := g.Acquire(ctx, key)
			require.NoError(t, err)

			_, err = g.Acquire(ctx, key)
			assert.ErrorIs(t, err, common.ErrInFlight)

			other, err := g.Acquire(ctx, Key("7", ActionSendToDP, "43"))
			require.NoError(t, err)
			other()

			release()
			release2, err := g.Acquire(ctx, key)
			require.NoError(t, err)
			release2()
		})
	}
}

func TestGuardConcurrentAcquire(t *testing.T) {
	for name, g := range guards(t) {
		t.Run(name, func(t *testing.T) {
			var granted int32
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := g.Acquire(context.Background(), "k"); err == nil {
						atomic.AddInt32(&granted, 1)
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, int32(1), granted)
		})
	}
}

func TestMemoryGuardExpires(t *testing.T) {
	g := NewMemoryGuard(4, 50*time.Millisecond)
	_, err := g.Acquire(context.Background(), "k")
	require.NoError(t, err)

	time.Sleep(120 * time.Millisecond)
	_, err = g.Acquire(context.Background(), "k")
	assert.NoError(t, err)
}

func TestStaleReleaseDoesNotFreeNewToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	g := NewRedisGuard(client, time.Second)

	ctx := context.Background()
	stale, err := g.Acquire(ctx, "k")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	_, err = g.Acquire(ctx, "k")
	require.NoError(t, err)

	stale()
	_, err = g.Acquire(ctx, "k")
	assert.ErrorIs(t, err, common.ErrInFlight)
}
