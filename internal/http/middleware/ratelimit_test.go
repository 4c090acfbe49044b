package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kenobul/portfolio/pkg/logging"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterAllowsBurstThenBlocks(t *testing.T) {
	rl := NewMemoryLimiter(2, time.Minute)
	defer rl.Close()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := rl.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := rl.Allow(ctx, "1.2.3.4")
	assert.False(t, ok)

	ok, _ = rl.Allow(ctx, "5.6.7.8")
	assert.True(t, ok, "keys are independent")

	now = now.Add(30 * time.Second)
	ok, _ = rl.Allow(ctx, "1.2.3.4")
	assert.True(t, ok, "one token refills after half the window")
}

func TestRedisLimiterFixedWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	rl := NewRedisLimiter(client, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := rl.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, time.Minute, mr.TTL("portfolio:ratelimit:contact:1.2.3.4"))

	mr.FastForward(time.Minute + time.Second)
	ok, err = rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterReportsErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	_, err := NewRedisLimiter(client, 1, time.Minute).Allow(context.Background(), "k")
	assert.Error(t, err)
}

// failFirstExpire fails the first EXPIRE the client sends.
type failFirstExpire struct {
	failed atomic.Bool
}

func (h *failFirstExpire) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *failFirstExpire) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == "expire" && h.failed.CompareAndSwap(false, true) {
			err := errors.New("expire unavailable")
			cmd.SetErr(err)
			return err
		}
		return next(ctx, cmd)
	}
}

func (h *failFirstExpire) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestRedisLimiterRepairsMissingTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	client.AddHook(&failFirstExpire{})

	rl := NewRedisLimiter(client, 2, time.Minute)
	ctx := context.Background()
	key := "portfolio:ratelimit:contact:1.2.3.4"

	_, err := rl.Allow(ctx, "1.2.3.4")
	require.Error(t, err)
	assert.Zero(t, mr.TTL(key), "first hit left the counter without a TTL")

	ok, err := rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL(key))

	ok, err = rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(time.Minute + time.Second)
	ok, err = rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok, "the window resets once the repaired TTL expires")
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.err
}

func TestRateLimitMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allowed", func(t *testing.T) {
		lim := &stubLimiter{allowed: true}
		req := httptest.NewRequest(http.MethodPost, "/api/send-email", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		RateLimit(lim, logging.New("error"))(ok).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"10.0.0.1"}, lim.keys)
	})

	t.Run("blocked", func(t *testing.T) {
		lim := &stubLimiter{allowed: false}
		req := httptest.NewRequest(http.MethodPost, "/api/send-email", nil)
		req.Header.Set("X-Real-Ip", "203.0.113.9")
		rec := httptest.NewRecorder()
		RateLimit(lim, logging.New("error"))(ok).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, []string{"203.0.113.9"}, lim.keys)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Too many requests. Please try again later.", body["message"])
	})

	t.Run("limiter error fails open", func(t *testing.T) {
		lim := &stubLimiter{err: errors.New("redis down")}
		req := httptest.NewRequest(http.MethodPost, "/api/send-email", nil)
		rec := httptest.NewRecorder()
		RateLimit(lim, logging.New("error"))(ok).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
