package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	appconfig "github.com/kenobul/portfolio/internal/config"
	httpmiddleware "github.com/kenobul/portfolio/internal/http/middleware"
	"github.com/kenobul/portfolio/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, nil, true); client != nil {
		t.Fatalf("expected nil client without REDIS_ADDR")
	}
	if client := BuildRedisClient(context.Background(), nil, nil, true); client != nil {
		t.Fatalf("expected nil client for nil config")
	}
}

func TestBuildRedisClientVerifies(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true)
	if client == nil {
		t.Fatalf("expected client when redis is reachable")
	}
	defer client.Close()

	mr.Close()
	if unreachable := BuildRedisClient(context.Background(), cfg, logging.New("error"), true); unreachable != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}

func TestBuildContactLimiter(t *testing.T) {
	cfg := &appconfig.Config{ContactRateLimit: 3, ContactRateWindow: time.Minute}
	logger := logging.New("error")

	mem := BuildContactLimiter(nil, cfg, logger)
	memLimiter, ok := mem.(*httpmiddleware.MemoryLimiter)
	if !ok {
		t.Fatalf("expected memory limiter, got %T", mem)
	}
	memLimiter.Close()

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger, false)
	defer client.Close()
	if _, ok := BuildContactLimiter(client, cfg, logger).(*httpmiddleware.RedisLimiter); !ok {
		t.Fatalf("expected redis limiter")
	}
}
