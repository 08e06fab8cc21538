package cache

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
)

func testRedisCache(t *testing.T) *RedisCache {
	t.Helper()

	addr := os.Getenv("XTHEME_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("XTHEME_REDIS_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("skipping integration test: redis not reachable: %v", err)
	}

	prefix := "xtheme-test:"
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		_ = client.Close()
	})
	return NewRedisCache(client, prefix)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c := testRedisCache(t)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, "key", []byte("markup"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(ctx, "key")
	if err != nil || !ok || string(got) != "markup" {
		t.Fatalf("expected hit, got %q ok=%v err=%v", got, ok, err)
	}
}

func TestRedisCacheVersions(t *testing.T) {
	c := testRedisCache(t)
	ctx := context.Background()
	scope := TenantScope("shop-1")

	if v, err := c.Version(ctx, scope); err != nil || v != 0 {
		t.Fatalf("expected version 0, got %d (%v)", v, err)
	}
	if v, err := c.BumpVersion(ctx, scope); err != nil || v != 1 {
		t.Fatalf("expected version 1, got %d (%v)", v, err)
	}
	if v, _ := c.Version(ctx, scope); v != 1 {
		t.Fatalf("expected stored version 1, got %d", v)
	}
}
