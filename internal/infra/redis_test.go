package infra

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	cache, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer cache.Close()

	if err := cache.Set(context.Background(), "rl:login:a@b.c", 1, 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("rl:login:a@b.c") {
		t.Fatalf("expected key to reach redis")
	}
}

func TestNewRedisClientErrors(t *testing.T) {
	if _, err := NewRedisClient(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty url")
	}
	if _, err := NewRedisClient(context.Background(), "http://example.com"); err == nil {
		t.Fatalf("expected error for non-redis scheme")
	}

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	if _, err := NewRedisClient(context.Background(), "redis://"+addr); err == nil {
		t.Fatalf("expected ping error for closed server")
	}
}
