package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/buspass/bus_pass/internal/logging"
)

const testUserKey = "user_id"

func setupIdempotencyApp(t *testing.T) (*fiber.App, *int32) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		cache.Close()
		mr.Close()
	})

	var calls int32
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(testUserKey, c.Get("X-Test-User"))
		return c.Next()
	})
	app.Use(Idempotency(cache, time.Minute, logging.Discard(), testUserKey))
	app.Post("/api/passes", func(c *fiber.Ctx) error {
		n := atomic.AddInt32(&calls, 1)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"call": n})
	})
	return app, &calls
}

func postPass(t *testing.T, app *fiber.App, user, key string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/api/passes", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set("X-Test-User", user)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	app, calls := setupIdempotencyApp(t)

	postPass(t, app, "u1", "")
	postPass(t, app, "u1", "")
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("expected handler to run twice, ran %d", got)
	}
}

func TestIdempotencyReturnsCachedResponse(t *testing.T) {
	app, calls := setupIdempotencyApp(t)

	status, first := postPass(t, app, "u1", "abc123")
	if status != fiber.StatusOK {
		t.Fatalf("expected status %d got %d", fiber.StatusOK, status)
	}
	status, second := postPass(t, app, "u1", "abc123")
	if status != fiber.StatusOK {
		t.Fatalf("expected cached status %d got %d", fiber.StatusOK, status)
	}
	if first != second {
		t.Fatalf("expected cached payload %s got %s", first, second)
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Fatalf("expected handler to run once, ran %d", got)
	}
}

func TestIdempotencyKeysAreScopedPerUser(t *testing.T) {
	app, calls := setupIdempotencyApp(t)

	postPass(t, app, "u1", "shared")
	postPass(t, app, "u2", "shared")
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("expected handler to run for each user, ran %d", got)
	}
}

func TestIdempotencyDoesNotRememberFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	var calls int32
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard(), testUserKey))
	app.Delete("/api/passes/:id", func(c *fiber.Ctx) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pass not found"})
		}
		return c.JSON(fiber.Map{"status": "Pass deleted successfully"})
	})

	send := func() *http.Response {
		req := httptest.NewRequest(fiber.MethodDelete, "/api/passes/p1", nil)
		req.Header.Set(IdempotencyKeyHeader, "retry-me")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp
	}

	if resp := send(); resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected first attempt 404, got %d", resp.StatusCode)
	}
	if resp := send(); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected retry to reach handler, got %d", resp.StatusCode)
	}
	resp := send()
	if resp.Header.Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected third attempt to be replayed")
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected handler to run twice, ran %d", got)
	}
}
