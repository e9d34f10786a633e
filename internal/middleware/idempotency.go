package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	// IdempotencyKeyHeader lets clients retry pass creation, renewal and deletion safely.
	IdempotencyKeyHeader = "Idempotency-Key"
	idempotencyPrefix    = "idem:pass:"
	pendingMarker        = "__pending__"
	cacheOpTimeout       = 2 * time.Second
)

type replayableResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

// Idempotency replays the first successful response for unsafe requests that
// repeat an Idempotency-Key. Requests without the header pass through.
// Keys are scoped by the caller stored under userKey and by method and path.
func Idempotency(cache *redis.Client, ttl time.Duration, logger *slog.Logger, userKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isSafeMethod(c.Method()) {
			return c.Next()
		}
		clientKey := strings.TrimSpace(c.Get(IdempotencyKeyHeader))
		if clientKey == "" {
			return c.Next()
		}
		userID, _ := c.Locals(userKey).(string)
		key := strings.Join([]string{idempotencyPrefix + userID, c.Method(), c.Path(), clientKey}, ":")
		log := logger.With(slog.String("idempotency_key", clientKey), slog.String("path", c.Path()))

		ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
		defer cancel()

		raw, err := cache.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			return replay(c, raw, log)
		case !errors.Is(err, redis.Nil):
			log.Error("idempotency lookup failed", slog.Any("error", err))
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency store failure")
		}

		reserved, err := cache.SetNX(ctx, key, pendingMarker, ttl).Result()
		if err != nil {
			log.Error("idempotency reservation failed", slog.Any("error", err))
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency store failure")
		}
		if !reserved {
			return fiber.NewError(fiber.StatusConflict, "duplicate request currently processing")
		}

		if err := c.Next(); err != nil {
			forget(cache, key)
			return err
		}
		// Failed attempts are not remembered so the client can retry them.
		if c.Response().StatusCode() >= fiber.StatusBadRequest {
			forget(cache, key)
			return nil
		}

		payload, err := json.Marshal(replayableResponse{
			Status:      c.Response().StatusCode(),
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		})
		if err == nil {
			storeCtx, storeCancel := context.WithTimeout(context.Background(), cacheOpTimeout)
			defer storeCancel()
			err = cache.Set(storeCtx, key, payload, ttl).Err()
		}
		if err != nil {
			log.Error("failed to remember idempotent response", slog.Any("error", err))
			forget(cache, key)
		}
		return nil
	}
}

func isSafeMethod(method string) bool {
	switch strings.ToUpper(method) {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
		return true
	}
	return false
}

func replay(c *fiber.Ctx, raw []byte, log *slog.Logger) error {
	if string(raw) == pendingMarker {
		return fiber.NewError(fiber.StatusConflict, "duplicate request currently processing")
	}
	var stored replayableResponse
	if err := json.Unmarshal(raw, &stored); err != nil {
		log.Warn("unreadable idempotent response", slog.Any("error", err))
		return fiber.NewError(fiber.StatusConflict, "duplicate request")
	}
	if stored.ContentType != "" {
		c.Set(fiber.HeaderContentType, stored.ContentType)
	}
	c.Set("Idempotent-Replayed", "true")
	return c.Status(stored.Status).Send(stored.Body)
}

func forget(cache *redis.Client, key string) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()
	cache.Del(ctx, key)
}
