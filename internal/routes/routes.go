package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/buspass/bus_pass/internal/auth"
	"github.com/buspass/bus_pass/internal/config"
	"github.com/buspass/bus_pass/internal/middleware"
	"github.com/buspass/bus_pass/internal/notification"
	"github.com/buspass/bus_pass/internal/passes"
	"github.com/buspass/bus_pass/internal/users"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.IdempotencyKeyHeader,
	}))
	// Plain text access log: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger, auth.LocalUserID))

	RegisterHealthRoutes(app, d)
	if err := RegisterWebRoutes(app); err != nil {
		return err
	}

	var (
		userRepo users.Repository
		passRepo passes.Repository
	)
	if d.DB != nil {
		userRepo = users.NewPostgresRepository(d.DB)
		passRepo = passes.NewPostgresRepository(d.DB)
	} else {
		d.Logger.Warn("DATABASE_URL not set, using in-memory storage")
		userRepo = users.NewMemoryRepository()
		passRepo = passes.NewMemoryRepository()
	}

	userSvc := users.NewService(userRepo)
	authSvc := auth.NewService(d.Cfg, userSvc)
	passSvc := passes.NewService(passRepo, notification.NewLoggerNotifier(d.Logger))

	authHandler := auth.NewHandler(authSvc)
	passHandler := passes.NewHandler(passSvc, auth.LocalUserID)

	api := app.Group("/api")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals(middleware.RequestIDHeader).(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	var rateLimiter fiber.Handler
	if d.Cache != nil {
		rateLimiter = middleware.LoginRateLimit(d.Cache, d.Cfg.LoginAttempts)
	}
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes. Guards run per route, never as /api prefix middleware,
	// so unknown /api paths still answer 404.
	guards := []fiber.Handler{middleware.BearerAuth(authSvc, auth.LocalUserID)}
	if d.Cache != nil {
		guards = append(guards, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger, auth.LocalUserID))
	}
	api.Get("/me", chain(guards, authHandler.Me)...)
	RegisterPassRoutes(api, passHandler, guards...)

	return nil
}

// chain returns guards followed by handler in a fresh slice.
func chain(guards []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(guards)+1)
	return append(append(out, guards...), handler)
}

// ErrorHandler renders every error as {"error": message}.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "internal server error"
		if fe, ok := err.(*fiber.Error); ok {
			code = fe.Code
			msg = fe.Message
		} else if logger != nil {
			logger.Error("unhandled error", slog.String("path", c.Path()), slog.Any("error", err))
		}
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
}
