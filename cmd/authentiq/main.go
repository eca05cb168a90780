package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"authentiq/internal/config"
	"authentiq/internal/http/handlers"
	applog "authentiq/internal/log"
	"authentiq/internal/metrics"
	"authentiq/internal/repos"
	"authentiq/internal/services"
	"authentiq/internal/validate"
)

func main() {
	cfg := config.Load()

	zl, err := applog.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()
	applog.SetLogger(zl)

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		zl.Fatal("db.open.fail", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer db.Close()

	// Session backend
	var sessions repos.SessionStore = repos.NewSQLSessionStore(db)
	if cfg.SessionStore == "redis" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zl.Fatal("redis.url.invalid", zap.Error(err))
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			zl.Fatal("redis.ping.fail", zap.Error(err))
		}
		sessions = repos.NewRedisSessionStore(rdb)
	}

	m := metrics.New()
	users := repos.NewUserRepo(db)
	authSvc := &services.AuthService{
		Users:      users,
		Sessions:   sessions,
		Policy:     validate.PasswordPolicy{MinLength: cfg.PasswordMinLength},
		BcryptCost: cfg.BcryptCost,
		TTL:        cfg.SessionTTL,
		Metrics:    m,
	}
	if err := authSvc.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		zl.Fatal("admin.bootstrap.fail", zap.Error(err))
	}
	accounts, err := users.Count(context.Background())
	if err != nil {
		zl.Fatal("db.users.count.fail", zap.Error(err))
	}
	applog.Info(nil, "admin.bootstrap", map[string]any{"admin": cfg.AdminUsername, "accounts": accounts})

	// Templates & app
	engine := html.New(cfg.TemplatesDir, ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    1 << 20, // 1 MiB
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next:       handlers.SkipGlobalLimit,
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return handlers.Page(c, fiber.StatusForbidden, "Security check failed. Please refresh and try again.")
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	app.Static("/static", cfg.StaticDir)

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, authSvc, m)
	deps.Mount(app)

	app.Use(func(c *fiber.Ctx) error {
		return handlers.Page(c, fiber.StatusNotFound, "Page not found")
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		applog.L().Info("server.shutdown")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	zl.Info("server.start", zap.String("port", cfg.Port), zap.String("db", cfg.DBDriver), zap.String("sessions", cfg.SessionStore))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Fatal("server.listen.fail", zap.Error(err))
	}
}
