package handlers

import (
	"strings"
	"time"

	"authentiq/internal/config"
	applog "authentiq/internal/log"
	"authentiq/internal/metrics"
	"authentiq/internal/repos"
	"authentiq/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Auth             *services.AuthService
	Metrics          *metrics.Metrics
	AuthHandler      *AuthHandler
	DashboardHandler *DashboardHandler
	ProductHandler   *ProductHandler
	VerifyHandler    *VerifyHandler

	// LoginMax attempts per LoginWindow per client on POST /login/.
	LoginMax    int
	LoginWindow time.Duration
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService, m *metrics.Metrics) *Deps {
	prodRepo := repos.NewProductRepo(db)
	registrySvc := services.NewRegistryService(prodRepo, m)
	verifySvc := services.NewVerifyService(prodRepo, m)

	return &Deps{
		Auth:             auth,
		Metrics:          m,
		AuthHandler:      &AuthHandler{Auth: auth, CookieSecure: cfg.CookieSecure},
		DashboardHandler: &DashboardHandler{Registry: registrySvc},
		ProductHandler:   &ProductHandler{Registry: registrySvc},
		VerifyHandler:    &VerifyHandler{Verify: verifySvc},
		LoginMax:         5,
		LoginWindow:      10 * time.Minute,
	}
}

// Mount registers the session middleware and every application route.
func (d *Deps) Mount(app *fiber.App) {
	app.Use(LoadSession(d.Auth))

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
	}

	app.Get("/", d.AuthHandler.Home)

	anon := RequireAnonymous()
	app.Get("/register", anon, d.AuthHandler.RegisterForm)
	app.Post("/register", anon, d.AuthHandler.Register)
	app.Get("/login", anon, d.AuthHandler.LoginForm)
	app.Post("/login", anon, limiter.New(limiter.Config{
		Max:        d.LoginMax,
		Expiration: d.LoginWindow,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			c.Status(fiber.StatusTooManyRequests)
			return render(c, "login", fiber.Map{"Err": "Too many attempts. Please try again later.", "Username": ""})
		},
	}), d.AuthHandler.Login)

	user := RequireUser()
	app.Get("/logout", user, d.AuthHandler.Logout)
	app.Get("/user-dashboard", user, d.DashboardHandler.User)
	app.Get("/verify-product", user, d.VerifyHandler.Form)
	app.Post("/verify-product", user, d.VerifyHandler.Check)

	admin := RequireAdmin()
	app.Get("/admin-dashboard", admin, d.DashboardHandler.Admin)
	app.Get("/add-product", admin, d.ProductHandler.AddForm)
	app.Post("/add-product", admin, d.ProductHandler.Add)
	app.Get("/view-products", admin, d.ProductHandler.List)
	app.Get("/update-product/:id", admin, d.ProductHandler.EditForm)
	app.Post("/update-product/:id", admin, d.ProductHandler.Update)
}

// SkipGlobalLimit exempts static assets, health and verification from the global limiter.
func SkipGlobalLimit(c *fiber.Ctx) bool {
	p := c.Path()
	return strings.HasPrefix(p, "/static/") || p == "/healthz" || strings.HasPrefix(p, "/verify-product")
}
