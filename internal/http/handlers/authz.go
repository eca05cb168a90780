package handlers

import (
	"errors"
	"time"

	"authentiq/internal/domain"
	applog "authentiq/internal/log"
	"authentiq/internal/services"

	"github.com/gofiber/fiber/v2"
)

const sessionCookie = "sid"

// LoadSession resolves the sid cookie into a domain.Session stored in Locals.
func LoadSession(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(sessionCookie)
		if sid == "" {
			return c.Next()
		}
		sess, err := auth.Resolve(c.UserContext(), sid)
		switch {
		case err == nil:
			c.Locals("session", sess)
			c.Locals("user_id", sess.UserID)
		case errors.Is(err, domain.ErrUnauthenticated):
			expireCookie(c, sessionCookie)
		default:
			applog.Error(c, "session.resolve.fail", err, nil)
		}
		return c.Next()
	}
}

func sessionOf(c *fiber.Ctx) domain.Session {
	sess, _ := c.Locals("session").(domain.Session)
	return sess
}

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !sessionOf(c).Authenticated() {
			return c.Redirect("/login/")
		}
		return c.Next()
	}
}

// RequireAdmin sends anonymous callers to login and regular users back to their dashboard.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := sessionOf(c)
		if !sess.Authenticated() {
			return c.Redirect("/login/")
		}
		if !sess.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"username": sess.Username})
			return forbidden(c)
		}
		return c.Next()
	}
}

// RequireAnonymous keeps signed-in users away from the login and register pages.
func RequireAnonymous() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sessionOf(c).Authenticated() {
			return c.Redirect("/")
		}
		return c.Next()
	}
}

func forbidden(c *fiber.Ctx) error {
	setFlash(c, flashError, "You do not have permission to access this page.")
	return c.Redirect("/user-dashboard/")
}

func homeFor(sess domain.Session) string {
	switch {
	case !sess.Authenticated():
		return "/login/"
	case sess.IsAdmin():
		return "/admin-dashboard/"
	default:
		return "/user-dashboard/"
	}
}

func expireCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
