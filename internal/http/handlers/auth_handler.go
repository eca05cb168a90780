package handlers

import (
	"errors"

	"authentiq/internal/domain"
	"authentiq/internal/log"
	"authentiq/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth         *services.AuthService
	CookieSecure bool
}

// GET /
func (h *AuthHandler) Home(c *fiber.Ctx) error {
	return c.Redirect(homeFor(sessionOf(c)))
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	form := fiber.Map{"Username": "", "Email": "", "FirstName": "", "LastName": ""}
	return render(c, "register", fiber.Map{"Form": form, "Errors": map[string]string{}})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	in := services.RegisterInput{
		Username:        c.FormValue("username"),
		Password:        c.FormValue("password1"),
		ConfirmPassword: c.FormValue("password2"),
		Email:           c.FormValue("email"),
		FirstName:       c.FormValue("first_name"),
		LastName:        c.FormValue("last_name"),
	}
	form := fiber.Map{"Username": in.Username, "Email": in.Email, "FirstName": in.FirstName, "LastName": in.LastName}

	u, err := h.Auth.Register(c.UserContext(), in)
	if err != nil {
		status := fiber.StatusBadRequest
		errs := map[string]string{}
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			errs = verr.Fields
		case errors.Is(err, domain.ErrPasswordMismatch):
			errs["confirm_password"] = "The two password fields didn't match."
		case errors.Is(err, domain.ErrDuplicateUsername):
			status = fiber.StatusConflict
			errs["username"] = "A user with that username already exists."
		default:
			return err
		}
		log.Security(c, "auth.register.fail", map[string]any{"username": in.Username, "reason": err.Error()})
		c.Status(status)
		return render(c, "register", fiber.Map{"Form": form, "Errors": errs})
	}

	log.Audit(c, "auth.register.success", map[string]any{"username": u.Username})
	setFlash(c, flashSuccess, "Account created for "+u.Username+"! Please log in.")
	return c.Redirect("/login/")
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": "", "Username": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	pass := c.FormValue("password")

	sess, err := h.Auth.Authenticate(c.UserContext(), username, pass)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			return err
		}
		log.Security(c, "auth.login.fail", map[string]any{"username": username})
		c.Status(fiber.StatusUnauthorized)
		return render(c, "login", fiber.Map{"Err": "Invalid username or password.", "Username": username})
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.CookieSecure,
	})
	c.Locals("user_id", sess.UserID)
	log.Audit(c, "auth.login.success", map[string]any{"username": sess.Username, "role": sess.Role.String()})
	return c.Redirect(homeFor(sess))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess := sessionOf(c)
	if err := h.Auth.Logout(c.UserContext(), sess); err != nil {
		log.Error(c, "auth.logout.fail", err, nil)
	}
	expireCookie(c, sessionCookie)
	log.Audit(c, "auth.logout", map[string]any{"username": sess.Username})
	setFlash(c, flashSuccess, "You have been successfully logged out.")
	return c.Redirect("/login/")
}
