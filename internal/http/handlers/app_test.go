package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"authentiq/internal/config"
	"authentiq/internal/domain"
	"authentiq/internal/http/handlers"
	"authentiq/internal/metrics"
	"authentiq/internal/repos"
	"authentiq/internal/services"
)

const templatesDir = "../../../web/templates"

type testApp struct {
	app     *fiber.App
	db      *sqlx.DB
	auth    *services.AuthService
	deps    *handlers.Deps
	metrics *metrics.Metrics
}

// newTestApp wires the real routes the way cmd/authentiq does, minus the global limiter.
// tune runs before Mount so tests can shrink the login limiter.
func newTestApp(t *testing.T, tune func(*handlers.Deps)) *testApp {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := metrics.New()
	authSvc := &services.AuthService{
		Users:      repos.NewUserRepo(db),
		Sessions:   repos.NewSQLSessionStore(db),
		BcryptCost: bcrypt.MinCost,
		Metrics:    m,
	}

	app := fiber.New(fiber.Config{
		Views:        html.New(templatesDir, ".html"),
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    1 << 20,
	})
	app.Use(requestid.New())
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))

	deps := handlers.NewDeps(db, config.Config{}, authSvc, m)
	if tune != nil {
		tune(deps)
	}
	deps.Mount(app)
	app.Use(func(c *fiber.Ctx) error {
		return handlers.Page(c, fiber.StatusNotFound, "Page not found")
	})
	return &testApp{app: app, db: db, auth: authSvc, deps: deps, metrics: m}
}

func (a *testApp) seedUser(t *testing.T, username, password string, admin bool) {
	t.Helper()
	in := services.RegisterInput{Username: username, Password: password, ConfirmPassword: password}
	var err error
	if admin {
		_, err = a.auth.RegisterAdmin(context.Background(), in)
	} else {
		_, err = a.auth.Register(context.Background(), in)
	}
	require.NoError(t, err)
}

func (a *testApp) seedProduct(t *testing.T, name, productID, desc string) domain.Product {
	t.Helper()
	p, err := repos.NewProductRepo(a.db).Create(context.Background(), domain.ProductInput{Name: name, ProductID: productID, Description: desc})
	require.NoError(t, err)
	return p
}

// client keeps cookies between requests like a browser would.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func (a *testApp) client(t *testing.T) *client {
	return &client{t: t, app: a.app, cookies: map[string]string{}}
}

func (cl *client) do(req *http.Request) *http.Response {
	cl.t.Helper()
	for name, value := range cl.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := cl.app.Test(req, -1)
	require.NoError(cl.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Value == "" || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now())) {
			delete(cl.cookies, ck.Name)
			continue
		}
		cl.cookies[ck.Name] = ck.Value
	}
	return resp
}

func (cl *client) get(path string) *http.Response {
	cl.t.Helper()
	return cl.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// post submits a form, fetching a CSRF cookie first when the client has none.
func (cl *client) post(path string, form url.Values) *http.Response {
	cl.t.Helper()
	if cl.cookies["csrf_"] == "" {
		cl.get("/healthz")
		require.NotEmpty(cl.t, cl.cookies["csrf_"], "csrf cookie missing")
	}
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", cl.cookies["csrf_"])
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.do(req)
}

func (cl *client) login(username, password string) *http.Response {
	cl.t.Helper()
	return cl.post("/login/", url.Values{"username": {username}, "password": {password}})
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func postWithoutToken(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
