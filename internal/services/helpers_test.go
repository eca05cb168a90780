package services_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"authentiq/internal/domain"
	"authentiq/internal/metrics"
	"authentiq/internal/repos"
	"authentiq/internal/services"
)

type env struct {
	db       *sqlx.DB
	products *repos.ProductRepo
	auth     *services.AuthService
	registry *services.RegistryService
	verify   *services.VerifyService
	metrics  *metrics.Metrics
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := metrics.New()
	products := repos.NewProductRepo(db)
	return &env{
		db:       db,
		products: products,
		auth: &services.AuthService{
			Users:      repos.NewUserRepo(db),
			Sessions:   repos.NewSQLSessionStore(db),
			BcryptCost: bcrypt.MinCost,
			Metrics:    m,
		},
		registry: services.NewRegistryService(products, m),
		verify:   services.NewVerifyService(products, m),
		metrics:  m,
	}
}

func (e *env) login(t *testing.T, username, password string, admin bool) domain.Session {
	t.Helper()
	ctx := context.Background()
	in := services.RegisterInput{Username: username, Password: password, ConfirmPassword: password}
	var err error
	if admin {
		_, err = e.auth.RegisterAdmin(ctx, in)
	} else {
		_, err = e.auth.Register(ctx, in)
	}
	require.NoError(t, err)
	sess, err := e.auth.Authenticate(ctx, username, password)
	require.NoError(t, err)
	return sess
}
