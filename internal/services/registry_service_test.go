package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authentiq/internal/domain"
)

func TestRegistryRequiresAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.login(t, "alice", "pass", true)
	regular := e.login(t, "bob", "pass", false)

	p, err := e.registry.AddProduct(ctx, admin, domain.ProductInput{Name: "Shoe X", ProductID: "SHX-001"})
	require.NoError(t, err)

	_, err = e.registry.AddProduct(ctx, regular, domain.ProductInput{Name: "Fake", ProductID: "FAKE-1"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.registry.UpdateProduct(ctx, regular, p.ID, domain.ProductInput{Name: "Hacked", ProductID: "SHX-001"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.registry.GetProduct(ctx, regular, p.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.registry.ListProducts(ctx, regular, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.registry.DashboardSummary(ctx, regular)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = e.registry.AddProduct(ctx, domain.Session{}, domain.ProductInput{Name: "Anon", ProductID: "ANON-1"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	all, err := e.products.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1, "refused calls must not touch the store")
	assert.Equal(t, "Shoe X", all[0].Name)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ProductsCreated))
}

func TestRegistryUpdateAndErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.login(t, "alice", "pass", true)

	p, err := e.registry.AddProduct(ctx, admin, domain.ProductInput{Name: "Shoe X", ProductID: "SHX-001", Description: "v1"})
	require.NoError(t, err)
	_, err = e.registry.AddProduct(ctx, admin, domain.ProductInput{Name: "Shoe Y", ProductID: "SHX-001"})
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
	_, err = e.registry.AddProduct(ctx, admin, domain.ProductInput{Name: "Shoe Y", ProductID: "S1"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	upd, err := e.registry.UpdateProduct(ctx, admin, p.ID, domain.ProductInput{Name: "Shoe X", ProductID: "SHX-001", Description: "v2"})
	require.NoError(t, err)
	assert.Equal(t, "v2", upd.Description)

	got, err := e.registry.GetProduct(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Description)

	_, err = e.registry.UpdateProduct(ctx, admin, 999, domain.ProductInput{Name: "Ghost", ProductID: "GHO-1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ProductsUpdated))
}

func TestRegistryListAndSearch(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.login(t, "alice", "pass", true)

	for _, in := range []domain.ProductInput{
		{Name: "Widget A", ProductID: "WA-100"},
		{Name: "Gadget B", ProductID: "GB-200"},
	} {
		_, err := e.registry.AddProduct(ctx, admin, in)
		require.NoError(t, err)
	}

	got, err := e.registry.ListProducts(ctx, admin, "wid")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Widget A", got[0].Name)

	got, err = e.registry.ListProducts(ctx, admin, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Gadget B", got[0].Name, "newest first")

	got, err = e.registry.ListProducts(ctx, admin, "   ")
	require.NoError(t, err)
	assert.Len(t, got, 2, "blank query lists everything")

	got, err = e.registry.ListProducts(ctx, admin, "  gad\t")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "GB-200", got[0].ProductID)
}

func TestDashboardSummary(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.login(t, "alice", "pass", true)
	regular := e.login(t, "bob", "pass", false)

	for i := 0; i < 12; i++ {
		_, err := e.registry.AddProduct(ctx, admin, domain.ProductInput{Name: fmt.Sprintf("P%d", i), ProductID: fmt.Sprintf("PID-%03d", i)})
		require.NoError(t, err)
	}

	sum, err := e.registry.DashboardSummary(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 12, sum.TotalCount)
	require.Len(t, sum.RecentProducts, 10)
	assert.Equal(t, "PID-011", sum.RecentProducts[0].ProductID)

	recent, err := e.registry.RecentProducts(ctx, regular)
	require.NoError(t, err)
	assert.Len(t, recent, 10)

	_, err = e.registry.RecentProducts(ctx, domain.Session{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
