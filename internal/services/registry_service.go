package services

import (
	"context"

	"authentiq/internal/domain"
	"authentiq/internal/metrics"
	"authentiq/internal/validate"
)

// DashboardSize is how many recent products the dashboards show.
const DashboardSize = 10

// ProductStore is the persistence the registry and verification run on.
type ProductStore interface {
	Create(ctx context.Context, in domain.ProductInput) (domain.Product, error)
	Update(ctx context.Context, id int64, in domain.ProductInput) (domain.Product, error)
	GetByID(ctx context.Context, id int64) (domain.Product, error)
	GetByProductID(ctx context.Context, productID string) (domain.Product, error)
	List(ctx context.Context, limit int) ([]domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	Count(ctx context.Context) (int, error)
}

// RegistryService manages the product registry. Every operation except
// RecentProducts requires an admin session.
type RegistryService struct {
	Products ProductStore
	Metrics  *metrics.Metrics
}

func NewRegistryService(products ProductStore, m *metrics.Metrics) *RegistryService {
	return &RegistryService{Products: products, Metrics: m}
}

func requireAdmin(sess domain.Session) error {
	if !sess.Authenticated() {
		return domain.ErrUnauthenticated
	}
	if !sess.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func (s *RegistryService) AddProduct(ctx context.Context, sess domain.Session, in domain.ProductInput) (domain.Product, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.Product{}, err
	}
	p, err := s.Products.Create(ctx, in)
	if err != nil {
		return domain.Product{}, err
	}
	s.Metrics.IncrementProductsCreated()
	return p, nil
}

func (s *RegistryService) UpdateProduct(ctx context.Context, sess domain.Session, id int64, in domain.ProductInput) (domain.Product, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.Product{}, err
	}
	p, err := s.Products.Update(ctx, id, in)
	if err != nil {
		return domain.Product{}, err
	}
	s.Metrics.IncrementProductsUpdated()
	return p, nil
}

func (s *RegistryService) GetProduct(ctx context.Context, sess domain.Session, id int64) (domain.Product, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.Product{}, err
	}
	return s.Products.GetByID(ctx, id)
}

// ListProducts filters by query when one is given, otherwise lists everything newest first.
func (s *RegistryService) ListProducts(ctx context.Context, sess domain.Session, query string) ([]domain.Product, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	query = validate.Q(query)
	if query == "" {
		return s.Products.List(ctx, 0)
	}
	return s.Products.Search(ctx, query)
}

func (s *RegistryService) DashboardSummary(ctx context.Context, sess domain.Session) (domain.Summary, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.Summary{}, err
	}
	recent, err := s.Products.List(ctx, DashboardSize)
	if err != nil {
		return domain.Summary{}, err
	}
	total, err := s.Products.Count(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summary{RecentProducts: recent, TotalCount: total}, nil
}

// RecentProducts is open to any signed-in user.
func (s *RegistryService) RecentProducts(ctx context.Context, sess domain.Session) ([]domain.Product, error) {
	if !sess.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return s.Products.List(ctx, DashboardSize)
}
