package services

import (
	"context"
	"errors"

	"authentiq/internal/domain"
	"authentiq/internal/metrics"
	"authentiq/internal/validate"
)

type ProductLookup interface {
	GetByProductID(ctx context.Context, productID string) (domain.Product, error)
}

// VerifyService answers whether a product id belongs to a registered product.
// It keeps no state between calls.
type VerifyService struct {
	Products ProductLookup
	Metrics  *metrics.Metrics
}

func NewVerifyService(products ProductLookup, m *metrics.Metrics) *VerifyService {
	return &VerifyService{Products: products, Metrics: m}
}

func (s *VerifyService) Verify(ctx context.Context, sess domain.Session, candidateID string) (domain.VerificationResult, error) {
	if !sess.Authenticated() {
		return domain.VerificationResult{}, domain.ErrUnauthenticated
	}
	id, ok := validate.CandidateID(candidateID)
	if !ok {
		return domain.VerificationResult{}, domain.ErrEmptyInput
	}
	if !validate.FitsProductID(id) {
		// no stored id is this long, so nothing can match exactly
		s.Metrics.ObserveVerification(string(domain.StatusCounterfeit))
		return domain.VerificationResult{Query: id, Status: domain.StatusCounterfeit}, nil
	}
	p, err := s.Products.GetByProductID(ctx, id)
	switch {
	case err == nil:
		s.Metrics.ObserveVerification(string(domain.StatusAuthentic))
		return domain.VerificationResult{Query: id, Status: domain.StatusAuthentic, Product: &p}, nil
	case errors.Is(err, domain.ErrNotFound):
		s.Metrics.ObserveVerification(string(domain.StatusCounterfeit))
		return domain.VerificationResult{Query: id, Status: domain.StatusCounterfeit}, nil
	default:
		return domain.VerificationResult{}, err
	}
}
