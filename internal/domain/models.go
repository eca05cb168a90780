package domain

import "time"

// Product is a registered authentic product.
type Product struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	ProductID   string    `db:"product_id"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (p Product) String() string { return p.Name + " (" + p.ProductID + ")" }

// ProductInput carries the editable product fields.
type ProductInput struct {
	Name        string
	ProductID   string
	Description string
}

type VerificationStatus string

const (
	StatusAuthentic   VerificationStatus = "authentic"
	StatusCounterfeit VerificationStatus = "counterfeit"
)

// VerificationResult is the outcome of a lookup. Product is nil when Status is StatusCounterfeit.
type VerificationResult struct {
	Query   string
	Status  VerificationStatus
	Product *Product
}

func (r VerificationResult) Authentic() bool { return r.Status == StatusAuthentic }

// Summary backs the admin dashboard.
type Summary struct {
	RecentProducts []Product
	TotalCount     int
}
