package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"authentiq/internal/domain"
	"authentiq/internal/validate"
)

const productCols = `id, name, product_id, description, created_at, updated_at`

// ProductRepo is the product store. Uniqueness of product_id is left to the database.
type ProductRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewProductRepo(db *sqlx.DB) *ProductRepo {
	return &ProductRepo{db: db, now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }}
}

func (r *ProductRepo) Create(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	in, err := validate.Product(in)
	if err != nil {
		return domain.Product{}, err
	}
	now := r.now()
	var id int64
	err = r.db.GetContext(ctx, &id, r.db.Rebind(`
		INSERT INTO products(name, product_id, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`), in.Name, in.ProductID, in.Description, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Product{}, domain.ErrDuplicateKey
		}
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return domain.Product{
		ID:          id,
		Name:        in.Name,
		ProductID:   in.ProductID,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Update rewrites the editable fields and refreshes updated_at; created_at is never touched.
func (r *ProductRepo) Update(ctx context.Context, id int64, in domain.ProductInput) (domain.Product, error) {
	in, err := validate.Product(in)
	if err != nil {
		return domain.Product{}, err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE products
		SET name = ?, product_id = ?, description = ?, updated_at = ?
		WHERE id = ?`), in.Name, in.ProductID, in.Description, r.now(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Product{}, domain.ErrDuplicateKey
		}
		return domain.Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Product{}, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE id = ?`), id)
	return p, notFound(err)
}

// GetByProductID is an exact, case-sensitive match.
func (r *ProductRepo) GetByProductID(ctx context.Context, productID string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE product_id = ?`), productID)
	return p, notFound(err)
}

// List returns products newest first; limit <= 0 means no cap.
func (r *ProductRepo) List(ctx context.Context, limit int) ([]domain.Product, error) {
	q := `SELECT ` + productCols + ` FROM products ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	out := []domain.Product{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

// Search matches a case-insensitive substring of name, product_id or description.
// An empty query lists everything.
func (r *ProductRepo) Search(ctx context.Context, query string) ([]domain.Product, error) {
	if query == "" {
		return r.List(ctx, 0)
	}
	pat := likePattern(query)
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+productCols+`
		FROM products
		WHERE LOWER(name) LIKE ? ESCAPE '\'
		   OR LOWER(product_id) LIKE ? ESCAPE '\'
		   OR LOWER(description) LIKE ? ESCAPE '\'
		ORDER BY created_at DESC, id DESC`), pat, pat, pat)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return out, nil
}

func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}
