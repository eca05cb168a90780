package repos

import (
	"context"
	"fmt"
	"time"

	"authentiq/internal/domain"

	"github.com/jmoiron/sqlx"
)

const userCols = `id, username, email, first_name, last_name, password_hash, is_staff, is_superuser, created_at`

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts u; a taken username yields domain.ErrDuplicateUsername.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO users(`+userCols+`)
		VALUES(?,?,?,?,?,?,?,?,?)`),
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.Hash, u.IsStaff, u.IsSuperuser, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateUsername
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// ByUsername is case-sensitive, like the login form.
func (r *UserRepo) ByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE username=?`), username); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE id=?`), id); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// SetAdmin flips the staff and superuser flags together.
func (r *UserRepo) SetAdmin(ctx context.Context, id string, admin bool) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`UPDATE users SET is_staff=?, is_superuser=? WHERE id=?`), admin, admin, id)
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`)
	return n, err
}
