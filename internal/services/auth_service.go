package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"authentiq/internal/domain"
	"authentiq/internal/metrics"
	"authentiq/internal/repos"
	"authentiq/internal/validate"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const DefaultSessionTTL = 14 * 24 * time.Hour

// AuthService authenticates accounts and resolves sessions to a role.
type AuthService struct {
	Users      *repos.UserRepo
	Sessions   repos.SessionStore
	Policy     validate.PasswordPolicy
	BcryptCost int
	TTL        time.Duration
	Metrics    *metrics.Metrics
	Now        func() time.Time

	dummyOnce sync.Once
	dummy     []byte
}

type RegisterInput struct {
	Username        string
	Password        string
	ConfirmPassword string
	Email           string
	FirstName       string
	LastName        string
}

func (s *AuthService) clock() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) cost() int {
	if s.BcryptCost == 0 {
		return bcrypt.DefaultCost
	}
	return s.BcryptCost
}

// dummyHash is compared against when the username is unknown, so both
// failure paths pay for one bcrypt comparison at the configured cost.
func (s *AuthService) dummyHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummy, _ = bcrypt.GenerateFromPassword([]byte("authentiq-no-such-user"), s.cost())
	})
	return s.dummy
}

func (s *AuthService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultSessionTTL
	}
	return s.TTL
}

// Register creates a regular account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.register(ctx, in, false)
}

// RegisterAdmin creates an account flagged staff and superuser.
func (s *AuthService) RegisterAdmin(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.register(ctx, in, true)
}

func (s *AuthService) register(ctx context.Context, in RegisterInput, admin bool) (*domain.User, error) {
	verr := &domain.ValidationError{}
	username, ok := validate.Username(in.Username)
	if !ok {
		verr.Add("username", "Enter a valid username. Letters, digits and @/./+/-/_ only, up to 150 characters.")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		verr.Add("email", "Enter a valid email address.")
	}
	first, ok := validate.PersonName(in.FirstName)
	if !ok {
		verr.Add("first_name", "Ensure this value has at most 30 characters.")
	}
	last, ok := validate.PersonName(in.LastName)
	if !ok {
		verr.Add("last_name", "Ensure this value has at most 30 characters.")
	}
	if msg, ok := s.Policy.Check(in.Password); !ok {
		verr.Add("password", msg)
	}
	if in.ConfirmPassword == "" {
		verr.Add("confirm_password", "This field is required.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if in.Password != in.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost())
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		verr.Add("password", "Ensure this value has at most 72 bytes.")
		return nil, verr
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		ID:          uuid.NewString(),
		Username:    username,
		Email:       email,
		FirstName:   first,
		LastName:    last,
		Hash:        string(hash),
		IsStaff:     admin,
		IsSuperuser: admin,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.Metrics.IncrementRegistrations()
	return u, nil
}

// EnsureAdmin makes sure username exists with admin rights. A blank username is a no-op.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" {
		return nil
	}
	u, err := s.Users.ByUsername(ctx, username)
	switch {
	case err == nil:
		if domain.RoleOf(u) == domain.RoleAdmin {
			return nil
		}
		return s.Users.SetAdmin(ctx, u.ID, true)
	case errors.Is(err, domain.ErrNotFound):
		_, err = s.RegisterAdmin(ctx, RegisterInput{Username: username, Password: password, ConfirmPassword: password})
		return err
	default:
		return err
	}
}

// Authenticate checks the credentials and opens a new session.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (domain.Session, error) {
	u, err := s.Users.ByUsername(ctx, username)
	if err != nil {
		s.Metrics.ObserveLogin("failure")
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash(), []byte(password))
			return domain.Session{}, domain.ErrInvalidCredentials
		}
		return domain.Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		s.Metrics.ObserveLogin("failure")
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	sess := domain.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Username:  u.Username,
		Role:      s.Classify(u),
		ExpiresAt: s.clock().Add(s.ttl()).UTC(),
	}
	if err := s.Sessions.Bind(ctx, sess.ID, u.ID, sess.ExpiresAt); err != nil {
		return domain.Session{}, err
	}
	s.Metrics.ObserveLogin("success")
	return sess, nil
}

func (s *AuthService) Classify(u *domain.User) domain.Role { return domain.RoleOf(u) }

// Resolve maps a session id back to its Session; unknown or expired ids are unauthenticated.
func (s *AuthService) Resolve(ctx context.Context, sid string) (domain.Session, error) {
	if sid == "" {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	userID, expires, err := s.Sessions.Lookup(ctx, sid)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	if err != nil {
		return domain.Session{}, err
	}
	if !s.clock().Before(expires) {
		_ = s.Sessions.Delete(ctx, sid)
		return domain.Session{}, domain.ErrUnauthenticated
	}
	u, err := s.Users.ByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{ID: sid, UserID: u.ID, Username: u.Username, Role: s.Classify(u), ExpiresAt: expires}, nil
}

func (s *AuthService) Logout(ctx context.Context, sess domain.Session) error {
	if sess.ID == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, sess.ID)
}
