package repos

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"authentiq/internal/domain"
)

// SessionStore binds session ids (the sid cookie) to user ids until they expire.
type SessionStore interface {
	Bind(ctx context.Context, sid, userID string, expires time.Time) error
	// Lookup returns domain.ErrNotFound for unknown sessions. Expiry is checked by the caller.
	Lookup(ctx context.Context, sid string) (userID string, expires time.Time, err error)
	Delete(ctx context.Context, sid string) error
}

type SQLSessionStore struct{ db *sqlx.DB }

func NewSQLSessionStore(db *sqlx.DB) *SQLSessionStore { return &SQLSessionStore{db: db} }

func (s *SQLSessionStore) Bind(ctx context.Context, sid, userID string, expires time.Time) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO sessions(id, user_id, created_at, expires_at)
		VALUES(?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id, expires_at=excluded.expires_at`),
		sid, userID, time.Now().UTC().Truncate(time.Microsecond), expires.UTC())
	if err != nil {
		return fmt.Errorf("bind session: %w", err)
	}
	return nil
}

func (s *SQLSessionStore) Lookup(ctx context.Context, sid string) (string, time.Time, error) {
	var row struct {
		UserID    string    `db:"user_id"`
		ExpiresAt time.Time `db:"expires_at"`
	}
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT user_id, expires_at FROM sessions WHERE id=?`), sid); err != nil {
		return "", time.Time{}, notFound(err)
	}
	return row.UserID, row.ExpiresAt, nil
}

func (s *SQLSessionStore) Delete(ctx context.Context, sid string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM sessions WHERE id=?`), sid)
	return err
}

// RedisSessionStore keeps sessions as "userID|expiresUnixNano" values with a matching key TTL.
type RedisSessionStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, prefix: "authentiq:session:"}
}

func (s *RedisSessionStore) Bind(ctx context.Context, sid, userID string, expires time.Time) error {
	ttl := time.Until(expires)
	if ttl <= 0 {
		return s.Delete(ctx, sid)
	}
	val := userID + "|" + strconv.FormatInt(expires.UnixNano(), 10)
	if err := s.rdb.Set(ctx, s.prefix+sid, val, ttl).Err(); err != nil {
		return fmt.Errorf("bind session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Lookup(ctx context.Context, sid string) (string, time.Time, error) {
	val, err := s.rdb.Get(ctx, s.prefix+sid).Result()
	if errors.Is(err, redis.Nil) {
		return "", time.Time{}, domain.ErrNotFound
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("lookup session: %w", err)
	}
	userID, exp, ok := strings.Cut(val, "|")
	if !ok || userID == "" {
		return "", time.Time{}, domain.ErrNotFound
	}
	ns, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return "", time.Time{}, domain.ErrNotFound
	}
	return userID, time.Unix(0, ns).UTC(), nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, s.prefix+sid).Err()
}
