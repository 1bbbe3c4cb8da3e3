package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"company_reviews/internal/adapters/observability"
	"company_reviews/internal/domain"
)

const keyPrefix = "session:"

// SessionStore resolves opaque session tokens written by the login service.
// Each key holds {"id":..,"username":..} and expires with the session.
type SessionStore struct{ c *redis.Client }

func New(addr, pass string, db int) *SessionStore {
	return NewFromClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}))
}

func NewFromClient(c *redis.Client) *SessionStore { return &SessionStore{c: c} }

type sessionValue struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (s *SessionStore) Authenticate(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		observability.ObserveAuth("session", "rejected")
		return domain.User{}, domain.ErrUnauthenticated
	}
	b, err := s.c.Get(ctx, keyPrefix+token).Bytes()
	if err == redis.Nil {
		observability.ObserveAuth("session", "rejected")
		return domain.User{}, domain.ErrUnauthenticated
	}
	if err != nil {
		observability.ObserveAuth("session", "error")
		return domain.User{}, fmt.Errorf("session lookup: %w", err)
	}
	var v sessionValue
	if err := json.Unmarshal(b, &v); err != nil || v.ID == 0 {
		observability.ObserveAuth("session", "rejected")
		return domain.User{}, domain.ErrUnauthenticated
	}
	observability.ObserveAuth("session", "ok")
	return domain.User{ID: v.ID, Username: v.Username}, nil
}

// Put stores a session for u. A zero ttl keeps it until revoked.
func (s *SessionStore) Put(ctx context.Context, token string, u domain.User, ttl time.Duration) error {
	if token == "" || u.IsAnonymous() {
		return errors.New("session needs a token and a user")
	}
	b, err := json.Marshal(sessionValue{ID: u.ID, Username: u.Username})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.c.Set(ctx, keyPrefix+token, b, ttl).Err()
}

func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	return s.c.Del(ctx, keyPrefix+token).Err()
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.c.Ping(ctx).Err()
}
