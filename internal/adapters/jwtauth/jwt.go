package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"company_reviews/internal/adapters/observability"
	"company_reviews/internal/domain"
)

// Authenticator verifies HS256 tokens minted by the identity service.
type Authenticator struct {
	Secret   []byte
	Issuer   string
	Duration time.Duration
}

type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func New(secret, issuer string, ttl time.Duration) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{Secret: []byte(secret), Issuer: issuer, Duration: ttl}, nil
}

// Sign mints a token for u. The service itself never logs anyone in; this is
// here for the identity service's tooling and for tests.
func (a *Authenticator) Sign(u domain.User) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(a.Duration)
	claims := Claims{
		UserID:   u.ID,
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.Issuer,
			Subject:   fmt.Sprint(u.ID),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, exp, nil
}

func (a *Authenticator) Authenticate(_ context.Context, token string) (domain.User, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.Issuer))
	}
	tok, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return a.Secret, nil
	}, opts...)
	if err != nil {
		observability.ObserveAuth("jwt", "rejected")
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.UserID == 0 {
		observability.ObserveAuth("jwt", "rejected")
		return domain.User{}, domain.ErrUnauthenticated
	}
	observability.ObserveAuth("jwt", "ok")
	return domain.User{ID: claims.UserID, Username: claims.Username}, nil
}
