package domain

import "context"

type ReviewRepository interface {
	// CreateReview inserts r and returns it with ID and CreatedAt filled in.
	CreateReview(ctx context.Context, r Review) (Review, error)
	// GetReview returns ErrNotFound when no row has this id.
	GetReview(ctx context.Context, id int64) (Review, error)
	ListReviewsByOwner(ctx context.Context, ownerID int64) ([]Review, error)
}

// Authenticator resolves a bearer credential to a user.
// Unknown or expired credentials return ErrUnauthenticated.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (User, error)
}
