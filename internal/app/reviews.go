package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"company_reviews/internal/domain"
)

type ReviewService struct {
	repo domain.ReviewRepository
}

func NewReviewService(r domain.ReviewRepository) *ReviewService {
	return &ReviewService{repo: r}
}

// List returns the caller's reviews. Order is whatever the store returns.
func (s *ReviewService) List(ctx context.Context, caller domain.User) ([]domain.Review, error) {
	if caller.IsAnonymous() {
		return nil, domain.ErrUnauthenticated
	}
	rs, err := s.repo.ListReviewsByOwner(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list reviews for user %d: %w", caller.ID, err)
	}
	out := make([]domain.Review, 0, len(rs))
	for _, r := range rs {
		if !domain.IsOwner(caller, r) {
			log.Warn().Int64("review_id", r.ID).Int64("owner_id", r.Owner.ID).
				Int64("caller_id", caller.ID).Msg("store returned a review of another owner; dropped")
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Create validates payload and persists it as a new review owned by caller.
// On invalid input it returns domain.FieldErrors and writes nothing.
func (s *ReviewService) Create(ctx context.Context, caller domain.User, payload map[string]any) (domain.Review, error) {
	if caller.IsAnonymous() {
		return domain.Review{}, domain.ErrUnauthenticated
	}
	r, errs := FromWire(payload, caller)
	if errs != nil {
		return domain.Review{}, errs
	}
	saved, err := s.repo.CreateReview(ctx, r)
	if err != nil {
		return domain.Review{}, fmt.Errorf("create review: %w", err)
	}
	// the store does not know display names; keep the caller's
	saved.Owner = caller
	return saved, nil
}

// Get returns review id if the caller owns it. A missing review is
// domain.ErrNotFound, someone else's is domain.ErrForbidden.
func (s *ReviewService) Get(ctx context.Context, caller domain.User, id int64) (domain.Review, error) {
	if caller.IsAnonymous() {
		return domain.Review{}, domain.ErrUnauthenticated
	}
	r, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return domain.Review{}, fmt.Errorf("get review %d: %w", id, err)
	}
	if !domain.IsOwner(caller, r) {
		return domain.Review{}, domain.ErrForbidden
	}
	return r, nil
}
