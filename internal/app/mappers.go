package app

import (
	"time"

	"company_reviews/internal/domain"
)

// ReviewOut is the wire shape of a review. There is no ip_address field,
// the address is write-only.
type ReviewOut struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Rating    int       `json:"rating"`
	Company   string    `json:"company"`
	Reviewer  string    `json:"reviewer"`
	User      string    `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

/********** outbound **********/

func ToWire(r domain.Review) ReviewOut {
	return ReviewOut{
		ID:        r.ID,
		Title:     r.Title,
		Summary:   r.Summary,
		Rating:    r.Rating,
		Company:   r.Company,
		Reviewer:  r.Reviewer,
		User:      r.Owner.Username,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

// ToWireList never returns nil so an empty list encodes as [].
func ToWireList(rs []domain.Review) []ReviewOut {
	out := make([]ReviewOut, 0, len(rs))
	for _, r := range rs {
		out = append(out, ToWire(r))
	}
	return out
}

/********** inbound **********/

// FromWire turns a decoded request body into an unsaved review owned by owner.
// Server-controlled keys (id, user, owner, created_at) are never read.
func FromWire(payload map[string]any, owner domain.User) (domain.Review, domain.FieldErrors) {
	f, errs := domain.ValidateReview(payload)
	if errs != nil {
		return domain.Review{}, errs
	}
	return domain.NewReview(f, owner), nil
}
