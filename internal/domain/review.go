package domain

import "time"

// Field bounds, in characters.
const (
	MaxTitleLen    = 64
	MaxSummaryLen  = 10000
	MaxCompanyLen  = 24
	MaxReviewerLen = 24
	MinRating      = 0
	MaxRating      = 5
)

type Review struct {
	ID        int64
	Title     string
	Summary   string
	Rating    int
	IPAddress string // write-only: never leaves the service
	Company   string
	Reviewer  string
	Owner     User
	CreatedAt time.Time
}

// ReviewFields is the validated, writable subset of a Review.
type ReviewFields struct {
	Title     string
	Summary   string
	Rating    int
	IPAddress string
	Company   string
	Reviewer  string
}

// NewReview builds an unsaved review owned by owner.
func NewReview(f ReviewFields, owner User) Review {
	return Review{
		Title:     f.Title,
		Summary:   f.Summary,
		Rating:    f.Rating,
		IPAddress: f.IPAddress,
		Company:   f.Company,
		Reviewer:  f.Reviewer,
		Owner:     owner,
	}
}

type User struct {
	ID       int64
	Username string
}

// IsAnonymous reports whether u is the zero (unauthenticated) user.
func (u User) IsAnonymous() bool { return u.ID == 0 }

// IsOwner is the single authorization rule: only the owner may see a review.
func IsOwner(caller User, r Review) bool {
	return !caller.IsAnonymous() && caller.ID == r.Owner.ID
}
