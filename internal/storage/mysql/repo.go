package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"company_reviews/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

type scanner interface {
	Scan(dest ...any) error
}

func scanReview(s scanner) (domain.Review, error) {
	var r domain.Review
	err := s.Scan(
		&r.ID,
		&r.Title,
		&r.Summary,
		&r.Rating,
		&r.IPAddress,
		&r.Company,
		&r.Reviewer,
		&r.Owner.ID,
		&r.Owner.Username,
		&r.CreatedAt,
	)
	return r, err
}

// CreateReview inserts one row and reads it back so CreatedAt comes from the
// database clock.
func (r *Repo) CreateReview(ctx context.Context, rv domain.Review) (domain.Review, error) {
	if rv.Owner.IsAnonymous() {
		return domain.Review{}, errors.New("create review: owner is required")
	}
	res, err := r.db.ExecContext(ctx, insertReviewSQL,
		rv.Title,
		rv.Summary,
		rv.Rating,
		rv.IPAddress,
		rv.Company,
		rv.Reviewer,
		rv.Owner.ID,
	)
	if err != nil {
		return domain.Review{}, fmt.Errorf("insert review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Review{}, fmt.Errorf("last insert id: %w", err)
	}
	return r.GetReview(ctx, id)
}

func (r *Repo) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, getReviewSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Review{}, domain.ErrNotFound
		}
		return domain.Review{}, fmt.Errorf("scan review: %w", err)
	}
	return rv, nil
}

func (r *Repo) ListReviewsByOwner(ctx context.Context, ownerID int64) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsByOwnerSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
