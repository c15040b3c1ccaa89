package repository

import (
	"context"
	"fmt"

	"github.com/diya-thabet/hirfa/internal/models"
)

type ReviewRepository struct {
	db DB
}

func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// ReviewStats aggregates the reviews a provider received.
type ReviewStats struct {
	Count   int
	Average float64
}

func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	const query = `
		INSERT INTO reviews (job_id, provider_id, rating, comment, photo_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		review.JobID,
		review.ProviderID,
		review.Rating,
		review.Comment,
		review.PhotoURL,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) StatsForProvider(ctx context.Context, providerID int64) (ReviewStats, error) {
	const query = `
		SELECT COUNT(*), COALESCE(AVG(rating), 0)::float8
		FROM reviews WHERE provider_id = $1
	`
	var stats ReviewStats
	if err := r.db.QueryRow(ctx, query, providerID).Scan(&stats.Count, &stats.Average); err != nil {
		return ReviewStats{}, fmt.Errorf("review stats: %w", err)
	}
	return stats, nil
}
