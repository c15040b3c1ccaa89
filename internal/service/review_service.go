package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/diya-thabet/hirfa/internal/models"
)

const (
	EventReviewCreated     = "review.created"
	EventFairnessRecompute = "fairness.recompute"
)

type ReviewService struct {
	reviews ReviewStore
	jobs    JobStore
	bids    BidStore
	users   UserStore
	events  EventPublisher
	log     zerolog.Logger
}

func NewReviewService(reviews ReviewStore, jobs JobStore, bids BidStore, users UserStore, events EventPublisher, log zerolog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, jobs: jobs, bids: bids, users: users, events: events, log: log}
}

type CreateReviewInput struct {
	JobID    int64
	Rating   int
	Comment  string
	PhotoURL *string
}

// Create records the customer's review of the provider whose bid was accepted.
func (s *ReviewService) Create(ctx context.Context, reviewer models.User, input CreateReviewInput) (models.Review, error) {
	var v validator
	v.check(input.JobID != 0, "jobId", "is required")
	v.check(input.Rating >= 1 && input.Rating <= 5, "rating", "must be between 1 and 5")
	v.check(utf8.RuneCountInString(input.Comment) <= 1000, "comment", "must be at most 1000 characters")
	if err := v.err(); err != nil {
		return models.Review{}, err
	}

	job, err := s.jobs.GetByID(ctx, input.JobID)
	if err != nil {
		return models.Review{}, fmt.Errorf("job %d: %w", input.JobID, MapRepositoryError(err))
	}
	if job.CustomerID != reviewer.ID {
		return models.Review{}, fmt.Errorf("%w: only the job owner can review it", ErrForbidden)
	}

	accepted, err := s.bids.AcceptedForJob(ctx, job.ID)
	if err != nil {
		if errors.Is(MapRepositoryError(err), ErrNotFound) {
			return models.Review{}, invalidOp("job %d has no accepted bid", job.ID)
		}
		return models.Review{}, fmt.Errorf("accepted bid: %w", err)
	}

	review := models.Review{
		JobID:      job.ID,
		ProviderID: accepted.ProviderID,
		Rating:     input.Rating,
		Comment:    input.Comment,
		PhotoURL:   input.PhotoURL,
	}
	if err := s.reviews.Create(ctx, &review); err != nil {
		if err = MapRepositoryError(err); errors.Is(err, ErrAlreadyExists) {
			return models.Review{}, fmt.Errorf("%w: job %d was already reviewed", ErrAlreadyExists, job.ID)
		}
		return models.Review{}, fmt.Errorf("store review: %w", err)
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, EventReviewCreated, map[string]any{
			"providerId": review.ProviderID,
			"reviewId":   review.ID,
		}); err != nil {
			s.log.Warn().Err(err).Int64("review_id", review.ID).Msg("publish review event failed")
		}
	}
	return review, nil
}

// RecomputeFairness derives a provider's score and badges from their reviews.
func (s *ReviewService) RecomputeFairness(ctx context.Context, providerID int64) (int, []string, error) {
	stats, err := s.reviews.StatsForProvider(ctx, providerID)
	if err != nil {
		return 0, nil, err
	}
	score, badges := FairnessFromStats(stats.Count, stats.Average)
	if err := s.users.UpdateFairness(ctx, providerID, score, badges); err != nil {
		return 0, nil, fmt.Errorf("provider %d: %w", providerID, MapRepositoryError(err))
	}
	s.log.Info().Int64("provider_id", providerID).Int("score", score).Strs("badges", badges).Msg("fairness recomputed")
	return score, badges, nil
}

// FairnessFromStats maps review statistics to a bounded score and badge set.
// Providers without reviews keep the default score.
func FairnessFromStats(count int, average float64) (int, []string) {
	badges := []string{}
	if count == 0 {
		return models.DefaultFairnessScore, badges
	}
	score := models.ClampFairness(int(math.Round(average * 20)))

	badges = append(badges, models.BadgeFirstReview)
	if count >= 5 && average >= 4.5 {
		badges = append(badges, models.BadgeTopRated)
	}
	if count >= 10 {
		badges = append(badges, models.BadgeTrusted)
	}
	return score, badges
}
