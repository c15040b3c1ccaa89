package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/diya-thabet/hirfa/internal/models"
)

type FairPlayConfig struct {
	NewProviderBoost  int
	NewProviderWindow time.Duration
}

type MatchService struct {
	jobs JobStore
	bids BidStore
	fair FairPlayConfig
	now  func() time.Time
	log  zerolog.Logger
}

func NewMatchService(jobs JobStore, bids BidStore, fair FairPlayConfig, log zerolog.Logger) *MatchService {
	return &MatchService{jobs: jobs, bids: bids, fair: fair, now: time.Now, log: log}
}

type CreateJobInput struct {
	Title       string
	Description string
	Category    string
	Budget      float64
	Latitude    float64
	Longitude   float64
}

func (s *MatchService) CreateJob(ctx context.Context, customer models.User, input CreateJobInput) (models.Job, error) {
	input.Title = strings.TrimSpace(input.Title)

	var v validator
	n := utf8.RuneCountInString(input.Title)
	v.check(n >= 3 && n <= 100, "title", "must be between 3 and 100 characters")
	v.check(utf8.RuneCountInString(input.Description) <= 2000, "description", "must be at most 2000 characters")
	v.check(input.Budget >= 1, "budget", "must be at least 1")
	v.check(input.Latitude >= -90 && input.Latitude <= 90, "latitude", "must be between -90 and 90")
	v.check(input.Longitude >= -180 && input.Longitude <= 180, "longitude", "must be between -180 and 180")
	if err := v.err(); err != nil {
		return models.Job{}, err
	}

	job := models.Job{
		Title:       input.Title,
		Description: input.Description,
		Category:    strings.ToLower(strings.TrimSpace(input.Category)),
		Budget:      input.Budget,
		Status:      models.JobStatusOpen,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		CustomerID:  customer.ID,
	}
	if err := s.jobs.Create(ctx, &job); err != nil {
		return models.Job{}, fmt.Errorf("create job: %w", err)
	}
	public := customer.Public()
	job.Customer = &public

	s.log.Info().Int64("job_id", job.ID).Int64("customer_id", customer.ID).Msg("job created")
	return job, nil
}

func (s *MatchService) ListJobs(ctx context.Context) ([]models.Job, error) {
	jobs, err := s.jobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func (s *MatchService) GetJob(ctx context.Context, id int64) (models.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return models.Job{}, fmt.Errorf("job %d: %w", id, MapRepositoryError(err))
	}
	return job, nil
}

func (s *MatchService) PlaceBid(ctx context.Context, provider models.User, jobID int64, amount float64, message string) (models.Bid, error) {
	var v validator
	v.check(amount >= 1, "amount", "must be at least 1")
	v.check(utf8.RuneCountInString(message) <= 500, "message", "must be at most 500 characters")
	if err := v.err(); err != nil {
		return models.Bid{}, err
	}

	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return models.Bid{}, err
	}
	if job.Status != models.JobStatusOpen {
		return models.Bid{}, invalidOp("job %d is not open for bidding", jobID)
	}

	bid := models.Bid{JobID: jobID, ProviderID: provider.ID, Amount: amount, Message: message}
	if err := s.bids.Create(ctx, &bid); err != nil {
		return models.Bid{}, fmt.Errorf("create bid: %w", err)
	}
	public := provider.Public()
	bid.Provider = &public
	return bid, nil
}

// ListBids returns a job's bids in Fair-Play order: fairness score plus a boost
// for providers younger than the configured window, highest first.
func (s *MatchService) ListBids(ctx context.Context, jobID int64) ([]models.Bid, error) {
	if _, err := s.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	bids, err := s.bids.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	SortFairPlay(bids, s.now(), s.fair)
	return bids, nil
}

// SortFairPlay orders bids in place. Ties keep their original order.
func SortFairPlay(bids []models.Bid, now time.Time, fair FairPlayConfig) {
	score := func(b models.Bid) int {
		if b.Provider == nil {
			return 0
		}
		s := b.Provider.FairnessScore
		if now.Sub(b.Provider.CreatedAt) < fair.NewProviderWindow {
			s += fair.NewProviderBoost
		}
		return s
	}
	sort.SliceStable(bids, func(i, j int) bool {
		return score(bids[i]) > score(bids[j])
	})
}

func (s *MatchService) AcceptBid(ctx context.Context, customer models.User, jobID, bidID int64) (models.Bid, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return models.Bid{}, err
	}
	if job.CustomerID != customer.ID {
		return models.Bid{}, fmt.Errorf("%w: only the job owner can accept bids", ErrForbidden)
	}
	if job.Status != models.JobStatusOpen {
		return models.Bid{}, invalidOp("job %d is not open", jobID)
	}

	bid, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("bid %d: %w", bidID, MapRepositoryError(err))
	}
	if bid.JobID != jobID {
		return models.Bid{}, fmt.Errorf("bid %d: %w", bidID, ErrNotFound)
	}

	if err := s.bids.Accept(ctx, jobID, bidID); err != nil {
		err = MapRepositoryError(err)
		if errors.Is(err, ErrInvalidOperation) {
			return models.Bid{}, invalidOp("job %d already has an accepted bid", jobID)
		}
		return models.Bid{}, fmt.Errorf("accept bid: %w", err)
	}
	bid.Accepted = true

	s.log.Info().Int64("job_id", jobID).Int64("bid_id", bidID).Msg("bid accepted")
	return bid, nil
}

func (s *MatchService) UpdateJobStatus(ctx context.Context, customer models.User, jobID int64, next models.JobStatus) (models.Job, error) {
	if !next.Valid() {
		return models.Job{}, &ValidationError{Fields: map[string]string{"status": "unknown job status"}}
	}
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return models.Job{}, err
	}
	if job.CustomerID != customer.ID && customer.Role != models.UserRoleAdmin {
		return models.Job{}, fmt.Errorf("%w: only the job owner can change its status", ErrForbidden)
	}
	if !job.Status.CanTransitionTo(next) {
		return models.Job{}, invalidOp("cannot move job from %s to %s", job.Status, next)
	}
	if err := s.jobs.UpdateStatus(ctx, jobID, job.Status, next); err != nil {
		return models.Job{}, fmt.Errorf("update status: %w", MapRepositoryError(err))
	}
	job.Status = next
	return job, nil
}
