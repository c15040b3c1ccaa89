package service

import (
	"context"
	"errors"
	"time"

	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/repository"
)

// The repositories in internal/repository and internal/repository/memory satisfy these.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByPhone(ctx context.Context, phone string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	ListByIDs(ctx context.Context, ids []int64) (map[int64]models.User, error)
	UpdateFairness(ctx context.Context, id int64, score int, badges []string) error
}

type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id int64) (models.Job, error)
	List(ctx context.Context) ([]models.Job, error)
	UpdateStatus(ctx context.Context, id int64, from, to models.JobStatus) error
}

type BidStore interface {
	Create(ctx context.Context, bid *models.Bid) error
	GetByID(ctx context.Context, id int64) (models.Bid, error)
	ListByJob(ctx context.Context, jobID int64) ([]models.Bid, error)
	Accept(ctx context.Context, jobID, bidID int64) error
	AcceptedForJob(ctx context.Context, jobID int64) (models.Bid, error)
}

type StoryStore interface {
	Create(ctx context.Context, story *models.Story) error
	ListSince(ctx context.Context, since time.Time) ([]models.Story, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ChatStore interface {
	Create(ctx context.Context, msg *models.ChatMessage) error
	ListByJob(ctx context.Context, jobID int64) ([]models.ChatMessage, error)
}

type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	StatsForProvider(ctx context.Context, providerID int64) (repository.ReviewStats, error)
}

type MediaStore interface {
	Create(ctx context.Context, media *models.Media) error
	UpdateStatus(ctx context.Context, id string, status models.MediaStatus) error
	GetByID(ctx context.Context, id string) (models.Media, error)
}

// EventPublisher appends domain events to the worker stream.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, fields map[string]any) error
}

// ChatBroadcaster fans a stored message out to live listeners.
type ChatBroadcaster interface {
	BroadcastChat(ctx context.Context, msg models.ChatMessage) error
}

// LocationIndex stores and queries user positions.
type LocationIndex interface {
	Update(ctx context.Context, userID int64, lat, lon float64) error
	Nearby(ctx context.Context, lat, lon, radiusMeters float64) ([]models.ProviderLocation, error)
}

// MapRepositoryError translates repository sentinels into service ones.
func MapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrAlreadyExists):
		return ErrAlreadyExists
	case errors.Is(err, repository.ErrConflict):
		return ErrInvalidOperation
	}
	return err
}
