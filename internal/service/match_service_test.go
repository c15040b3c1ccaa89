package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/repository/memory"
)

var fairCfg = FairPlayConfig{NewProviderBoost: 20, NewProviderWindow: 30 * 24 * time.Hour}

func newMatch(jobs ...models.Job) (*MatchService, *memory.Store) {
	st := memory.New()
	for _, j := range jobs {
		st.SeedJob(j)
	}
	return NewMatchService(st.Jobs(), st.Bids(), fairCfg, zerolog.Nop()), st
}

func TestCreateJobValidation(t *testing.T) {
	svc, _ := newMatch()
	customer := models.User{ID: 1, Role: models.UserRoleCustomer}

	_, err := svc.CreateJob(context.Background(), customer, CreateJobInput{Title: "ab", Budget: 0, Latitude: 91, Longitude: -181})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 4)

	job, err := svc.CreateJob(context.Background(), customer, CreateJobInput{
		Title: "Fix sink", Description: "Leaking", Category: "Plumbing", Budget: 40, Latitude: 36.8, Longitude: 10.1,
	})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusOpen, job.Status)
	assert.Equal(t, "plumbing", job.Category)
	assert.Equal(t, int64(1), job.CustomerID)
}

func TestPlaceBidRequiresOpenJob(t *testing.T) {
	svc, _ := newMatch(
		models.Job{ID: 1, Status: models.JobStatusOpen, CustomerID: 9},
		models.Job{ID: 2, Status: models.JobStatusInProgress, CustomerID: 9},
	)
	provider := models.User{ID: 5, Role: models.UserRoleProvider}

	bid, err := svc.PlaceBid(context.Background(), provider, 1, 30, "")
	require.NoError(t, err)
	assert.Equal(t, "", bid.Message)
	assert.False(t, bid.Accepted)

	_, err = svc.PlaceBid(context.Background(), provider, 2, 30, "hi")
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = svc.PlaceBid(context.Background(), provider, 404, 30, "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.PlaceBid(context.Background(), provider, 1, 0.5, "")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSortFairPlay(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	veteran := &models.User{ID: 1, FairnessScore: 95, CreatedAt: now.AddDate(-1, 0, 0)}
	newcomer := &models.User{ID: 2, FairnessScore: 80, CreatedAt: now.AddDate(0, 0, -3)}
	average := &models.User{ID: 3, FairnessScore: 95, CreatedAt: now.AddDate(0, -6, 0)}
	low := &models.User{ID: 4, FairnessScore: 40, CreatedAt: now.AddDate(0, -2, 0)}

	bids := []models.Bid{
		{ID: 10, Provider: low},
		{ID: 11, Provider: veteran},
		{ID: 12, Provider: newcomer},
		{ID: 13, Provider: average},
	}
	SortFairPlay(bids, now, fairCfg)

	var order []int64
	for _, b := range bids {
		order = append(order, b.ID)
	}
	// newcomer 80+20=100 beats both 95s; equal scores keep insertion order.
	assert.Equal(t, []int64{12, 11, 13, 10}, order)
}

func TestListBidsUsesFairPlayOrder(t *testing.T) {
	svc, st := newMatch(models.Job{ID: 1, CustomerID: 9})
	now := time.Now()
	st.SeedUser(models.User{ID: 5, FairnessScore: 90, CreatedAt: now.AddDate(-1, 0, 0), PhoneNumber: "11111111"})
	st.SeedUser(models.User{ID: 6, FairnessScore: 75, CreatedAt: now.AddDate(0, 0, -1), PhoneNumber: "22222222"})
	ctx := context.Background()

	_, err := svc.PlaceBid(ctx, models.User{ID: 5}, 1, 30, "")
	require.NoError(t, err)
	_, err = svc.PlaceBid(ctx, models.User{ID: 6}, 1, 35, "")
	require.NoError(t, err)

	bids, err := svc.ListBids(ctx, 1)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	assert.Equal(t, int64(6), bids[0].ProviderID)

	_, err = svc.ListBids(ctx, 77)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptBid(t *testing.T) {
	svc, st := newMatch(models.Job{ID: 1, Status: models.JobStatusOpen, CustomerID: 9})
	ctx := context.Background()
	owner := models.User{ID: 9, Role: models.UserRoleCustomer}

	b1, err := svc.PlaceBid(ctx, models.User{ID: 5}, 1, 30, "")
	require.NoError(t, err)
	b2, err := svc.PlaceBid(ctx, models.User{ID: 6}, 1, 25, "")
	require.NoError(t, err)

	_, err = svc.AcceptBid(ctx, models.User{ID: 8}, 1, b1.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	accepted, err := svc.AcceptBid(ctx, owner, 1, b1.ID)
	require.NoError(t, err)
	assert.True(t, accepted.Accepted)

	job, _ := st.Jobs().GetByID(ctx, 1)
	assert.Equal(t, models.JobStatusInProgress, job.Status)

	_, err = svc.AcceptBid(ctx, owner, 1, b2.ID)
	assert.ErrorIs(t, err, ErrInvalidOperation)

	got, err := st.Bids().AcceptedForJob(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, b1.ID, got.ID)
}

func TestUpdateJobStatusTransitions(t *testing.T) {
	svc, _ := newMatch(models.Job{ID: 1, Status: models.JobStatusOpen, CustomerID: 9})
	ctx := context.Background()
	owner := models.User{ID: 9, Role: models.UserRoleCustomer}

	_, err := svc.UpdateJobStatus(ctx, owner, 1, models.JobStatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = svc.UpdateJobStatus(ctx, models.User{ID: 2, Role: models.UserRoleCustomer}, 1, models.JobStatusCancelled)
	assert.ErrorIs(t, err, ErrForbidden)

	job, err := svc.UpdateJobStatus(ctx, owner, 1, models.JobStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, job.Status)

	_, err = svc.UpdateJobStatus(ctx, owner, 1, models.JobStatusOpen)
	assert.ErrorIs(t, err, ErrInvalidOperation)
}
