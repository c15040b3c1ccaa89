package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diya-thabet/hirfa/internal/models"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestUserRepositoryCreate(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("12345678", "Amira", models.UserRoleProvider, 100, []string{}, false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))

	user := &models.User{PhoneNumber: "12345678", FullName: "Amira", Role: models.UserRoleProvider, FairnessScore: 100}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, now, user.CreatedAt)
	assert.Equal(t, []string{}, user.Badges)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateDuplicatePhone(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("12345678", "Amira", models.UserRoleCustomer, 100, []string{}, false).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	user := &models.User{PhoneNumber: "12345678", FullName: "Amira", Role: models.UserRoleCustomer, FairnessScore: 100}
	assert.ErrorIs(t, repo.Create(context.Background(), user), ErrAlreadyExists)
}

func TestUserRepositoryFindByPhoneNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE phone_number = $1")).
		WithArgs("00000000").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByPhone(context.Background(), "00000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepositoryUpdateFairnessClamps(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET fairness_score")).
		WithArgs(int64(3), 100, []string{models.BadgeTrusted}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateFairness(context.Background(), 3, 140, []string{models.BadgeTrusted}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepositoryGetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewJobRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE j.id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "title", "description", "category", "budget", "status",
			"latitude", "longitude", "customer_id", "created_at", "updated_at",
			"full_name", "role", "fairness_score", "badges", "verified", "u_created_at",
		}).AddRow(
			int64(1), "Fix sink", "Leaking", "plumbing", 50.0, models.JobStatusOpen,
			36.8, 10.18, int64(9), now, now,
			"Sami", models.UserRoleCustomer, 100, []string{}, true, now,
		))

	job, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Fix sink", job.Title)
	assert.Equal(t, models.JobStatusOpen, job.Status)
	require.NotNil(t, job.Customer)
	assert.Equal(t, int64(9), job.Customer.ID)
	assert.Equal(t, "Sami", job.Customer.FullName)
	assert.True(t, job.Customer.Verified)
}

func TestJobRepositoryUpdateStatusConflict(t *testing.T) {
	mock := newMock(t)
	repo := NewJobRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET status")).
		WithArgs(int64(1), models.JobStatusOpen, models.JobStatusCancelled).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), 1, models.JobStatusOpen, models.JobStatusCancelled)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestBidRepositoryAccept(t *testing.T) {
	mock := newMock(t)
	repo := NewBidRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET status")).
		WithArgs(int64(1), models.JobStatusInProgress, models.JobStatusOpen).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bids SET accepted = TRUE")).
		WithArgs(int64(4), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Accept(context.Background(), 1, 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidRepositoryAcceptRollsBackWhenJobNotOpen(t *testing.T) {
	mock := newMock(t)
	repo := NewBidRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET status")).
		WithArgs(int64(1), models.JobStatusInProgress, models.JobStatusOpen).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.Accept(context.Background(), 1, 4)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositoryStats(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM reviews WHERE provider_id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"count", "avg"}).AddRow(3, 4.5))

	stats, err := repo.StatsForProvider(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, ReviewStats{Count: 3, Average: 4.5}, stats)
}

func TestStoryRepositoryDeleteBefore(t *testing.T) {
	mock := newMock(t)
	repo := NewStoryRepository(mock)
	cutoff := time.Now().Add(-24 * time.Hour)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM stories")).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	n, err := repo.DeleteBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
