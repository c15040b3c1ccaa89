package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/diya-thabet/hirfa/internal/models"
)

type BidRepository struct {
	db DB
}

func NewBidRepository(db DB) *BidRepository {
	return &BidRepository{db: db}
}

const bidSelect = `
	SELECT b.id, b.job_id, b.provider_id, b.amount, b.message, b.accepted, b.created_at,
	       u.full_name, u.role, u.fairness_score, u.badges, u.verified, u.created_at
	FROM bids b
	JOIN users u ON u.id = b.provider_id
`

func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	const query = `
		INSERT INTO bids (job_id, provider_id, amount, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, accepted, created_at
	`

	err := r.db.QueryRow(ctx, query, bid.JobID, bid.ProviderID, bid.Amount, bid.Message).
		Scan(&bid.ID, &bid.Accepted, &bid.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert bid: %w", err)
	}
	return nil
}

func (r *BidRepository) GetByID(ctx context.Context, id int64) (models.Bid, error) {
	bid, err := scanBid(r.db.QueryRow(ctx, bidSelect+` WHERE b.id = $1`, id))
	if err != nil {
		return models.Bid{}, notFound(err)
	}
	return bid, nil
}

// ListByJob returns a job's bids in insertion order.
func (r *BidRepository) ListByJob(ctx context.Context, jobID int64) ([]models.Bid, error) {
	rows, err := r.db.Query(ctx, bidSelect+` WHERE b.job_id = $1 ORDER BY b.id ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	defer rows.Close()

	bids := []models.Bid{}
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	return bids, rows.Err()
}

// Accept marks the bid accepted and moves its open job to IN_PROGRESS in one
// transaction. ErrConflict means the job already left OPEN or has an accepted bid.
func (r *BidRepository) Accept(ctx context.Context, jobID, bidID int64) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
		jobID, models.JobStatusInProgress, models.JobStatusOpen,
	)
	if err != nil {
		return fmt.Errorf("claim job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}

	tag, err = tx.Exec(ctx,
		`UPDATE bids SET accepted = TRUE WHERE id = $1 AND job_id = $2 AND NOT accepted`,
		bidID, jobID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("accept bid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// AcceptedForJob returns the accepted bid of a job.
func (r *BidRepository) AcceptedForJob(ctx context.Context, jobID int64) (models.Bid, error) {
	bid, err := scanBid(r.db.QueryRow(ctx, bidSelect+` WHERE b.job_id = $1 AND b.accepted`, jobID))
	if err != nil {
		return models.Bid{}, notFound(err)
	}
	return bid, nil
}

func scanBid(row pgx.Row) (models.Bid, error) {
	var bid models.Bid
	provider := &models.User{}
	if err := row.Scan(
		&bid.ID,
		&bid.JobID,
		&bid.ProviderID,
		&bid.Amount,
		&bid.Message,
		&bid.Accepted,
		&bid.CreatedAt,
		&provider.FullName,
		&provider.Role,
		&provider.FairnessScore,
		&provider.Badges,
		&provider.Verified,
		&provider.CreatedAt,
	); err != nil {
		return models.Bid{}, err
	}
	provider.ID = bid.ProviderID
	bid.Provider = provider
	return bid, nil
}
