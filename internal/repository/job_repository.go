package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/diya-thabet/hirfa/internal/models"
)

type JobRepository struct {
	db DB
}

func NewJobRepository(db DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobSelect = `
	SELECT j.id, j.title, j.description, j.category, j.budget, j.status,
	       j.latitude, j.longitude, j.customer_id, j.created_at, j.updated_at,
	       u.full_name, u.role, u.fairness_score, u.badges, u.verified, u.created_at
	FROM jobs j
	JOIN users u ON u.id = j.customer_id
`

func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	const query = `
		INSERT INTO jobs (title, description, category, budget, status, latitude, longitude, customer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		job.Title,
		job.Description,
		job.Category,
		job.Budget,
		job.Status,
		job.Latitude,
		job.Longitude,
		job.CustomerID,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id int64) (models.Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, jobSelect+` WHERE j.id = $1`, id))
	if err != nil {
		return models.Job{}, notFound(err)
	}
	return job, nil
}

// List returns every job, newest first.
func (r *JobRepository) List(ctx context.Context) ([]models.Job, error) {
	rows, err := r.db.Query(ctx, jobSelect+` ORDER BY j.created_at DESC, j.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// UpdateStatus moves a job from one status to another, failing with ErrConflict
// when the stored status is no longer from.
func (r *JobRepository) UpdateStatus(ctx context.Context, id int64, from, to models.JobStatus) error {
	const query = `UPDATE jobs SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	tag, err := r.db.Exec(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func scanJob(row pgx.Row) (models.Job, error) {
	var job models.Job
	customer := &models.User{}
	if err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&job.Category,
		&job.Budget,
		&job.Status,
		&job.Latitude,
		&job.Longitude,
		&job.CustomerID,
		&job.CreatedAt,
		&job.UpdatedAt,
		&customer.FullName,
		&customer.Role,
		&customer.FairnessScore,
		&customer.Badges,
		&customer.Verified,
		&customer.CreatedAt,
	); err != nil {
		return models.Job{}, err
	}
	customer.ID = job.CustomerID
	job.Customer = customer
	return job, nil
}
