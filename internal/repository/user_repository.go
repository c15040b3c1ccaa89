package repository

import (
	"context"
	"fmt"

	"github.com/diya-thabet/hirfa/internal/models"
)

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, phone_number, full_name, role, fairness_score, badges, verified, created_at`

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const query = `
		INSERT INTO users (phone_number, full_name, role, fairness_score, badges, verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	badges := user.Badges
	if badges == nil {
		badges = []string{}
	}

	err := r.db.QueryRow(ctx, query,
		user.PhoneNumber,
		user.FullName,
		user.Role,
		user.FairnessScore,
		badges,
		user.Verified,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.Badges = badges
	return nil
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone_number = $1`
	return r.scanOne(ctx, query, phone)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// ListByIDs returns the users found among ids, keyed by id.
func (r *UserRepository) ListByIDs(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	users := make(map[int64]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.PhoneNumber,
			&user.FullName,
			&user.Role,
			&user.FairnessScore,
			&user.Badges,
			&user.Verified,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		users[user.ID] = user
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateFairness(ctx context.Context, id int64, score int, badges []string) error {
	const query = `UPDATE users SET fairness_score = $2, badges = $3 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, models.ClampFairness(score), badges)
	if err != nil {
		return fmt.Errorf("update fairness: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) scanOne(ctx context.Context, query string, arg any) (models.User, error) {
	var user models.User
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.PhoneNumber,
		&user.FullName,
		&user.Role,
		&user.FairnessScore,
		&user.Badges,
		&user.Verified,
		&user.CreatedAt,
	); err != nil {
		return models.User{}, notFound(err)
	}
	return user, nil
}

func (r *UserRepository) SetVerified(ctx context.Context, id int64, verified bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET verified = $2 WHERE id = $1`, id, verified)
	if err != nil {
		return fmt.Errorf("set verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
