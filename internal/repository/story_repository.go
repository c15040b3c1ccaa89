package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/diya-thabet/hirfa/internal/models"
)

type StoryRepository struct {
	db DB
}

func NewStoryRepository(db DB) *StoryRepository {
	return &StoryRepository{db: db}
}

func (r *StoryRepository) Create(ctx context.Context, story *models.Story) error {
	const query = `
		INSERT INTO stories (author_id, media_url, caption)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRow(ctx, query, story.AuthorID, story.MediaURL, story.Caption).
		Scan(&story.ID, &story.CreatedAt); err != nil {
		return fmt.Errorf("insert story: %w", err)
	}
	return nil
}

// ListSince returns stories created after since, newest first.
func (r *StoryRepository) ListSince(ctx context.Context, since time.Time) ([]models.Story, error) {
	const query = `
		SELECT s.id, s.author_id, s.media_url, s.caption, s.created_at,
		       u.full_name, u.role, u.fairness_score, u.badges, u.verified, u.created_at
		FROM stories s
		JOIN users u ON u.id = s.author_id
		WHERE s.created_at > $1
		ORDER BY s.created_at DESC, s.id DESC
	`
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer rows.Close()

	stories := []models.Story{}
	for rows.Next() {
		var story models.Story
		author := &models.User{}
		if err := rows.Scan(
			&story.ID,
			&story.AuthorID,
			&story.MediaURL,
			&story.Caption,
			&story.CreatedAt,
			&author.FullName,
			&author.Role,
			&author.FairnessScore,
			&author.Badges,
			&author.Verified,
			&author.CreatedAt,
		); err != nil {
			return nil, err
		}
		author.ID = story.AuthorID
		story.User = author
		stories = append(stories, story)
	}
	return stories, rows.Err()
}

// DeleteBefore removes stories created at or before cutoff.
func (r *StoryRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM stories WHERE created_at <= $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stories: %w", err)
	}
	return tag.RowsAffected(), nil
}
