package repository

import (
	"context"
	"fmt"

	"github.com/diya-thabet/hirfa/internal/models"
)

type MediaRepository struct {
	db DB
}

func NewMediaRepository(db DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) Create(ctx context.Context, media *models.Media) error {
	const query = `
		INSERT INTO media (id, owner_id, bucket, object_key, format, size_bytes, status, signature)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		media.ID,
		media.OwnerID,
		media.Bucket,
		media.ObjectKey,
		media.Format,
		media.SizeBytes,
		media.Status,
		media.Signature,
	).Scan(&media.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}
	return nil
}

func (r *MediaRepository) UpdateStatus(ctx context.Context, id string, status models.MediaStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE media SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update media status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MediaRepository) GetByID(ctx context.Context, id string) (models.Media, error) {
	const query = `
		SELECT id, owner_id, bucket, object_key, format, size_bytes, status, signature, created_at
		FROM media WHERE id = $1
	`
	var media models.Media
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&media.ID,
		&media.OwnerID,
		&media.Bucket,
		&media.ObjectKey,
		&media.Format,
		&media.SizeBytes,
		&media.Status,
		&media.Signature,
		&media.CreatedAt,
	); err != nil {
		return models.Media{}, notFound(err)
	}
	return media, nil
}
