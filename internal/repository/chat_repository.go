package repository

import (
	"context"
	"fmt"

	"github.com/diya-thabet/hirfa/internal/models"
)

type ChatRepository struct {
	db DB
}

func NewChatRepository(db DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	const query = `
		INSERT INTO chat_messages (sender_id, receiver_id, job_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := r.db.QueryRow(ctx, query, msg.SenderID, msg.ReceiverID, msg.JobID, msg.Content).
		Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

// ListByJob returns a job's conversation, oldest first.
func (r *ChatRepository) ListByJob(ctx context.Context, jobID int64) ([]models.ChatMessage, error) {
	const query = `
		SELECT id, sender_id, receiver_id, job_id, content, created_at
		FROM chat_messages
		WHERE job_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("list chat: %w", err)
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.JobID, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
