package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/diya-thabet/hirfa/internal/models"
)

type ChatService struct {
	messages  ChatStore
	jobs      JobStore
	users     UserStore
	broadcast ChatBroadcaster
	log       zerolog.Logger
}

func NewChatService(messages ChatStore, jobs JobStore, users UserStore, broadcast ChatBroadcaster, log zerolog.Logger) *ChatService {
	return &ChatService{messages: messages, jobs: jobs, users: users, broadcast: broadcast, log: log}
}

type SendMessageInput struct {
	SenderID   int64
	ReceiverID int64
	JobID      int64
	Content    string
}

func (s *ChatService) History(ctx context.Context, jobID int64) ([]models.ChatMessage, error) {
	messages, err := s.messages.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("chat history: %w", err)
	}
	return messages, nil
}

func (s *ChatService) Send(ctx context.Context, sender models.User, input SendMessageInput) (models.ChatMessage, error) {
	content := strings.TrimSpace(input.Content)

	var v validator
	v.check(input.SenderID != 0, "senderId", "is required")
	v.check(input.ReceiverID != 0, "receiverId", "is required")
	v.check(input.JobID != 0, "jobId", "is required")
	v.check(content != "", "content", "is required")
	v.check(utf8.RuneCountInString(input.Content) <= 1000, "content", "must be at most 1000 characters")
	if err := v.err(); err != nil {
		return models.ChatMessage{}, err
	}

	if input.SenderID != sender.ID {
		return models.ChatMessage{}, fmt.Errorf("%w: cannot send as another user", ErrForbidden)
	}
	if input.ReceiverID == sender.ID {
		return models.ChatMessage{}, invalidOp("cannot message yourself")
	}
	if _, err := s.jobs.GetByID(ctx, input.JobID); err != nil {
		return models.ChatMessage{}, fmt.Errorf("job %d: %w", input.JobID, MapRepositoryError(err))
	}
	if _, err := s.users.GetByID(ctx, input.ReceiverID); err != nil {
		return models.ChatMessage{}, fmt.Errorf("receiver %d: %w", input.ReceiverID, MapRepositoryError(err))
	}

	msg := models.ChatMessage{
		SenderID:   input.SenderID,
		ReceiverID: input.ReceiverID,
		JobID:      input.JobID,
		Content:    input.Content,
	}
	if err := s.messages.Create(ctx, &msg); err != nil {
		return models.ChatMessage{}, fmt.Errorf("store message: %w", err)
	}

	if s.broadcast != nil {
		if err := s.broadcast.BroadcastChat(ctx, msg); err != nil {
			s.log.Warn().Err(err).Int64("job_id", msg.JobID).Msg("chat broadcast failed")
		}
	}
	return msg, nil
}
