package pages

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/diya-thabet/hirfa/internal/gateway"
	"github.com/diya-thabet/hirfa/internal/i18n"
	"github.com/diya-thabet/hirfa/internal/models"
)

type ChatView struct {
	JobID    int64
	Messages []models.ChatMessage
	Err      error
	self     int64
}

func LoadChat(ctx context.Context, d Deps, jobID int64) *ChatView {
	v := &ChatView{JobID: jobID, Messages: []models.ChatMessage{}}
	if user, ok := d.Session.User(); ok {
		v.self = user.ID
	}
	body, err := d.API.ChatHistory(ctx, jobID)
	if err != nil {
		d.Log.Warn().Err(err).Int64("job_id", jobID).Msg("failed to load chat")
		v.Err = err
		return v
	}
	v.Messages = decodeList[models.ChatMessage](body, d.Log)
	return v
}

// SendChat posts a message from the signed-in user and reloads the thread.
func SendChat(ctx context.Context, d Deps, jobID, receiverID int64, content string) (*ChatView, error) {
	user, ok := d.Session.User()
	if !ok {
		return nil, ErrSignedOut
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message is empty", ErrInvalidInput)
	}
	if _, err := d.API.SendMessage(ctx, gateway.MessageRequest{
		SenderID:   user.ID,
		ReceiverID: receiverID,
		JobID:      jobID,
		Content:    content,
	}); err != nil {
		return nil, err
	}
	return LoadChat(ctx, d, jobID), nil
}

func (v *ChatView) Render(w io.Writer, t *i18n.Translator) error {
	fmt.Fprintf(w, "%s #%d\n\n", t.T("chat.title"), v.JobID)
	if v.Err != nil {
		errorLine(w, t, v.Err)
		return nil
	}
	if len(v.Messages) == 0 {
		fmt.Fprintln(w, t.T("chat.empty"))
		return nil
	}
	for _, m := range v.Messages {
		who := fmt.Sprintf("#%d", m.SenderID)
		if m.SenderID == v.self {
			who = ">"
		}
		fmt.Fprintf(w, "%s %s  %s\n", m.CreatedAt.Format("15:04"), who, m.Content)
	}
	return nil
}
