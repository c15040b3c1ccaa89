// Package events publishes marketplace events to the worker stream and chat channels.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/diya-thabet/hirfa/internal/ids"
	"github.com/diya-thabet/hirfa/internal/models"
)

const (
	FieldType    = "type"
	FieldEventID = "eventId"
)

type RedisPublisher struct {
	client *redis.Client
	stream string
}

func NewRedisPublisher(client *redis.Client, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream}
}

// Publish appends an event to the stream. Field values must be strings or numbers.
func (p *RedisPublisher) Publish(ctx context.Context, eventType string, fields map[string]any) error {
	values := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		values[k] = v
	}
	values[FieldType] = eventType
	values[FieldEventID] = ids.New()

	if err := p.client.XAdd(ctx, &redis.XAddArgs{Stream: p.stream, Values: values}).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", eventType, err)
	}
	return nil
}

func ChatChannel(jobID int64) string {
	return "chat:job:" + strconv.FormatInt(jobID, 10)
}

func (p *RedisPublisher) BroadcastChat(ctx context.Context, msg models.ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, ChatChannel(msg.JobID), payload).Err()
}
