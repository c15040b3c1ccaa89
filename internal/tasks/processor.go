package tasks

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/diya-thabet/hirfa/internal/events"
	"github.com/diya-thabet/hirfa/internal/service"
)

type FairnessRecomputer interface {
	RecomputeFairness(ctx context.Context, providerID int64) (int, []string, error)
}

type StoryExpirer interface {
	ExpireStories(ctx context.Context) (int64, error)
}

type MediaIngester interface {
	Ingest(ctx context.Context, mediaID string) error
}

// Processor dispatches stream events to the marketplace services.
type Processor struct {
	fairness FairnessRecomputer
	stories  StoryExpirer
	media    MediaIngester
	logger   zerolog.Logger
}

// TaskPayload is the flat field set carried by every stream entry.
type TaskPayload struct {
	Type       string
	EventID    string
	ProviderID int64
	MediaID    string
}

func NewProcessor(fairness FairnessRecomputer, stories StoryExpirer, media MediaIngester, logger zerolog.Logger) *Processor {
	return &Processor{
		fairness: fairness,
		stories:  stories,
		media:    media,
		logger:   logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	payload, err := decodePayload(msg.Values)
	if err != nil {
		return fmt.Errorf("decode payload %s: %w", msg.ID, err)
	}

	log := p.logger.With().Str("type", payload.Type).Str("event_id", payload.EventID).Logger()

	switch payload.Type {
	case service.EventReviewCreated, service.EventFairnessRecompute:
		return p.handleFairness(ctx, log, payload)
	case service.EventStoriesExpire:
		return p.handleStoryExpiry(ctx, log)
	case service.EventMediaIngest:
		return p.handleIngest(ctx, log, payload)
	default:
		log.Warn().Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}) (TaskPayload, error) {
	payload := TaskPayload{
		Type:    stringValue(values[events.FieldType]),
		EventID: stringValue(values[events.FieldEventID]),
		MediaID: stringValue(values["mediaId"]),
	}
	if raw := stringValue(values["providerId"]); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return TaskPayload{}, fmt.Errorf("providerId %q: %w", raw, err)
		}
		payload.ProviderID = id
	}
	if payload.Type == "" {
		return TaskPayload{}, fmt.Errorf("missing %s field", events.FieldType)
	}
	return payload, nil
}

func stringValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func (p *Processor) handleFairness(ctx context.Context, log zerolog.Logger, payload TaskPayload) error {
	if payload.ProviderID == 0 {
		log.Warn().Msg("fairness event without provider")
		return nil
	}
	score, badges, err := p.fairness.RecomputeFairness(ctx, payload.ProviderID)
	if err != nil {
		return fmt.Errorf("recompute provider %d: %w", payload.ProviderID, err)
	}
	log.Debug().Int64("provider_id", payload.ProviderID).Int("score", score).Strs("badges", badges).Msg("fairness updated")
	return nil
}

func (p *Processor) handleStoryExpiry(ctx context.Context, log zerolog.Logger) error {
	n, err := p.stories.ExpireStories(ctx)
	if err != nil {
		return fmt.Errorf("expire stories: %w", err)
	}
	log.Debug().Int64("deleted", n).Msg("story sweep done")
	return nil
}

func (p *Processor) handleIngest(ctx context.Context, log zerolog.Logger, payload TaskPayload) error {
	if payload.MediaID == "" {
		log.Warn().Msg("ingest event without media id")
		return nil
	}
	if err := p.media.Ingest(ctx, payload.MediaID); err != nil {
		return fmt.Errorf("ingest %s: %w", payload.MediaID, err)
	}
	log.Info().Str("media_id", payload.MediaID).Msg("media ready")
	return nil
}
