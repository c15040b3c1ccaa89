package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/diya-thabet/hirfa/internal/service"
)

// Scheduler enqueues periodic maintenance events for the worker.
type Scheduler struct {
	cron      *cron.Cron
	publisher service.EventPublisher
	spec      string
	log       zerolog.Logger
}

// NewScheduler takes a six-field cron spec (seconds first) for the story sweep.
func NewScheduler(publisher service.EventPublisher, storyCleanupSpec string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:      c,
		publisher: publisher,
		spec:      storyCleanupSpec,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if s.publisher == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.enqueueStoryExpiry); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits up to five seconds for a running job.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueStoryExpiry() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.publisher.Publish(ctx, service.EventStoriesExpire, map[string]any{
		"at": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		s.log.Error().Err(err).Msg("enqueue story expiry failed")
	}
}
