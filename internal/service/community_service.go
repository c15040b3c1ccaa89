package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/diya-thabet/hirfa/internal/models"
)

const EventStoriesExpire = "stories.expire"

type CommunityService struct {
	stories StoryStore
	ttl     time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

func NewCommunityService(stories StoryStore, ttl time.Duration, log zerolog.Logger) *CommunityService {
	return &CommunityService{stories: stories, ttl: ttl, now: time.Now, log: log}
}

// Feed returns the stories still inside the visibility window, newest first.
func (s *CommunityService) Feed(ctx context.Context) ([]models.Story, error) {
	stories, err := s.stories.ListSince(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	return stories, nil
}

func (s *CommunityService) PostStory(ctx context.Context, author models.User, mediaURL, caption string) (models.Story, error) {
	mediaURL = strings.TrimSpace(mediaURL)

	var v validator
	v.check(mediaURL != "", "mediaUrl", "is required")
	v.check(utf8.RuneCountInString(caption) <= 500, "caption", "must be at most 500 characters")
	if err := v.err(); err != nil {
		return models.Story{}, err
	}

	story := models.Story{AuthorID: author.ID, MediaURL: mediaURL, Caption: caption}
	if err := s.stories.Create(ctx, &story); err != nil {
		return models.Story{}, fmt.Errorf("post story: %w", err)
	}
	public := author.Public()
	story.User = &public
	return story, nil
}

// ExpireStories deletes stories that left the visibility window.
func (s *CommunityService) ExpireStories(ctx context.Context) (int64, error) {
	n, err := s.stories.DeleteBefore(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info().Int64("deleted", n).Msg("expired stories removed")
	}
	return n, nil
}
