package handlers

import (
	"github.com/rs/zerolog"

	"github.com/diya-thabet/hirfa/internal/config"
	"github.com/diya-thabet/hirfa/internal/repository/memory"
	"github.com/diya-thabet/hirfa/internal/service"
)

// NewMemoryHandlerSet wires the handlers over in-process stores. Events land in
// the returned recorder instead of a stream.
func NewMemoryHandlerSet(log zerolog.Logger, cfg *config.AppConfig, st *memory.Store) (HandlerSet, *memory.Events) {
	users := st.Users()
	jobs := st.Jobs()
	bids := st.Bids()
	events := &memory.Events{}
	objects := &memory.Objects{BaseURL: cfg.Storage.PublicURL}

	services := Services{
		Auth: service.NewAuthService(users, service.AuthConfig{
			JWTSecret:       cfg.Security.JWTSecret,
			JWTTTL:          cfg.Security.JWTTTL,
			AdminSecretHash: cfg.Security.AdminSecretHash,
		}, log),
		Match: service.NewMatchService(jobs, bids, service.FairPlayConfig{
			NewProviderBoost:  cfg.Marketplace.NewProviderBoost,
			NewProviderWindow: cfg.Marketplace.NewProviderWindow,
		}, log),
		Geo:       service.NewGeoService(st.Geo(), users, cfg.Marketplace.DefaultNearbyRadius),
		Community: service.NewCommunityService(st.Stories(), cfg.Marketplace.StoryTTL, log),
		Chat:      service.NewChatService(st.Chat(), jobs, users, events, log),
		Review:    service.NewReviewService(st.Reviews(), jobs, bids, users, events, log),
		Media: service.NewMediaService(st.Media(), objects, events,
			cfg.Security.MediaSecret, cfg.Marketplace.MaxUploadBytes, log),
		Users:  users,
		Events: events,
	}
	return NewHandlerSetWithServices(log, cfg, services, nil), events
}
