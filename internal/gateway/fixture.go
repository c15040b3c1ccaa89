package gateway

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/diya-thabet/hirfa/internal/config"
	"github.com/diya-thabet/hirfa/internal/handlers"
	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/repository/memory"
	"github.com/diya-thabet/hirfa/internal/server"
)

// FixtureBackend serves requests in-process from an http.Handler, normally the
// real API router over memory stores.
type FixtureBackend struct {
	handler http.Handler
}

func NewFixtureBackend(handler http.Handler) *FixtureBackend {
	return &FixtureBackend{handler: handler}
}

func (b *FixtureBackend) Do(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	httpReq, err := newHTTPRequest(ctx, "http://fixture", req)
	if err != nil {
		return Response{}, err
	}

	w := &responseBuffer{header: http.Header{}}
	b.handler.ServeHTTP(w, httpReq)
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return Response{Status: w.status, Body: w.body.Bytes()}, nil
}

type responseBuffer struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (w *responseBuffer) Header() http.Header { return w.header }

func (w *responseBuffer) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *responseBuffer) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(p)
}

// FixtureConfig is the API configuration the offline backend runs with.
func FixtureConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment: "fixture",
		Storage:     config.StorageConfig{PublicURL: "memory://media"},
		Security: config.SecurityConfig{
			JWTSecret:   "fixture-secret",
			JWTTTL:      24 * time.Hour,
			MediaSecret: "fixture-media",
		},
		Marketplace: config.MarketplaceConfig{
			StoryTTL:            24 * time.Hour,
			NewProviderBoost:    20,
			NewProviderWindow:   30 * 24 * time.Hour,
			DefaultNearbyRadius: 5000,
			MaxUploadBytes:      10 << 20,
		},
	}
}

// NewFixture builds an offline backend over st, running the same router,
// middleware and services as the server.
func NewFixture(log zerolog.Logger, st *memory.Store) *FixtureBackend {
	gin.SetMode(gin.ReleaseMode)
	cfg := FixtureConfig()
	set, _ := handlers.NewMemoryHandlerSet(log, cfg, st)
	return NewFixtureBackend(server.NewEngine(cfg, log, set))
}

// SeedDemo fills st with a small marketplace for offline use.
func SeedDemo(st *memory.Store) {
	now := time.Now().UTC()
	customer := st.SeedUser(models.User{
		PhoneNumber: "20000001", FullName: "Sami Trabelsi", Role: models.UserRoleCustomer,
		FairnessScore: models.DefaultFairnessScore, CreatedAt: now.AddDate(-1, 0, 0),
	})
	veteran := st.SeedUser(models.User{
		PhoneNumber: "20000002", FullName: "Hedi Mansour", Role: models.UserRoleProvider,
		FairnessScore: 92, Badges: []string{models.BadgeFirstReview, models.BadgeTrusted}, Verified: true,
		CreatedAt: now.AddDate(-2, 0, 0),
	})
	st.SeedUser(models.User{
		PhoneNumber: "20000003", FullName: "Ines Gharbi", Role: models.UserRoleProvider,
		FairnessScore: 85, CreatedAt: now.AddDate(0, 0, -5),
	})

	st.SeedJob(models.Job{
		Title: "Fix a leaking kitchen sink", Description: "Water under the cabinet since yesterday.",
		Category: "plumbing", Budget: 60, Status: models.JobStatusOpen,
		Latitude: 36.8065, Longitude: 10.1815, CustomerID: customer.ID,
	})
	st.SeedJob(models.Job{
		Title: "Math tutoring for baccalaureate", Description: "Two sessions a week.",
		Category: "tutoring", Budget: 120, Status: models.JobStatusOpen,
		Latitude: 36.8782, Longitude: 10.3247, CustomerID: customer.ID,
	})
	st.SeedStory(models.Story{
		AuthorID: veteran.ID, MediaURL: "memory://media/demo/tiles.jpg", Caption: "Bathroom tiles finished today",
	})
}
