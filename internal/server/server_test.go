package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/diya-thabet/hirfa/internal/config"
	"github.com/diya-thabet/hirfa/internal/handlers"
	"github.com/diya-thabet/hirfa/internal/middleware"
	"github.com/diya-thabet/hirfa/internal/repository/memory"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.AppConfig{
		Environment: "test",
		Security:    config.SecurityConfig{JWTSecret: "s", JWTTTL: time.Hour},
		Marketplace: config.MarketplaceConfig{StoryTTL: time.Hour, MaxUploadBytes: 1 << 20},
	}
	set, _ := handlers.NewMemoryHandlerSet(zerolog.Nop(), cfg, memory.New())
	return NewEngine(cfg, zerolog.Nop(), set)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestEngine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nothing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Route not found","data":null}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestWrongMethodUsesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestEngine().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/jobs", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "Method not allowed")
}

func TestJobsRouteServes(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestEngine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Jobs retrieved","data":[]}`, rec.Body.String())
}
