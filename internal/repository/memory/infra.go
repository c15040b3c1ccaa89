package memory

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/repository"
)

type Event struct {
	Type   string
	Fields map[string]any
}

// Events records published events and chat broadcasts.
type Events struct {
	mu     sync.Mutex
	events []Event
	chats  []models.ChatMessage
}

func (e *Events) Publish(_ context.Context, eventType string, fields map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, Event{Type: eventType, Fields: fields})
	return nil
}

func (e *Events) BroadcastChat(_ context.Context, msg models.ChatMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chats = append(e.chats, msg)
	return nil
}

func (e *Events) Published() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Event(nil), e.events...)
}

func (e *Events) Broadcasts() []models.ChatMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.ChatMessage(nil), e.chats...)
}

// Objects is a blob store keyed by object key.
type Objects struct {
	mu      sync.Mutex
	BaseURL string
	objects map[string][]byte
}

func (o *Objects) Bucket() string { return "memory" }

func (o *Objects) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.objects == nil {
		o.objects = map[string][]byte{}
	}
	o.objects[key] = data
	return int64(len(data)), nil
}

func (o *Objects) Stat(_ context.Context, key string) (int64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	data, ok := o.objects[key]
	if !ok {
		return 0, fmt.Errorf("object %s: %w", key, repository.ErrNotFound)
	}
	return int64(len(data)), nil
}

func (o *Objects) PublicURL(key string) string {
	base := o.BaseURL
	if base == "" {
		base = "memory://media"
	}
	return base + "/" + key
}

const earthRadiusMeters = 6371008.8

// GeoIndex answers radius queries by scanning every position.
type GeoIndex struct {
	mu        sync.Mutex
	positions map[int64]models.ProviderLocation
}

func (g *GeoIndex) Update(_ context.Context, userID int64, lat, lon float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.positions == nil {
		g.positions = map[int64]models.ProviderLocation{}
	}
	g.positions[userID] = models.ProviderLocation{UserID: userID, Latitude: lat, Longitude: lon, UpdatedAt: time.Now().UTC()}
	return nil
}

func (g *GeoIndex) Nearby(_ context.Context, lat, lon, radiusMeters float64) ([]models.ProviderLocation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := []models.ProviderLocation{}
	for _, p := range g.positions {
		d := Haversine(lat, lon, p.Latitude, p.Longitude)
		if d <= radiusMeters {
			p.DistanceMeters = d
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].DistanceMeters < out[k].DistanceMeters })
	return out, nil
}

func (g *GeoIndex) positionsList() []models.ProviderLocation {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.ProviderLocation, 0, len(g.positions))
	for _, p := range g.positions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].UserID < out[k].UserID })
	return out
}

func (g *GeoIndex) restore(locations []models.ProviderLocation) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.positions = make(map[int64]models.ProviderLocation, len(locations))
	for _, p := range locations {
		g.positions[p.UserID] = p
	}
}

// Haversine returns the great-circle distance in meters.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}
