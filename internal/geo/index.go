// Package geo keeps user positions in a Redis geo set.
package geo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/diya-thabet/hirfa/internal/models"
)

const (
	positionsKey = "geo:positions"
	updatedKey   = "geo:updated"
)

type RedisIndex struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisIndex(client *redis.Client) *RedisIndex {
	return &RedisIndex{client: client, now: time.Now}
}

func (i *RedisIndex) Update(ctx context.Context, userID int64, lat, lon float64) error {
	member := strconv.FormatInt(userID, 10)

	_, err := i.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.GeoAdd(ctx, positionsKey, &redis.GeoLocation{Name: member, Latitude: lat, Longitude: lon})
		pipe.HSet(ctx, updatedKey, member, i.now().Unix())
		return nil
	})
	if err != nil {
		return fmt.Errorf("geoadd: %w", err)
	}
	return nil
}

// Nearby returns positions within radiusMeters, closest first.
func (i *RedisIndex) Nearby(ctx context.Context, lat, lon, radiusMeters float64) ([]models.ProviderLocation, error) {
	hits, err := i.client.GeoSearchLocation(ctx, positionsKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Latitude:   lat,
			Longitude:  lon,
			Radius:     radiusMeters,
			RadiusUnit: "m",
			Sort:       "ASC",
		},
		WithCoord: true,
		WithDist:  true,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("geosearch: %w", err)
	}
	if len(hits) == 0 {
		return []models.ProviderLocation{}, nil
	}

	members := make([]string, len(hits))
	for n, hit := range hits {
		members[n] = hit.Name
	}
	stamps, err := i.client.HMGet(ctx, updatedKey, members...).Result()
	if err != nil {
		return nil, fmt.Errorf("hmget: %w", err)
	}

	locations := make([]models.ProviderLocation, 0, len(hits))
	for n, hit := range hits {
		userID, err := strconv.ParseInt(hit.Name, 10, 64)
		if err != nil {
			continue
		}
		loc := models.ProviderLocation{
			UserID:         userID,
			Latitude:       hit.Latitude,
			Longitude:      hit.Longitude,
			DistanceMeters: hit.Dist,
		}
		if raw, ok := stamps[n].(string); ok {
			if sec, err := strconv.ParseInt(raw, 10, 64); err == nil {
				loc.UpdatedAt = time.Unix(sec, 0).UTC()
			}
		}
		locations = append(locations, loc)
	}
	return locations, nil
}
