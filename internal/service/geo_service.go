package service

import (
	"context"
	"fmt"

	"github.com/diya-thabet/hirfa/internal/models"
)

type GeoService struct {
	index         LocationIndex
	users         UserStore
	defaultRadius float64
}

func NewGeoService(index LocationIndex, users UserStore, defaultRadius float64) *GeoService {
	return &GeoService{index: index, users: users, defaultRadius: defaultRadius}
}

func (s *GeoService) UpdateLocation(ctx context.Context, user models.User, lat, lon float64) error {
	if err := checkCoordinates(lat, lon); err != nil {
		return err
	}
	if err := s.index.Update(ctx, user.ID, lat, lon); err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	return nil
}

// NearbyProviders lists providers within radius meters, closest first.
// A non-positive radius falls back to the configured default.
func (s *GeoService) NearbyProviders(ctx context.Context, lat, lon, radius float64) ([]models.ProviderLocation, error) {
	if err := checkCoordinates(lat, lon); err != nil {
		return nil, err
	}
	if radius <= 0 {
		radius = s.defaultRadius
	}

	hits, err := s.index.Nearby(ctx, lat, lon, radius)
	if err != nil {
		return nil, fmt.Errorf("nearby search: %w", err)
	}

	ids := make([]int64, 0, len(hits))
	for _, hit := range hits {
		ids = append(ids, hit.UserID)
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load providers: %w", err)
	}

	providers := make([]models.ProviderLocation, 0, len(hits))
	for _, hit := range hits {
		user, ok := users[hit.UserID]
		if !ok || user.Role != models.UserRoleProvider {
			continue
		}
		public := user.Public()
		hit.Provider = &public
		providers = append(providers, hit)
	}
	return providers, nil
}

func checkCoordinates(lat, lon float64) error {
	var v validator
	v.check(lat >= -90 && lat <= 90, "lat", "must be between -90 and 90")
	v.check(lon >= -180 && lon <= 180, "lon", "must be between -180 and 180")
	return v.err()
}
