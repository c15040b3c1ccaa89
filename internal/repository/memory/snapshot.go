package memory

import (
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/diya-thabet/hirfa/internal/models"
)

// mediaRecord keeps the storage fields that models.Media hides from clients.
type mediaRecord struct {
	models.Media
	Bucket    string `json:"bucket"`
	ObjectKey string `json:"objectKey"`
	Signature []byte `json:"signature"`
}

type snapshot struct {
	Seq       int64                     `json:"seq"`
	Users     []models.User             `json:"users"`
	Jobs      []models.Job              `json:"jobs"`
	Bids      []models.Bid              `json:"bids"`
	Stories   []models.Story            `json:"stories"`
	Chat      []models.ChatMessage      `json:"chat"`
	Reviews   []models.Review           `json:"reviews"`
	Media     []mediaRecord             `json:"media"`
	Locations []models.ProviderLocation `json:"locations"`
}

// MarshalJSON writes the whole store, including provider positions. Uploaded
// blobs are not part of it.
func (s *Store) MarshalJSON() ([]byte, error) {
	s.mu.Lock()
	snap := snapshot{
		Seq:     s.seq,
		Users:   sortedByID(s.users, func(u models.User) int64 { return u.ID }),
		Jobs:    sortedByID(s.jobs, func(j models.Job) int64 { return j.ID }),
		Bids:    slices.Clone(s.bids),
		Stories: slices.Clone(s.stories),
		Chat:    slices.Clone(s.chat),
		Reviews: slices.Clone(s.reviews),
	}
	for _, m := range s.media {
		snap.Media = append(snap.Media, mediaRecord{Media: m, Bucket: m.Bucket, ObjectKey: m.ObjectKey, Signature: m.Signature})
	}
	s.mu.Unlock()

	slices.SortFunc(snap.Media, func(a, b mediaRecord) int { return strings.Compare(a.ID, b.ID) })
	snap.Locations = s.geo.positionsList()
	return json.Marshal(snap)
}

// UnmarshalJSON replaces the store's contents with a saved snapshot.
func (s *Store) UnmarshalJSON(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode memory snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = snap.Seq
	s.users = make(map[int64]models.User, len(snap.Users))
	for _, u := range snap.Users {
		if u.Badges == nil {
			u.Badges = []string{}
		}
		s.users[u.ID] = u
		s.seq = max(s.seq, u.ID)
	}
	s.jobs = make(map[int64]models.Job, len(snap.Jobs))
	for _, j := range snap.Jobs {
		s.jobs[j.ID] = j
		s.seq = max(s.seq, j.ID)
	}
	s.bids = snap.Bids
	s.stories = snap.Stories
	s.chat = snap.Chat
	s.reviews = snap.Reviews
	s.media = make(map[string]models.Media, len(snap.Media))
	for _, r := range snap.Media {
		m := r.Media
		m.Bucket, m.ObjectKey, m.Signature = r.Bucket, r.ObjectKey, r.Signature
		s.media[m.ID] = m
	}
	if s.geo == nil {
		s.geo = &GeoIndex{}
	}
	s.geo.restore(snap.Locations)
	return nil
}

func sortedByID[T any](m map[int64]T, id func(T) int64) []T {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
	return out
}
