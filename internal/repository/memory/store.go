// Package memory holds in-process implementations of the marketplace stores.
// They back the client's offline fixture backend and the handler tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/repository"
)

// Store is the shared state. The typed views below lock it for every call.
type Store struct {
	mu      sync.Mutex
	now     func() time.Time
	seq     int64
	users   map[int64]models.User
	jobs    map[int64]models.Job
	bids    []models.Bid
	stories []models.Story
	chat    []models.ChatMessage
	reviews []models.Review
	media   map[string]models.Media
	geo     *GeoIndex
}

func New() *Store {
	return &Store{
		now:   time.Now,
		users: map[int64]models.User{},
		jobs:  map[int64]models.Job{},
		media: map[string]models.Media{},
		geo:   &GeoIndex{},
	}
}

// SetClock replaces the time source used for created_at stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) Users() *Users     { return &Users{s} }
func (s *Store) Jobs() *Jobs       { return &Jobs{s} }
func (s *Store) Bids() *Bids       { return &Bids{s} }
func (s *Store) Stories() *Stories { return &Stories{s} }
func (s *Store) Chat() *Chat       { return &Chat{s} }
func (s *Store) Reviews() *Reviews { return &Reviews{s} }
func (s *Store) Media() *Media     { return &Media{s} }
func (s *Store) Geo() *GeoIndex    { return s.geo }

// SeedUser inserts u as-is, keeping its id and timestamps.
func (s *Store) SeedUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.nextID()
	}
	s.seq = max(s.seq, u.ID)
	if u.Badges == nil {
		u.Badges = []string{}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.ID] = u
	return u
}

// SeedJob inserts j as-is, keeping its id and timestamps.
func (s *Store) SeedJob(j models.Job) models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j.ID == 0 {
		j.ID = s.nextID()
	}
	s.seq = max(s.seq, j.ID)
	if j.Status == "" {
		j.Status = models.JobStatusOpen
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = s.now()
		j.UpdatedAt = j.CreatedAt
	}
	s.jobs[j.ID] = j
	return j
}

// SeedStory inserts st as-is, keeping its timestamps.
func (s *Store) SeedStory(st models.Story) models.Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == 0 {
		st.ID = s.nextID()
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = s.now()
	}
	s.stories = append(s.stories, st)
	return st
}

func (s *Store) publicUser(id int64) *models.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	p := u.Public()
	return &p
}

type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.PhoneNumber == user.PhoneNumber {
			return repository.ErrAlreadyExists
		}
	}
	if user.Badges == nil {
		user.Badges = []string{}
	}
	user.ID = r.s.nextID()
	user.CreatedAt = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

func (r *Users) FindByPhone(_ context.Context, phone string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.PhoneNumber == phone {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (r *Users) GetByID(_ context.Context, id int64) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *Users) ListByIDs(_ context.Context, ids []int64) (map[int64]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[int64]models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r *Users) UpdateFairness(_ context.Context, id int64, score int, badges []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FairnessScore = models.ClampFairness(score)
	u.Badges = slices.Clone(badges)
	r.s.users[id] = u
	return nil
}

func (r *Users) SetVerified(_ context.Context, id int64, verified bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Verified = verified
	r.s.users[id] = u
	return nil
}

type Jobs struct{ s *Store }

func (r *Jobs) Create(_ context.Context, job *models.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	job.ID = r.s.nextID()
	job.CreatedAt = r.s.now()
	job.UpdatedAt = job.CreatedAt
	stored := *job
	stored.Customer = nil
	r.s.jobs[job.ID] = stored
	return nil
}

func (r *Jobs) GetByID(_ context.Context, id int64) (models.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return models.Job{}, repository.ErrNotFound
	}
	j.Customer = r.s.publicUser(j.CustomerID)
	return j, nil
}

func (r *Jobs) List(context.Context) ([]models.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Job, 0, len(r.s.jobs))
	for _, j := range r.s.jobs {
		j.Customer = r.s.publicUser(j.CustomerID)
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].CreatedAt.After(out[k].CreatedAt)
		}
		return out[i].ID > out[k].ID
	})
	return out, nil
}

func (r *Jobs) UpdateStatus(_ context.Context, id int64, from, to models.JobStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.moveJob(id, from, to)
}

func (s *Store) moveJob(id int64, from, to models.JobStatus) error {
	j, ok := s.jobs[id]
	if !ok || j.Status != from {
		return repository.ErrConflict
	}
	j.Status = to
	j.UpdatedAt = s.now()
	s.jobs[id] = j
	return nil
}

type Bids struct{ s *Store }

func (r *Bids) Create(_ context.Context, bid *models.Bid) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	bid.ID = r.s.nextID()
	bid.Accepted = false
	bid.CreatedAt = r.s.now()
	stored := *bid
	stored.Provider = nil
	r.s.bids = append(r.s.bids, stored)
	return nil
}

func (r *Bids) GetByID(_ context.Context, id int64) (models.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bids {
		if b.ID == id {
			b.Provider = r.s.publicUser(b.ProviderID)
			return b, nil
		}
	}
	return models.Bid{}, repository.ErrNotFound
}

func (r *Bids) ListByJob(_ context.Context, jobID int64) ([]models.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Bid{}
	for _, b := range r.s.bids {
		if b.JobID == jobID {
			b.Provider = r.s.publicUser(b.ProviderID)
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *Bids) Accept(_ context.Context, jobID, bidID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	idx := -1
	for i, b := range r.s.bids {
		if b.JobID != jobID {
			continue
		}
		if b.Accepted {
			return repository.ErrConflict
		}
		if b.ID == bidID {
			idx = i
		}
	}
	if idx < 0 {
		return repository.ErrNotFound
	}
	if err := r.s.moveJob(jobID, models.JobStatusOpen, models.JobStatusInProgress); err != nil {
		return err
	}
	r.s.bids[idx].Accepted = true
	return nil
}

func (r *Bids) AcceptedForJob(_ context.Context, jobID int64) (models.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bids {
		if b.JobID == jobID && b.Accepted {
			b.Provider = r.s.publicUser(b.ProviderID)
			return b, nil
		}
	}
	return models.Bid{}, repository.ErrNotFound
}

type Stories struct{ s *Store }

func (r *Stories) Create(_ context.Context, story *models.Story) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	story.ID = r.s.nextID()
	story.CreatedAt = r.s.now()
	stored := *story
	stored.User = nil
	r.s.stories = append(r.s.stories, stored)
	return nil
}

func (r *Stories) ListSince(_ context.Context, since time.Time) ([]models.Story, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Story{}
	for _, st := range r.s.stories {
		if st.CreatedAt.After(since) {
			st.User = r.s.publicUser(st.AuthorID)
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out, nil
}

func (r *Stories) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.stories[:0]
	var n int64
	for _, st := range r.s.stories {
		if st.CreatedAt.After(cutoff) {
			kept = append(kept, st)
			continue
		}
		n++
	}
	r.s.stories = kept
	return n, nil
}

type Chat struct{ s *Store }

func (r *Chat) Create(_ context.Context, msg *models.ChatMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msg.ID = r.s.nextID()
	msg.CreatedAt = r.s.now()
	r.s.chat = append(r.s.chat, *msg)
	return nil
}

func (r *Chat) ListByJob(_ context.Context, jobID int64) ([]models.ChatMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.ChatMessage{}
	for _, m := range r.s.chat {
		if m.JobID == jobID {
			out = append(out, m)
		}
	}
	return out, nil
}

type Reviews struct{ s *Store }

func (r *Reviews) Create(_ context.Context, review *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.reviews {
		if existing.JobID == review.JobID {
			return repository.ErrAlreadyExists
		}
	}
	review.ID = r.s.nextID()
	review.CreatedAt = r.s.now()
	r.s.reviews = append(r.s.reviews, *review)
	return nil
}

func (r *Reviews) StatsForProvider(_ context.Context, providerID int64) (repository.ReviewStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var stats repository.ReviewStats
	total := 0
	for _, rv := range r.s.reviews {
		if rv.ProviderID == providerID {
			stats.Count++
			total += rv.Rating
		}
	}
	if stats.Count > 0 {
		stats.Average = float64(total) / float64(stats.Count)
	}
	return stats, nil
}

type Media struct{ s *Store }

func (r *Media) Create(_ context.Context, media *models.Media) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	media.CreatedAt = r.s.now()
	r.s.media[media.ID] = *media
	return nil
}

func (r *Media) UpdateStatus(_ context.Context, id string, status models.MediaStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.media[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.Status = status
	r.s.media[id] = m
	return nil
}

func (r *Media) GetByID(_ context.Context, id string) (models.Media, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.media[id]
	if !ok {
		return models.Media{}, repository.ErrNotFound
	}
	return m, nil
}
