package pages

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diya-thabet/hirfa/internal/gateway"
	"github.com/diya-thabet/hirfa/internal/i18n"
	"github.com/diya-thabet/hirfa/internal/localstore"
	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/repository/memory"
	"github.com/diya-thabet/hirfa/internal/session"
)

func newTranslator(t *testing.T, lang string) *i18n.Translator {
	t.Helper()
	catalog, err := i18n.DefaultCatalog()
	require.NoError(t, err)
	tr := i18n.NewTranslator(context.Background(), catalog, localstore.NewMemory(), zerolog.Nop())
	require.NoError(t, tr.SetLanguage(context.Background(), lang))
	return tr
}

func depsFor(t *testing.T, backend gateway.Backend) Deps {
	t.Helper()
	client := gateway.New(backend, nil, zerolog.Nop())
	sess := session.Open(context.Background(), client, localstore.NewMemory(), zerolog.Nop())
	client.SetTokenSource(sess)
	return Deps{API: client, Session: sess, T: newTranslator(t, i18n.English), Log: zerolog.Nop()}
}

func newDeps(t *testing.T) (Deps, *memory.Store) {
	t.Helper()
	st := memory.New()
	gateway.SeedDemo(st)
	return depsFor(t, gateway.NewFixture(zerolog.Nop(), st)), st
}

func render(t *testing.T, v View, tr *i18n.Translator) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, v.Render(&buf, tr))
	return buf.String()
}

type statusBackend struct{ status int }

func (b statusBackend) Do(context.Context, gateway.Request) (gateway.Response, error) {
	return gateway.Response{Status: b.status, Body: []byte(`{"success":false,"message":"boom"}`)}, nil
}

func openJob(t *testing.T, d Deps) models.Job {
	t.Helper()
	v := LoadJobs(context.Background(), d, Filter{})
	require.False(t, v.Err)
	for _, j := range v.Jobs {
		if j.Status == models.JobStatusOpen {
			return j
		}
	}
	t.Fatal("no open job")
	return models.Job{}
}

func TestFilterMatch(t *testing.T) {
	job := models.Job{Title: "Fix a leaking sink", Description: "Kitchen cabinet", Category: "Plumbing"}

	cases := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty", Filter{}, true},
		{"title substring", Filter{Search: "LEAK"}, true},
		{"description substring", Filter{Search: "cabinet"}, true},
		{"no match", Filter{Search: "garden"}, false},
		{"category ignores case", Filter{Category: "plumbing"}, true},
		{"category is exact", Filter{Category: "plumb"}, false},
		{"both must hold", Filter{Search: "sink", Category: "tutoring"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Match(job))
		})
	}
}

func TestLoadJobsFiltersLocally(t *testing.T) {
	d, _ := newDeps(t)

	v := LoadJobs(context.Background(), d, Filter{Category: "TUTORING"})
	require.False(t, v.Err)
	assert.Len(t, v.Jobs, 2)
	visible := v.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "tutoring", visible[0].Category)

	out := render(t, v, d.T)
	assert.Contains(t, out, "Math tutoring")
	assert.NotContains(t, out, "sink")
}

func TestLoadJobsServerErrorSetsFlag(t *testing.T) {
	d := depsFor(t, statusBackend{status: http.StatusInternalServerError})

	var v *JobsView
	require.NotPanics(t, func() { v = LoadJobs(context.Background(), d, Filter{}) })
	assert.True(t, v.Err)
	assert.Empty(t, v.Jobs)
	assert.Contains(t, render(t, v, d.T), "No jobs found")
}

func TestPlaceBidAsProvider(t *testing.T) {
	d, _ := newDeps(t)
	ctx := context.Background()
	auth := Register(ctx, d, "Ahmed", "12345678", "provider")
	require.NoError(t, auth.Err)

	job := openJob(t, d)
	v, err := PlaceBid(ctx, d, job.ID, 45, "  available tomorrow ")
	require.NoError(t, err)
	require.Len(t, v.Bids, 1)
	assert.Equal(t, 45.0, v.Bids[0].Amount)
	assert.Equal(t, "available tomorrow", v.Bids[0].Message)
	assert.True(t, v.CanBid)
}

func TestPlaceBidGuards(t *testing.T) {
	d, st := newDeps(t)
	ctx := context.Background()

	_, err := PlaceBid(ctx, d, 1, 10, "")
	assert.ErrorIs(t, err, ErrSignedOut)

	require.NoError(t, Login(ctx, d, "20000001").Err)
	_, err = PlaceBid(ctx, d, 1, 10, "")
	assert.ErrorIs(t, err, ErrProvidersOnly)

	require.NoError(t, Login(ctx, d, "20000002").Err)
	closed := st.SeedJob(models.Job{Title: "Done", Budget: 10, Status: models.JobStatusCompleted, CustomerID: 1})
	v, err := PlaceBid(ctx, d, closed.ID, 10, "")
	assert.ErrorIs(t, err, ErrJobClosed)
	assert.False(t, v.CanBid)
	assert.Contains(t, render(t, v, d.T), "not open for bids")

	_, err = PlaceBid(ctx, d, closed.ID, 0, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPostJobAndLifecycle(t *testing.T) {
	d, _ := newDeps(t)
	ctx := context.Background()

	_, err := PostJob(ctx, d, JobInput{Title: "Paint", Budget: 80})
	assert.ErrorIs(t, err, ErrSignedOut)

	require.NoError(t, Login(ctx, d, "20000002").Err)
	_, err = PostJob(ctx, d, JobInput{Title: "Paint", Budget: 80})
	assert.ErrorIs(t, err, ErrCustomersOnly)

	require.NoError(t, Login(ctx, d, "20000001").Err)
	_, err = PostJob(ctx, d, JobInput{Title: " ", Budget: 80})
	assert.ErrorIs(t, err, ErrInvalidInput)

	v, err := PostJob(ctx, d, JobInput{Title: "Paint the hallway", Category: " Painting ", Budget: 80, Latitude: 36.8, Longitude: 10.2})
	require.NoError(t, err)
	require.NotNil(t, v.Job)
	assert.Equal(t, "painting", v.Job.Category)
	assert.Equal(t, models.JobStatusOpen, v.Job.Status)

	_, err = ChangeStatus(ctx, d, v.Job.ID, models.JobStatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidInput)

	v, err = ChangeStatus(ctx, d, v.Job.ID, "in_progress")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusInProgress, v.Job.Status)
	assert.Contains(t, render(t, v, d.T), "In Progress")
}

func TestJobDetailMissingJob(t *testing.T) {
	d, _ := newDeps(t)

	v := LoadJobDetail(context.Background(), d, 9999)
	require.Error(t, v.Err)
	assert.Equal(t, http.StatusNotFound, gateway.StatusOf(v.Err))
	assert.Contains(t, render(t, v, d.T), "An error occurred")
}

func TestCommunityFeedAndPost(t *testing.T) {
	d, _ := newDeps(t)
	ctx := context.Background()

	v := LoadCommunity(ctx, d)
	require.NoError(t, v.Err)
	require.Len(t, v.Stories, 1)
	assert.Contains(t, render(t, v, d.T), "Bathroom tiles")

	_, err := PostStory(ctx, d, StoryInput{MediaURL: "memory://x.jpg"})
	assert.ErrorIs(t, err, ErrSignedOut)

	require.NoError(t, Login(ctx, d, "20000003").Err)
	_, err = PostStory(ctx, d, StoryInput{Caption: "no media"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
	v, err = PostStory(ctx, d, StoryInput{Caption: "New door", Filename: "/tmp/door.png", File: bytes.NewReader(png)})
	require.NoError(t, err)
	require.Len(t, v.Stories, 2)
	var found bool
	for _, s := range v.Stories {
		if s.Caption == "New door" {
			found = true
			assert.True(t, strings.HasPrefix(s.MediaURL, "memory://media/"))
		}
	}
	assert.True(t, found)
}

func TestProfileFlows(t *testing.T) {
	d, _ := newDeps(t)
	ctx := context.Background()

	_, err := LoadProfile(d)
	assert.ErrorIs(t, err, ErrSignedOut)

	require.NoError(t, Login(ctx, d, "20000002").Err)
	name := "Hedi M."
	v, err := EditProfile(ctx, d, session.ProfileUpdate{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, v.User.FullName)

	empty := " "
	_, err = EditProfile(ctx, d, session.ProfileUpdate{FullName: &empty})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, ShareLocation(ctx, d, 36.80, 10.18))
	assert.ErrorIs(t, ShareLocation(ctx, d, 91, 0), ErrInvalidInput)

	nearby := LoadNearby(ctx, d, 36.80, 10.18, 0)
	require.NoError(t, nearby.Err)
	require.Len(t, nearby.Nearby, 1)
	out := render(t, nearby, d.T)
	assert.Contains(t, out, "Nearby providers")
	assert.Contains(t, out, "Verified")
}

func TestChatAndReview(t *testing.T) {
	d, st := newDeps(t)
	ctx := context.Background()

	require.NoError(t, Register(ctx, d, "Ahmed", "12345678", models.UserRoleProvider).Err)
	provider, _ := d.Session.User()
	job := openJob(t, d)
	bidView, err := PlaceBid(ctx, d, job.ID, 50, "")
	require.NoError(t, err)

	chat, err := SendChat(ctx, d, job.ID, job.CustomerID, "I can come at 9")
	require.NoError(t, err)
	require.Len(t, chat.Messages, 1)
	assert.Contains(t, render(t, chat, d.T), "> ")

	_, err = SendChat(ctx, d, job.ID, job.CustomerID, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, Login(ctx, d, "20000001").Err)
	accepted, err := AcceptBid(ctx, d, job.ID, bidView.Bids[0].ID)
	require.NoError(t, err)
	require.Len(t, accepted.Bids, 1)
	assert.True(t, accepted.Bids[0].Accepted)

	_, err = SubmitReview(ctx, d, ReviewInput{JobID: job.ID, Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidInput)

	review, err := SubmitReview(ctx, d, ReviewInput{JobID: job.ID, Rating: 5, Comment: "Great"})
	require.NoError(t, err)
	assert.Equal(t, provider.ID, review.Review.ProviderID)
	assert.Nil(t, review.Review.PhotoURL)
	assert.Contains(t, render(t, review, d.T), "*****")

	u, err := st.Users().GetByID(ctx, provider.ID)
	require.NoError(t, err)
	assert.Equal(t, provider.ID, u.ID)
}

func TestLoginPageShowsTranslatedFailure(t *testing.T) {
	d, _ := newDeps(t)

	v := Login(context.Background(), d, "00000000")
	require.Error(t, v.Err)
	assert.Contains(t, render(t, v, d.T), "Invalid phone number")

	v = Register(context.Background(), d, "", "1", models.UserRoleCustomer)
	assert.ErrorIs(t, v.Err, ErrInvalidInput)
}

func TestBoundaryRecoversPanics(t *testing.T) {
	tr := newTranslator(t, i18n.French)
	var buf bytes.Buffer

	err := Boundary(&buf, tr, zerolog.Nop(), "jobs", func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial output")
		panic("nil job")
	})
	require.NoError(t, err)
	assert.Equal(t, "! Une erreur est survenue\n", buf.String())
}

func TestBoundaryPassesThrough(t *testing.T) {
	tr := newTranslator(t, i18n.English)
	var buf bytes.Buffer

	require.NoError(t, Boundary(&buf, tr, zerolog.Nop(), "home", func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	}))
	assert.Equal(t, "hello", buf.String())

	boom := errors.New("boom")
	buf.Reset()
	err := Boundary(&buf, tr, zerolog.Nop(), "home", func(w io.Writer) error {
		_, _ = io.WriteString(w, "half")
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, buf.String())
}

func TestDashboardForCustomer(t *testing.T) {
	d, _ := newDeps(t)
	ctx := context.Background()

	_, err := LoadDashboard(ctx, d)
	assert.ErrorIs(t, err, ErrSignedOut)

	require.NoError(t, Login(ctx, d, "20000001").Err)
	var last int64
	for _, title := range []string{"Paint the hallway", "Fix the fence", "Move a sofa"} {
		v, err := PostJob(ctx, d, JobInput{Title: title, Budget: 50})
		require.NoError(t, err)
		last = v.Job.ID
	}
	_, err = ChangeStatus(ctx, d, last, models.JobStatusInProgress)
	require.NoError(t, err)
	_, err = ChangeStatus(ctx, d, last, models.JobStatusCompleted)
	require.NoError(t, err)

	v, err := LoadDashboard(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 4, v.Active)
	assert.Equal(t, 1, v.Completed)
	require.Len(t, v.Recent, 3)
	assert.Equal(t, last, v.Recent[0].ID)

	out := render(t, v, d.T)
	assert.Contains(t, out, "Welcome, Sami\n")
	assert.Contains(t, out, "Active Jobs: 4")
	assert.Contains(t, out, "Completed Jobs: 1")
	assert.Contains(t, out, "Your Recent Requests")
	assert.Contains(t, out, "Completed")
	assert.NotContains(t, out, "leaking kitchen sink")
}

func TestDashboardForProvider(t *testing.T) {
	d, _ := newDeps(t)
	ctx := context.Background()
	require.NoError(t, Login(ctx, d, "20000002").Err)

	v, err := LoadDashboard(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Available)
	assert.Len(t, v.Recent, 2)

	out := render(t, v, d.T)
	assert.Contains(t, out, "Welcome, Hedi")
	assert.Contains(t, out, "Available Jobs: 2")
	assert.Contains(t, out, "Fairness Score: 92")
	assert.Contains(t, out, "Badges: first_review, trusted")
	assert.Contains(t, out, "Math tutoring")
	assert.NotContains(t, out, "Active Jobs")
}

func TestDashboardKeepsProfileWhenJobsFail(t *testing.T) {
	ctx := context.Background()
	storage := localstore.NewMemory()
	require.NoError(t, storage.Set(ctx, session.TokenKey, "saved-token"))
	require.NoError(t, storage.Set(ctx, session.UserKey, `{"id":1,"fullName":"Sami Trabelsi","role":"CUSTOMER","fairnessScore":77}`))

	client := gateway.New(statusBackend{status: http.StatusInternalServerError}, nil, zerolog.Nop())
	sess := session.Open(ctx, client, storage, zerolog.Nop())
	client.SetTokenSource(sess)
	d := Deps{API: client, Session: sess, T: newTranslator(t, i18n.English), Log: zerolog.Nop()}

	v, err := LoadDashboard(ctx, d)
	require.NoError(t, err)
	assert.True(t, v.Err)
	out := render(t, v, d.T)
	assert.Contains(t, out, "Fairness Score: 77")
	assert.Contains(t, out, "! An error occurred")
}
