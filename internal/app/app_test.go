package app

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diya-thabet/hirfa/internal/config"
	"github.com/diya-thabet/hirfa/internal/i18n"
	"github.com/diya-thabet/hirfa/internal/localstore"
	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/pages"
)

func fixtureConfig(statePath string) config.ClientConfig {
	return config.ClientConfig{
		Environment: "test",
		Backend:     config.BackendFixture,
		StatePath:   statePath,
		LogLevel:    "disabled",
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := fixtureConfig("")
	cfg.Backend = "carrier-pigeon"

	_, err := New(context.Background(), cfg, WithStorage(localstore.NewMemory()))
	assert.Error(t, err)
}

func TestFixtureAppServesPages(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, fixtureConfig(""), WithStorage(localstore.NewMemory()), WithLogOutput(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, err = a.Deps.Session.Login(ctx, "20000001")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, a.Router.Navigate(ctx, &buf, "/jobs"))
	assert.Contains(t, buf.String(), "[rtl]")
	assert.Contains(t, buf.String(), "#")
}

func TestStatePersistsAcrossRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	first, err := New(ctx, fixtureConfig(path), WithLogOutput(io.Discard))
	require.NoError(t, err)
	require.NoError(t, first.Deps.T.SetLanguage(ctx, "fr"))
	_, err = first.Deps.Session.Login(ctx, "20000002")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(ctx, fixtureConfig(path), WithLogOutput(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	assert.Equal(t, i18n.French, second.Deps.T.Language())
	assert.True(t, second.Deps.Session.IsAuthenticated())
	assert.True(t, second.Deps.Session.IsProvider())
}

func TestFixtureDataPersistsAcrossRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	first, err := New(ctx, fixtureConfig(path), WithLogOutput(io.Discard))
	require.NoError(t, err)
	_, err = first.Deps.Session.Register(ctx, "Amel Jaziri", "55500011", models.UserRoleCustomer)
	require.NoError(t, err)
	posted, err := pages.PostJob(ctx, first.Deps, pages.JobInput{Title: "Garden cleanup", Budget: 40})
	require.NoError(t, err)
	require.NotNil(t, posted.Job)
	require.NoError(t, first.Close())

	second, err := New(ctx, fixtureConfig(path), WithLogOutput(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	user, err := second.Deps.Session.Confirm(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Amel Jaziri", user.FullName)
	assert.True(t, second.Deps.Session.IsAuthenticated())

	jobs := pages.LoadJobs(ctx, second.Deps, pages.Filter{Search: "garden"})
	require.False(t, jobs.Err)
	require.Len(t, jobs.Visible(), 1)
	assert.Equal(t, posted.Job.ID, jobs.Visible()[0].ID)

	again, err := pages.PostJob(ctx, second.Deps, pages.JobInput{Title: "Fence repair", Budget: 70})
	require.NoError(t, err)
	assert.Greater(t, again.Job.ID, posted.Job.ID)
}

func TestCorruptFixtureDataIsReseeded(t *testing.T) {
	ctx := context.Background()
	storage := localstore.NewMemory()
	require.NoError(t, storage.Set(ctx, FixtureStateKey, "{not json"))

	a, err := New(ctx, fixtureConfig(""), WithStorage(storage), WithLogOutput(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, err = a.Deps.Session.Login(ctx, "20000001")
	require.NoError(t, err)
}
