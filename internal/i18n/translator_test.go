package i18n

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diya-thabet/hirfa/internal/localstore"
)

const testCatalog = `
nav:
  home: {ar: "الرئيسية", fr: "Accueil", en: "Home"}
  partial: {fr: "Seulement"}
plain: "not a record"
`

func newTestTranslator(t *testing.T, store localstore.Store, log zerolog.Logger) *Translator {
	t.Helper()
	catalog, err := LoadCatalog([]byte(testCatalog))
	require.NoError(t, err)
	return NewTranslator(context.Background(), catalog, store, log)
}

func TestTranslate(t *testing.T) {
	tr := newTestTranslator(t, localstore.NewMemory(), zerolog.Nop())

	assert.Equal(t, "الرئيسية", tr.Translate("nav.home"))
	require.NoError(t, tr.SetLanguage(context.Background(), "en"))
	assert.Equal(t, "Home", tr.T("nav.home"))

	// no secondary fallback language
	assert.Equal(t, "nav.partial", tr.Translate("nav.partial"))
	assert.Equal(t, "plain", tr.Translate("plain"))
	assert.Equal(t, "nav", tr.Translate("nav"))
}

func TestTranslateMissingKeyWarns(t *testing.T) {
	var buf bytes.Buffer
	tr := newTestTranslator(t, localstore.NewMemory(), zerolog.New(&buf))

	assert.Equal(t, "nav.missing", tr.Translate("nav.missing"))
	assert.Equal(t, "nav.home.deeper", tr.Translate("nav.home.deeper"))
	assert.Equal(t, ".", tr.Translate("."))
	assert.Contains(t, buf.String(), "translation missing")
	assert.Contains(t, buf.String(), `"key":"nav.missing"`)
}

func TestSetLanguageDirection(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemory()
	tr := newTestTranslator(t, store, zerolog.Nop())

	assert.Equal(t, Arabic, tr.Language())
	assert.True(t, tr.IsRTL())

	require.NoError(t, tr.SetLanguage(ctx, "ar"))
	assert.Equal(t, RTL, tr.Direction())

	require.NoError(t, tr.SetLanguage(ctx, "en"))
	assert.Equal(t, LTR, tr.Direction())
	assert.False(t, tr.IsRTL())

	require.NoError(t, tr.SetLanguage(ctx, "fr-FR"))
	assert.Equal(t, French, tr.Language())
	saved, ok, _ := store.Get(ctx, StorageKey)
	assert.True(t, ok)
	assert.Equal(t, "fr", saved)
}

func TestSetLanguageRejectsUnknown(t *testing.T) {
	tr := newTestTranslator(t, localstore.NewMemory(), zerolog.Nop())

	err := tr.SetLanguage(context.Background(), "de")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.ErrorIs(t, tr.SetLanguage(context.Background(), "not a tag!"), ErrUnsupportedLanguage)
	assert.Equal(t, Arabic, tr.Language())
}

func TestRehydrate(t *testing.T) {
	ctx := context.Background()

	store := localstore.NewMemory()
	require.NoError(t, store.Set(ctx, StorageKey, "en"))
	assert.Equal(t, English, newTestTranslator(t, store, zerolog.Nop()).Language())

	corrupt := localstore.NewMemory()
	require.NoError(t, corrupt.Set(ctx, StorageKey, "klingon!!"))
	assert.Equal(t, Arabic, newTestTranslator(t, corrupt, zerolog.Nop()).Language())
	_, ok, _ := corrupt.Get(ctx, StorageKey)
	assert.False(t, ok)
}

func TestDefaultCatalogCoversLanguages(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	tr := NewTranslator(context.Background(), catalog, localstore.NewMemory(), zerolog.Nop())

	for _, code := range []string{Arabic, French, English} {
		require.NoError(t, tr.SetLanguage(context.Background(), code))
		for _, key := range []string{"nav.jobs", "jobs.placeBid", "common.error", "jobs.status.OPEN"} {
			assert.NotEqual(t, key, tr.Translate(key), "%s in %s", key, code)
		}
	}
}

func TestLoadCatalogFlattensNestedNodes(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	_, isPlain := catalog["nav"].(map[string]any)
	assert.True(t, isPlain)
	_, isPlain = catalog["jobs"].(map[string]any)["status"].(map[string]any)
	assert.True(t, isPlain)

	tr := NewTranslator(context.Background(), catalog, localstore.NewMemory(), zerolog.Nop())
	require.NoError(t, tr.SetLanguage(context.Background(), "en"))
	assert.Equal(t, "Home", tr.Translate("nav.home"))
	assert.Equal(t, "Open", tr.Translate("jobs.status.OPEN"))
	assert.Equal(t, "Customer", tr.Translate("auth.customer.title"))
}
