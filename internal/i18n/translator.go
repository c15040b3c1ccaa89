// Package i18n holds the translation catalog and the current-language state.
package i18n

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/diya-thabet/hirfa/internal/localstore"
)

// StorageKey is where the chosen language code is persisted.
const StorageKey = "hirfa-language"

const (
	Arabic  = "ar"
	French  = "fr"
	English = "en"

	DefaultLanguage = Arabic
)

type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

var supported = map[string]struct{}{Arabic: {}, French: {}, English: {}}

// Normalize maps a language tag to one of the supported codes.
func Normalize(code string) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	base, _ := tag.Base()
	if _, ok := supported[base.String()]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	return base.String(), nil
}

// Translator resolves dotted keys for the current language. Build one at the
// application root and pass it down.
type Translator struct {
	mu      sync.RWMutex
	catalog Catalog
	store   localstore.Store
	lang    string
	log     zerolog.Logger
}

// NewTranslator restores the persisted language, falling back to Arabic when
// nothing usable is stored.
func NewTranslator(ctx context.Context, catalog Catalog, store localstore.Store, log zerolog.Logger) *Translator {
	t := &Translator{catalog: catalog, store: store, lang: DefaultLanguage, log: log}

	saved, ok, err := store.Get(ctx, StorageKey)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("read saved language failed")
	case ok:
		code, err := Normalize(saved)
		if err != nil {
			log.Warn().Str("saved", saved).Msg("discarding unknown saved language")
			_ = store.Delete(ctx, StorageKey)
			break
		}
		t.lang = code
	}
	return t
}

// Translate walks the catalog one segment at a time. A missing segment or a
// leaf without the current language yields the key itself.
func (t *Translator) Translate(key string) string {
	t.mu.RLock()
	lang := t.lang
	t.mu.RUnlock()

	var node any = map[string]any(t.catalog)
	for _, segment := range strings.Split(key, ".") {
		m, ok := asMap(node)
		if !ok {
			t.log.Warn().Str("key", key).Msg("translation missing")
			return key
		}
		next, ok := m[segment]
		if !ok || next == nil {
			t.log.Warn().Str("key", key).Msg("translation missing")
			return key
		}
		node = next
	}

	if record, ok := asMap(node); ok {
		if s, ok := record[lang].(string); ok {
			return s
		}
	}
	return key
}

// T is shorthand for Translate.
func (t *Translator) T(key string) string { return t.Translate(key) }

// SetLanguage switches and persists the language. Unknown codes leave the
// state untouched.
func (t *Translator) SetLanguage(ctx context.Context, code string) error {
	normalized, err := Normalize(code)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.lang = normalized
	t.mu.Unlock()

	if err := t.store.Set(ctx, StorageKey, normalized); err != nil {
		return fmt.Errorf("persist language: %w", err)
	}
	return nil
}

func (t *Translator) Language() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang
}

func (t *Translator) Direction() Direction {
	if t.Language() == Arabic {
		return RTL
	}
	return LTR
}

func (t *Translator) IsRTL() bool { return t.Direction() == RTL }
