// Package pages holds the client's page flows. Each page loads what it needs
// through the gateway, keeps a page-local error flag and renders to a writer.
package pages

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/diya-thabet/hirfa/internal/gateway"
	"github.com/diya-thabet/hirfa/internal/i18n"
	"github.com/diya-thabet/hirfa/internal/session"
)

var (
	ErrSignedOut     = errors.New("sign in first")
	ErrProvidersOnly = errors.New("only providers can do this")
	ErrCustomersOnly = errors.New("only customers can do this")
	ErrJobClosed     = errors.New("job is not open for bids")
	ErrInvalidInput  = errors.New("invalid input")
)

// Deps are the context objects built once at the application root and
// passed to every page.
type Deps struct {
	API     *gateway.Client
	Session *session.Store
	T       *i18n.Translator
	Log     zerolog.Logger
}

// View is a loaded page ready to be written out.
type View interface {
	Render(w io.Writer, t *i18n.Translator) error
}

// decodeList reads a list payload in either the enveloped or the bare shape.
// Elements that do not decode are skipped.
func decodeList[T any](body gateway.Body, log zerolog.Logger) []T {
	items := body.Items()
	out := make([]T, 0, len(items))
	for _, raw := range items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			log.Debug().Err(err).Msg("skipping malformed list item")
			continue
		}
		out = append(out, v)
	}
	return out
}

// money formats an amount with the grouping rules of the current language.
func money(t *i18n.Translator, amount float64) string {
	p := message.NewPrinter(language.Make(t.Language()))
	return p.Sprintf("%.2f %s", amount, t.T("common.tnd"))
}

// errorLine renders the page-local failure message, preferring the server's
// own message.
func errorLine(w io.Writer, t *i18n.Translator, err error) {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		fmt.Fprintf(w, "! %s: %s\n", t.T("common.error"), apiErr.Message)
		return
	}
	fmt.Fprintf(w, "! %s\n", t.T("common.error"))
}
