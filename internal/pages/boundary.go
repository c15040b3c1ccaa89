package pages

import (
	"bytes"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/diya-thabet/hirfa/internal/i18n"
)

// Boundary renders view into w. A panic while rendering is recovered and
// logged, and the partial output is replaced by a fallback message. The
// returned error is the view's own render error, never the panic.
func Boundary(w io.Writer, t *i18n.Translator, log zerolog.Logger, name string, view func(io.Writer) error) (err error) {
	var buf bytes.Buffer
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("page", name).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("page crashed")
			fmt.Fprintf(w, "! %s\n", t.T("common.error"))
			err = nil
		}
	}()

	if err := view(&buf); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}
