package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type options struct {
	out   io.Writer
	level string
}

type Option func(*options)

// WithWriter sends output somewhere other than stdout.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithLevel overrides the environment's default level.
func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

func New(environment string, opts ...Option) zerolog.Logger {
	o := options{out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	output := zerolog.ConsoleWriter{
		Out:        o.out,
		TimeFormat: time.RFC3339,
		NoColor:    environment == "production",
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("env", environment).
		Logger()

	level := zerolog.DebugLevel
	if environment == "production" {
		level = zerolog.InfoLevel
	}
	if o.level != "" {
		if parsed, err := zerolog.ParseLevel(o.level); err == nil {
			level = parsed
		}
	}

	return logger.Level(level)
}
