package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := New("test", WithWriter(&buf))

	logger.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "test")
}

func TestWithLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New("development", WithWriter(&buf), WithLevel("warn"))

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestProductionDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New("production", WithWriter(&buf))

	logger.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
}
