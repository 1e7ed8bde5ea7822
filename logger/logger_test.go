package logger

import (
	"bytes"
	"testing"

	"hangeul/config"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterWritesJSON(t *testing.T) {
	conf := &config.Config{}
	conf.Logger.Level = "warn"

	var buf bytes.Buffer
	log := NewWithWriter(conf, &buf)

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Warn().Uint("user_id", 7).Msg("visible")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, "hangeul", entry["app"])
	assert.Equal(t, float64(7), entry["user_id"])
}

func TestNewWithWriterFallsBackToInfo(t *testing.T) {
	conf := &config.Config{}
	conf.Logger.Level = "loud"

	var buf bytes.Buffer
	log := NewWithWriter(conf, &buf)
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.NotContains(t, buf.String(), "hidden")
}
