package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithOutput(t *testing.T) {
	t.Cleanup(func() { InitWithOutput("info", "text", &bytes.Buffer{}) })

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		InitWithOutput("debug", "json", &buf)

		assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
		Log.WithField("format", "slc3").Debug("detected")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "detected", entry["msg"])
		assert.Equal(t, "slc3", entry["format"])
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "")
		var buf bytes.Buffer
		InitWithOutput("loud", "text", &buf)

		assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
		Log.Debug("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("level from environment", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "warn")
		InitWithOutput("", "", &bytes.Buffer{})
		assert.Equal(t, logrus.WarnLevel, Log.GetLevel())
	})
}
