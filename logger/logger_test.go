package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	require.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	t.Setenv(logLevelEnv, LOG_LEVEL_WARN)

	hmmLogger := NewLogger("Test")
	hmmLogger.Info().Msg("dropped")
	hmmLogger.Warn().Int("sentences", 2).Msg("kept")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "Test", entry["component"])
	require.Equal(t, "kept", entry["message"])
	require.Equal(t, float64(2), entry["sentences"])
}
