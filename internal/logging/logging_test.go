package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-blog-server/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		require.Equal(t, want, logging.ParseLevel(in), "level %q", in)
	}
}

func TestInit_InstallsGlobalJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { logging.Init(logging.Options{Level: "info"}) })

	logging.Init(logging.Options{Level: "debug", Output: &buf})
	log.Debug().Str("component", "test").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "hello", entry["message"])
	require.Equal(t, "test", entry["component"])
	require.Equal(t, "debug", entry["level"])
}

func TestInit_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { logging.Init(logging.Options{Level: "info"}) })

	logging.Init(logging.Options{Level: "warn", Output: &buf})
	log.Info().Msg("dropped")
	require.Zero(t, buf.Len())
}
