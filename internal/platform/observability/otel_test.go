package observability

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	require.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
	require.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVICE_VERSION", "1.4.0")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", " collector:4318 ")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_TRACES_STDOUT", "1")

	settings := SettingsFromEnv("portrait-customizer-api")
	require.Equal(t, Settings{
		ServiceName:    "portrait-customizer-api",
		ServiceVersion: "1.4.0",
		Environment:    "local",
		LogLevel:       slog.LevelDebug,
		OTLPEndpoint:   "collector:4318",
		OTLPInsecure:   false,
		StdoutTraces:   true,
	}, settings)
}

func TestNilInstrumentsFallBack(t *testing.T) {
	var instruments *Instruments
	require.NotNil(t, instruments.Tracer("test"))
	require.NotNil(t, instruments.Meter("test"))
}
