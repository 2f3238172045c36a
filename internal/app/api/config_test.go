package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PLATFORM_BASE_URL", "https://platform.example")
	for _, key := range []string{"PORT", "SESSION_TTL_MINUTES", "ALLOW_ZERO_COST_GENERATION", "PLATFORM_RATE_LIMIT_RPS", "PROGRESS_TIMEOUT_SECONDS", "PLATFORM_TIMEOUT_SECONDS", "GENERATION_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.True(t, cfg.AllowZeroCostGeneration)
	require.Equal(t, 3*time.Second, cfg.ProgressTimeout)
	require.Equal(t, 15*time.Second, cfg.PlatformTimeout)
	require.Equal(t, 3*time.Minute, cfg.GenerationTimeout)
	require.Zero(t, cfg.PlatformRateLimitRPS)
	require.Equal(t, 1536, cfg.ImageMaxDimension)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PLATFORM_BASE_URL", "https://platform.example")
	t.Setenv("ALLOW_ZERO_COST_GENERATION", "false")
	t.Setenv("SESSION_TTL_MINUTES", "5")
	t.Setenv("PROGRESS_TIMEOUT_SECONDS", "1.5")
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "240")
	t.Setenv("PLATFORM_RATE_LIMIT_RPS", "2.5")
	t.Setenv("TEMPORAL_DISABLED", "yes")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.False(t, cfg.AllowZeroCostGeneration)
	require.Equal(t, 5*time.Minute, cfg.SessionTTL)
	require.Equal(t, 1500*time.Millisecond, cfg.ProgressTimeout)
	require.Equal(t, 4*time.Minute, cfg.GenerationTimeout)
	require.Equal(t, 2.5, cfg.PlatformRateLimitRPS)
	require.True(t, cfg.TemporalDisabled)
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := map[string]map[string]string{
		"missing platform":  {"PLATFORM_BASE_URL": ""},
		"bad ttl":           {"PLATFORM_BASE_URL": "https://p", "SESSION_TTL_MINUTES": "0"},
		"bad zero cost":     {"PLATFORM_BASE_URL": "https://p", "ALLOW_ZERO_COST_GENERATION": "maybe"},
		"negative rps":      {"PLATFORM_BASE_URL": "https://p", "PLATFORM_RATE_LIMIT_RPS": "-1"},
		"bad image max dim": {"PLATFORM_BASE_URL": "https://p", "IMAGE_MAX_DIMENSION": "big"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestLoadDotEnv_DoesNotOverrideProcessEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CREDITS_PURCHASE_URL=https://from-file\nPORTRAIT_DOTENV_ONLY=1\n"), 0o600))
	t.Setenv("ENV", "")
	t.Setenv("CREDITS_PURCHASE_URL", "https://from-env")
	t.Cleanup(func() { _ = os.Unsetenv("PORTRAIT_DOTENV_ONLY") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	require.Equal(t, "https://from-env", os.Getenv("CREDITS_PURCHASE_URL"))
	require.Equal(t, "1", os.Getenv("PORTRAIT_DOTENV_ONLY"))
}
