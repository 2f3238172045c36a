package api

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	PlatformBaseURL      string
	PlatformAPIKey       string
	PlatformTimeout      time.Duration
	GenerationTimeout    time.Duration
	PlatformRateLimitRPS float64

	SessionTTL              time.Duration
	AllowZeroCostGeneration bool
	CreditsPurchaseURL      string
	ProgressTimeout         time.Duration
	ImageMaxDimension       int
	PromptTemplatesFile     string
}

// LoadDotEnv loads .env into the process environment outside production.
// Variables already set take precedence and a missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if strings.EqualFold(os.Getenv("ENV"), "production") {
		return nil
	}
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:                    envDefault("PORT", "8080"),
		PostgresDSN:             strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:         envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:       envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:        isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		PlatformBaseURL:         strings.TrimSpace(os.Getenv("PLATFORM_BASE_URL")),
		PlatformAPIKey:          strings.TrimSpace(os.Getenv("PLATFORM_API_KEY")),
		AllowZeroCostGeneration: true,
		CreditsPurchaseURL:      strings.TrimSpace(os.Getenv("CREDITS_PURCHASE_URL")),
		PromptTemplatesFile:     strings.TrimSpace(os.Getenv("PROMPT_TEMPLATES_FILE")),
	}
	if cfg.PlatformBaseURL == "" {
		return Config{}, errors.New("PLATFORM_BASE_URL is required")
	}
	if raw := strings.TrimSpace(os.Getenv("ALLOW_ZERO_COST_GENERATION")); raw != "" {
		allow, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("ALLOW_ZERO_COST_GENERATION must be a boolean")
		}
		cfg.AllowZeroCostGeneration = allow
	}

	var err error
	if cfg.PlatformTimeout, err = secondsEnv("PLATFORM_TIMEOUT_SECONDS", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.GenerationTimeout, err = secondsEnv("GENERATION_TIMEOUT_SECONDS", 180*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ProgressTimeout, err = secondsEnv("PROGRESS_TIMEOUT_SECONDS", 3*time.Second); err != nil {
		return Config{}, err
	}
	minutes, err := positiveIntEnv("SESSION_TTL_MINUTES", 30)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL = time.Duration(minutes) * time.Minute
	if cfg.ImageMaxDimension, err = positiveIntEnv("IMAGE_MAX_DIMENSION", 1536); err != nil {
		return Config{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("PLATFORM_RATE_LIMIT_RPS")); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil || rps < 0 {
			return Config{}, fmt.Errorf("PLATFORM_RATE_LIMIT_RPS must be a non-negative number")
		}
		cfg.PlatformRateLimitRPS = rps
	}
	return cfg, nil
}

func secondsEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("%s must be a positive number of seconds", key)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func positiveIntEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return value, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
