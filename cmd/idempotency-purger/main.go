package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	custpostgres "github.com/Apurer/portrait-customizer/internal/domains/customization/adapters/persistence/postgres"
	platformpostgres "github.com/Apurer/portrait-customizer/internal/platform/postgres"
)

const defaultIdempotencyTTL = 24 * time.Hour

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.Open(ctx, os.Getenv("POSTGRES_DSN"), logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge idempotency keys")
	}

	cutoff := time.Now().UTC().Add(-idempotencyTTLFromEnv())
	store := custpostgres.NewIdempotencyStore(db)
	purged, err := store.PurgeBefore(ctx, cutoff)
	if err != nil {
		log.Fatalf("failed to purge idempotency keys: %v", err)
	}
	logger.Info("idempotency key purge completed", slog.Int64("purged", purged), slog.Time("cutoff", cutoff))
}

func idempotencyTTLFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("IDEMPOTENCY_TTL_HOURS"))
	if raw == "" {
		return defaultIdempotencyTTL
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return defaultIdempotencyTTL
	}
	return time.Duration(hours) * time.Hour
}
