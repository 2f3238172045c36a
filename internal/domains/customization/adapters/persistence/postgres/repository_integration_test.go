//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	custpostgres "github.com/Apurer/portrait-customizer/internal/domains/customization/adapters/persistence/postgres"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/ports"
	"github.com/Apurer/portrait-customizer/internal/platform/migrations"
	platformpostgres "github.com/Apurer/portrait-customizer/internal/platform/postgres"
)

func setupPostgresContainer(t *testing.T) *gorm.DB {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("portraits_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := platformpostgres.Connect(ctx, dsn, platformpostgres.DefaultPool, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, migrations.Run(db))
	return db
}

func record(id, imageID string) *domain.GenerationRecord {
	remaining := 8
	return &domain.GenerationRecord{
		ID:               id,
		SessionID:        "sess-1",
		OriginalImageID:  imageID,
		BreedID:          "poodle",
		CoatID:           "black",
		OutfitID:         "santa",
		CreditsCharged:   2,
		CreditsRemaining: &remaining,
		VariationIDs:     []string{"v1", "v2"},
	}
}

func TestGenerationLog_SaveGetAndDescribe(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := setupPostgresContainer(t)
	log := custpostgres.NewGenerationLog(db)
	ctx := context.Background()

	saved, err := log.Save(ctx, record("gen-1", "img-1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, saved.Entity.VariationIDs)
	assert.False(t, saved.Metadata.CreatedAt.IsZero())

	require.NoError(t, log.SetDescription(ctx, "gen-1", "  A curly poodle  "))
	got, err := log.GetByID(ctx, "gen-1")
	require.NoError(t, err)
	assert.Equal(t, "A curly poodle", got.Entity.Description)
	require.NotNil(t, got.Entity.CreditsRemaining)
	assert.Equal(t, 8, *got.Entity.CreditsRemaining)
	assert.Equal(t, saved.Metadata.CreatedAt.Unix(), got.Metadata.CreatedAt.Unix())

	unknown := record("gen-2", "img-1")
	unknown.CreditsRemaining = nil
	_, err = log.Save(ctx, unknown)
	require.NoError(t, err)
	got, err = log.GetByID(ctx, "gen-2")
	require.NoError(t, err)
	assert.Nil(t, got.Entity.CreditsRemaining)

	_, err = log.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrGenerationNotFound)
	assert.ErrorIs(t, log.SetDescription(ctx, "missing", "x"), ports.ErrGenerationNotFound)
}

func TestGenerationLog_ListByImageNewestFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := setupPostgresContainer(t)
	log := custpostgres.NewGenerationLog(db)
	ctx := context.Background()

	_, err := log.Save(ctx, record("gen-1", "img-1"))
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = log.Save(ctx, record("gen-2", "img-1"))
	require.NoError(t, err)
	_, err = log.Save(ctx, record("gen-3", "img-2"))
	require.NoError(t, err)

	list, err := log.ListByImage(ctx, "img-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "gen-2", list[0].Entity.ID)
	assert.Equal(t, "gen-1", list[1].Entity.ID)
}

func TestIdempotencyStore_ReplayConflictAndPurge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := setupPostgresContainer(t)
	store := custpostgres.NewIdempotencyStore(db)
	ctx := context.Background()

	rec := ports.IdempotencyRecord{Key: "sess-1:abc", RequestHash: "h1", GenerationID: "gen-1"}
	_, err := store.Save(ctx, rec)
	require.NoError(t, err)

	again, err := store.Save(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, "gen-1", again.GenerationID)

	_, err = store.Save(ctx, ports.IdempotencyRecord{Key: "sess-1:abc", RequestHash: "h2", GenerationID: "gen-2"})
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)

	removed, err := store.PurgeBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	missing, err := store.Get(ctx, "sess-1:abc")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
