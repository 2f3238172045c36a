package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/ports"
)

func TestSessionStore_DeleteClosesSession(t *testing.T) {
	store := NewSessionStore(time.Minute)
	session := custtypes.NewSession("s-1", nil, custtypes.Credentials{}, time.Now())
	require.NoError(t, store.Save(context.Background(), session))

	got, err := store.Get(context.Background(), "s-1")
	require.NoError(t, err)
	require.Same(t, session, got)

	require.NoError(t, store.Delete(context.Background(), "s-1"))
	require.True(t, session.Closed())
	require.NoError(t, store.Delete(context.Background(), "s-1"))
	require.Zero(t, store.Len())

	_, err = store.Get(context.Background(), "s-1")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_IdleSessionsExpireAndClose(t *testing.T) {
	store := NewSessionStore(20 * time.Millisecond)
	session := custtypes.NewSession("s-2", nil, custtypes.Credentials{}, time.Now())
	require.NoError(t, store.Save(context.Background(), session))

	time.Sleep(40 * time.Millisecond)
	_, err := store.Get(context.Background(), "s-2")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)

	assert.Eventually(t, session.Closed, 3*time.Second, 50*time.Millisecond)
}

func TestSessionStore_RejectsAnonymousSession(t *testing.T) {
	store := NewSessionStore(0)
	require.Error(t, store.Save(context.Background(), nil))
	require.Error(t, store.Save(context.Background(), &custtypes.Session{}))
	require.Zero(t, store.Len())
}

func TestIdempotencyStore_ReplayConflictAndPurge(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := NewIdempotencyStore()
	store.WithClock(func() time.Time { return base })

	missing, err := store.Get(ctx, "k-1")
	require.NoError(t, err)
	require.Nil(t, missing)

	record := ports.IdempotencyRecord{Key: "k-1", RequestHash: "h", GenerationID: "g-1"}
	saved, err := store.Save(ctx, record)
	require.NoError(t, err)
	require.Equal(t, base, saved.CreatedAt)

	again, err := store.Save(ctx, record)
	require.NoError(t, err)
	require.Equal(t, "g-1", again.GenerationID)

	conflicting, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k-1", RequestHash: "other", GenerationID: "g-2"})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.Equal(t, "g-1", conflicting.GenerationID)

	removed, err := store.PurgeBefore(ctx, base)
	require.NoError(t, err)
	require.Zero(t, removed)

	removed, err = store.PurgeBefore(ctx, base.Add(time.Second))
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
}

func TestGenerationLog_ListByImageNewestFirst(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	log := NewGenerationLog()
	log.WithClock(func() time.Time { return clock })

	for _, id := range []string{"g-1", "g-2"} {
		_, err := log.Save(ctx, &domain.GenerationRecord{ID: id, OriginalImageID: "img", VariationIDs: []string{"v"}})
		require.NoError(t, err)
		clock = clock.Add(time.Minute)
	}
	_, err := log.Save(ctx, &domain.GenerationRecord{ID: "g-3", OriginalImageID: "elsewhere"})
	require.NoError(t, err)

	list, err := log.ListByImage(ctx, "img")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "g-2", list[0].Entity.ID)
	require.Equal(t, "g-1", list[1].Entity.ID)

	list[0].Entity.VariationIDs[0] = "mutated"
	stored, err := log.GetByID(ctx, "g-2")
	require.NoError(t, err)
	require.Equal(t, "v", stored.Entity.VariationIDs[0])
}

func TestGenerationLog_DescriptionAndMissing(t *testing.T) {
	ctx := context.Background()
	log := NewGenerationLog()

	_, err := log.Save(ctx, &domain.GenerationRecord{})
	require.ErrorIs(t, err, domain.ErrEmptyGenerationID)
	require.ErrorIs(t, log.SetDescription(ctx, "nope", "x"), ports.ErrGenerationNotFound)
	_, err = log.GetByID(ctx, "nope")
	require.ErrorIs(t, err, ports.ErrGenerationNotFound)

	_, err = log.Save(ctx, &domain.GenerationRecord{ID: "g-1", OriginalImageID: "img"})
	require.NoError(t, err)
	require.NoError(t, log.SetDescription(ctx, "g-1", "  A fluffy poodle.  "))

	stored, err := log.GetByID(ctx, "g-1")
	require.NoError(t, err)
	require.Equal(t, "A fluffy poodle.", stored.Entity.Description)
}
