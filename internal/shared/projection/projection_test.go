package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStamp(t *testing.T) {
	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	created := Stamp(nil, first)
	require.Equal(t, Metadata{CreatedAt: first, UpdatedAt: first}, created)

	updated := Stamp(&created, later)
	require.Equal(t, first, updated.CreatedAt)
	require.Equal(t, later, updated.UpdatedAt)

	require.Equal(t, later, Stamp(&Metadata{}, later).CreatedAt)
}
