package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnect_RejectsEmptyDSN(t *testing.T) {
	_, err := Connect(context.Background(), "  ", DefaultPool, nil)
	require.ErrorIs(t, err, errEmptyDSN)
}

func TestOpen_DegradesWithoutDSN(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	db, cleanup := Open(context.Background(), "", logger)
	require.Nil(t, db)
	require.NotNil(t, cleanup)
	cleanup()
	require.Contains(t, buf.String(), "generation history stays in memory")
}

func TestSlogWriterFormats(t *testing.T) {
	var buf bytes.Buffer
	slogWriter{logger: slog.New(slog.NewJSONHandler(&buf, nil))}.Printf("slow query %dms", 812)
	require.Contains(t, buf.String(), "slow query 812ms")
}
