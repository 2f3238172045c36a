// Package postgres dials the generation-history database through GORM.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Pool bounds the connections held against the database.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	PingTimeout time.Duration
}

// DefaultPool suits a single API replica; the history tables see one write per generation.
var DefaultPool = Pool{MaxOpen: 10, MaxIdle: 2, MaxLifetime: 30 * time.Minute, PingTimeout: 5 * time.Second}

var errEmptyDSN = errors.New("postgres DSN is empty")

// Connect opens a pooled connection and pings it. Unique violations surface as gorm.ErrDuplicatedKey.
func Connect(ctx context.Context, dsn string, pool Pool, logger *slog.Logger) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errEmptyDSN
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpen)
	sqlDB.SetMaxIdleConns(pool.MaxIdle)
	sqlDB.SetConnMaxLifetime(pool.MaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pool.PingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Open is Connect with degradation: an empty DSN or an unreachable server yields a nil DB,
// a no-op cleanup and a warning, and callers switch to in-memory history.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*gorm.DB, func()) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := Connect(ctx, dsn, DefaultPool, logger)
	switch {
	case errors.Is(err, errEmptyDSN):
		logger.Warn("POSTGRES_DSN not set, generation history stays in memory")
		return nil, func() {}
	case err != nil:
		logger.Warn("postgres unavailable, generation history stays in memory", slog.String("error", err.Error()))
		return nil, func() {}
	}
	logger.Info("postgres connection established", slog.Int("pool.maxOpen", DefaultPool.MaxOpen))
	return db, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// slogWriter routes GORM's printf-style output into structured logs.
type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn("gorm", slog.String("message", fmt.Sprintf(format, args...)))
}

func newGormLogger(logger *slog.Logger) gormlogger.Interface {
	if logger == nil {
		logger = slog.Default()
	}
	return gormlogger.New(slogWriter{logger: logger}, gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
