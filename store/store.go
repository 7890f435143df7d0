// Package store persists users, daily progress, leaderboard aggregates and
// challenge settings through GORM.
package store

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"

	"github.com/cppla/cracker/config"
	"github.com/cppla/cracker/utils"
)

// RetryPolicy controls how often a failed database call is attempted.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
}

// PolicyFromConfig reads the retry settings from the application config.
func PolicyFromConfig(cfg config.AppConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     cfg.DBMaxRetries,
		InitialInterval: time.Duration(cfg.DBRetryIntervalMs) * time.Millisecond,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	if b.InitialInterval <= 0 {
		b.InitialInterval = 100 * time.Millisecond
	}
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// Store is the ProgressStore. It is safe for concurrent use.
type Store struct {
	db    *gorm.DB
	retry RetryPolicy
}

// New wraps an opened database.
func New(db *gorm.DB, retry RetryPolicy) *Store {
	return &Store{db: db, retry: retry}
}

// do runs fn against a context-bound session, retrying transient failures.
func (s *Store) do(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	attempt := 0
	run := func() error {
		attempt++
		err := translate(fn(s.db.WithContext(ctx)))
		if err != nil && permanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		utils.DBRetries.Inc()
		utils.Sugar.Warnw("database operation failed, retrying",
			"op", op, "attempt", attempt, "wait", wait, "error", err)
	}
	return backoff.RetryNotify(run, s.retry.backOff(ctx), notify)
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.do(ctx, "ping", func(tx *gorm.DB) error {
		sqlDB, err := tx.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
}
