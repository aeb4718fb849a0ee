package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/models"
	"github.com/greencycle/ecollect/pkg/logger"
)

const (
	defaultRetention = 30 * 24 * time.Hour
	defaultSpec      = "@daily"

	// Unread notifications are kept longer before the hard cap kicks in.
	unreadRetentionFactor = 4
)

// Cleaner purges aged notification rows in the background so the table
// does not grow without bound.
type Cleaner struct {
	db        *gorm.DB
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	retention time.Duration
	schedule  string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithRetention adjusts how long read notifications are kept.
func WithRetention(retention time.Duration) Option {
	return func(cleaner *Cleaner) {
		if retention > 0 {
			cleaner.retention = retention
		}
	}
}

// WithSchedule overrides the cron specification for the purge job.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults.
func NewCleaner(db *gorm.DB, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:        db,
		now:       time.Now,
		retention: defaultRetention,
		schedule:  defaultSpec,
		log:       logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the purge job with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.db == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("notification cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes the purge routines sequentially. Primarily used in
// tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.db == nil {
		return nil
	}

	now := c.now()
	var errs error

	read, err := CleanupReadNotifications(ctx, c.db, now.Add(-c.retention))
	if err != nil {
		errs = multierr.Append(errs, err)
	}

	stale, err := CleanupStaleNotifications(ctx, c.db, now.Add(-c.retention*unreadRetentionFactor))
	if err != nil {
		errs = multierr.Append(errs, err)
	}

	if errs == nil && (read > 0 || stale > 0) {
		c.log.Info("purged notifications",
			zap.Int64("read", read),
			zap.Int64("stale", stale))
	}
	return errs
}

// CleanupReadNotifications deletes read notifications created before the cutoff.
func CleanupReadNotifications(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, before).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("purge read notifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CleanupStaleNotifications deletes notifications of any state created
// before the cutoff. Acts as a hard cap for rows never marked read.
func CleanupStaleNotifications(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("purge stale notifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}
