package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/taskguard/internal/infrastructure/journal"
	"github.com/fastygo/taskguard/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ShipObserver counts shipping outcomes ("shipped", "retried", "dropped").
type ShipObserver interface {
	ObserveShipped(outcome string)
}

// ShipperConfig controls how often the journal is drained and trimmed.
type ShipperConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// JournalShipper moves journaled audit events into the audit_events table.
type JournalShipper struct {
	store    *journal.Store
	monitor  ConnectionHealth
	events   repository.AuditEventRepository
	observer ShipObserver
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      ShipperConfig
	now      func() time.Time
}

func NewJournalShipper(
	store *journal.Store,
	monitor ConnectionHealth,
	events repository.AuditEventRepository,
	observer ShipObserver,
	logger *zap.Logger,
	cfg ShipperConfig,
) *JournalShipper {
	if cfg.Interval < time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	js := &JournalShipper{
		store:    store,
		monitor:  monitor,
		events:   events,
		observer: observer,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
		now:      time.Now,
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = js.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := js.Drain(ctx); err != nil {
			js.logger.Error("journal drain failed", zap.Error(err))
		}
	})
	_, _ = js.cron.AddFunc("@hourly", func() {
		if _, err := js.Prune(); err != nil {
			js.logger.Error("journal prune failed", zap.Error(err))
		}
	})

	return js
}

// Start launches the cron scheduler.
func (js *JournalShipper) Start() {
	if js == nil || js.cron == nil {
		return
	}
	js.cron.Start()
	js.logger.Info("journal shipper started", zap.Duration("interval", js.cfg.Interval))
}

// Stop waits for running jobs or the context, whichever ends first.
func (js *JournalShipper) Stop(ctx context.Context) {
	if js == nil || js.cron == nil {
		return
	}
	stopCtx := js.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	js.logger.Info("journal shipper stopped")
}

// Drain ships one batch synchronously. Failed entries are retried on the
// next run and dropped after MaxRetries attempts.
func (js *JournalShipper) Drain(ctx context.Context) error {
	if js == nil || js.store == nil {
		return nil
	}
	if js.monitor != nil && !js.monitor.IsOnline() {
		js.logger.Debug("skipping journal drain (offline)")
		return nil
	}

	entries, err := js.store.Batch(js.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := js.events.Insert(ctx, entry.Event); err != nil {
			js.logger.Error("failed to ship audit event",
				zap.String("event_id", entry.Event.ID),
				zap.Int("attempts", entry.Attempts+1),
				zap.Error(err))

			if entry.Attempts+1 >= js.cfg.MaxRetries {
				js.logger.Warn("dropping audit event (max retries reached)", zap.String("event_id", entry.Event.ID))
				if err := js.store.Remove(entry); err != nil {
					js.logger.Warn("failed to remove journal entry", zap.Error(err))
				}
				js.observe("dropped")
				continue
			}
			if _, err := js.store.Retry(entry); err != nil {
				js.logger.Error("failed to requeue journal entry", zap.Error(err))
			}
			js.observe("retried")
			continue
		}

		if err := js.store.Remove(entry); err != nil {
			js.logger.Warn("failed to purge shipped journal entry", zap.Error(err))
		}
		js.observe("shipped")
	}
	return nil
}

// Prune drops journal entries older than the retention window.
func (js *JournalShipper) Prune() (int, error) {
	if js == nil || js.store == nil {
		return 0, nil
	}
	removed, err := js.store.Prune(js.now().Add(-js.cfg.Retention))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		js.logger.Warn("pruned unshipped audit events", zap.Int("count", removed))
	}
	return removed, nil
}

func (js *JournalShipper) observe(outcome string) {
	if js.observer != nil {
		js.observer.ObserveShipped(outcome)
	}
}
