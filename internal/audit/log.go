// Package audit keeps the most recent audit events in memory and forwards
// each one to optional durable sinks.
package audit

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskguard/domain"
	"github.com/fastygo/taskguard/pkg/logger"
	"github.com/fastygo/taskguard/usecase"
)

// DefaultCapacity is the number of events the log retains.
const DefaultCapacity = 100

// Sink receives a copy of every recorded event. A failing sink is logged and
// otherwise ignored, so events can be lost downstream without the mutation
// that produced them failing.
type Sink interface {
	Write(ctx context.Context, event domain.AuditEvent) error
}

// Counter is incremented once per recorded event.
type Counter interface {
	Inc()
}

// Log is a fixed-capacity ring of audit events. Appends and evictions happen
// under one mutex so concurrent recorders never lose or reorder events.
// Recorders are serialized end to end, so sinks see events in ring order.
// Readers only wait for the ring, never for a sink.
type Log struct {
	write  sync.Mutex
	mu     sync.Mutex
	ring   []domain.AuditEvent
	head   int
	size   int
	sinks  []Sink
	count  Counter
	logger *zap.Logger
}

func NewLog(capacity int, logger *zap.Logger, sinks ...Sink) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{
		ring:   make([]domain.AuditEvent, capacity),
		sinks:  sinks,
		logger: logger,
	}
}

// WithCounter attaches a metric counter and returns the log for chaining.
func (l *Log) WithCounter(c Counter) *Log {
	l.count = c
	return l
}

// Record appends event, evicting the oldest one once the log is full, then
// hands it to the sinks. It blocks for as long as the slowest sink.
func (l *Log) Record(ctx context.Context, event domain.AuditEvent) {
	l.write.Lock()
	defer l.write.Unlock()

	l.mu.Lock()
	idx := (l.head + l.size) % len(l.ring)
	l.ring[idx] = event
	if l.size < len(l.ring) {
		l.size++
	} else {
		l.head = (l.head + 1) % len(l.ring)
	}
	l.mu.Unlock()

	if l.count != nil {
		l.count.Inc()
	}

	logger.WithRequestID(ctx, l.logger).Info("audit",
		zap.String("event_id", event.ID),
		zap.Time("at", event.Timestamp),
		zap.String("actor_email", event.ActorEmail),
		zap.String("actor_role", event.ActorRole),
		zap.String("actor_org_id", event.ActorOrgID),
		zap.String("action", string(event.Action)),
		zap.Any("details", event.Details))

	for _, sink := range l.sinks {
		if err := sink.Write(ctx, event); err != nil {
			l.logger.Error("audit sink write failed", zap.String("event_id", event.ID), zap.Error(err))
		}
	}
}

// Events returns the retained events, newest first.
func (l *Log) Events() []domain.AuditEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.AuditEvent, 0, l.size)
	for i := l.size - 1; i >= 0; i-- {
		out = append(out, l.ring[(l.head+i)%len(l.ring)])
	}
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

func (l *Log) Capacity() int {
	return len(l.ring)
}

var _ usecase.AuditRecorder = (*Log)(nil)
