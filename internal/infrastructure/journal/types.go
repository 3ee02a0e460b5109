package journal

import (
	"time"

	"github.com/fastygo/taskguard/domain"
)

// Entry is an audit event waiting to be shipped to long-term storage.
type Entry struct {
	Event    domain.AuditEvent `json:"event"`
	Attempts int               `json:"attempts"`
	QueuedAt time.Time         `json:"queued_at"`

	key []byte
}

func (e *Entry) normalize() {
	if e.QueuedAt.IsZero() {
		e.QueuedAt = time.Now().UTC()
	}
}
