package repository

import (
	"context"

	"github.com/fastygo/taskguard/domain"
)

// TaskStore persists tasks. Find returns (nil, nil) when the task does not
// exist; errors are reserved for storage failures.
type TaskStore interface {
	Find(ctx context.Context, id string) (*domain.Task, error)
	FindAll(ctx context.Context) ([]domain.Task, error)
	// Save inserts or overwrites the task, assigning an ID when empty.
	Save(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Remove(ctx context.Context, task *domain.Task) error
}
