package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskguard/domain"
	"github.com/fastygo/taskguard/repository"
)

// TaskStore keeps tasks in insertion order. Saves overwrite the whole record,
// so concurrent writers to one task are last-write-wins like the Postgres store.
type TaskStore struct {
	mu    sync.RWMutex
	order []string
	tasks map[string]domain.Task
}

func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]domain.Task)}
}

func (s *TaskStore) Find(_ context.Context, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	return &task, nil
}

func (s *TaskStore) FindAll(_ context.Context) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make([]domain.Task, 0, len(s.order))
	for _, id := range s.order {
		tasks = append(tasks, s.tasks[id])
	}
	return tasks, nil
}

func (s *TaskStore) Save(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if _, exists := s.tasks[task.ID]; !exists {
		s.order = append(s.order, task.ID)
		if task.CreatedAt.IsZero() {
			task.CreatedAt = now
		}
	}
	task.UpdatedAt = now
	s.tasks[task.ID] = *task

	saved := *task
	return &saved, nil
}

func (s *TaskStore) Remove(_ context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(s.tasks, task.ID)
	for i, id := range s.order {
		if id == task.ID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

var _ repository.TaskStore = (*TaskStore)(nil)
