package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskguard/domain"
	"github.com/fastygo/taskguard/repository"
)

const taskColumns = `id, title, description, category, status, organization_id, created_by_id, assignee_id, created_at, updated_at`

type taskStore struct {
	pool *pgxpool.Pool
}

// NewTaskStore returns a Postgres-backed implementation of TaskStore.
func NewTaskStore(pool *pgxpool.Pool) repository.TaskStore {
	return &taskStore{pool: pool}
}

func (r *taskStore) Find(ctx context.Context, id string) (*domain.Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

func (r *taskStore) FindAll(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// Save inserts a new task or overwrites every mutable column of an existing
// one. organization_id and created_by_id are never touched on conflict.
func (r *taskStore) Save(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, title, description, category, status, organization_id, created_by_id, assignee_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE
	SET title = EXCLUDED.title,
		description = EXCLUDED.description,
		category = EXCLUDED.category,
		status = EXCLUDED.status,
		assignee_id = EXCLUDED.assignee_id,
		updated_at = NOW()
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		nullString(task.Description),
		nullString(task.Category),
		string(task.Status),
		task.OrganizationID,
		task.CreatedByID,
		nullString(task.AssigneeID),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	saved := *task
	return &saved, nil
}

func (r *taskStore) Remove(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, task.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task                            domain.Task
		status                          string
		description, category, assignee *string
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&category,
		&status,
		&task.OrganizationID,
		&task.CreatedByID,
		&assignee,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	task.Description = fromNull(description)
	task.Category = fromNull(category)
	task.AssigneeID = fromNull(assignee)
	task.Status = domain.TaskStatus(status)
	return &task, nil
}
