package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskguard/domain"
	"github.com/fastygo/taskguard/pkg/logger"
	"github.com/fastygo/taskguard/repository"
	"github.com/fastygo/taskguard/usecase"
	"github.com/fastygo/taskguard/usecase/authz"
)

// UseCase orchestrates task operations: authorize, resolve referenced
// entities, persist, then record an audit event.
//
// Writes are not coordinated across requests. Two actors updating the same
// task concurrently race at the store and the last save wins.
type UseCase struct {
	tasks     repository.TaskStore
	directory repository.Directory
	audit     usecase.AuditRecorder
	observer  usecase.DecisionObserver
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*UseCase)

// WithClock overrides the time source used to stamp audit events.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

func WithObserver(observer usecase.DecisionObserver) Option {
	return func(uc *UseCase) { uc.observer = observer }
}

func New(tasks repository.TaskStore, directory repository.Directory, audit usecase.AuditRecorder, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		tasks:     tasks,
		directory: directory,
		audit:     audit,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ListVisible returns every stored task inside actor's visibility scope, in
// store order, with creator and assignee resolved through the directory.
func (uc *UseCase) ListVisible(ctx context.Context, actor domain.Actor) ([]domain.TaskView, error) {
	tasks, err := uc.tasks.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	scope := authz.VisibilityScope(actor)
	users := newUserResolver(uc.directory)
	visible := make([]domain.TaskView, 0, len(tasks))
	for _, task := range tasks {
		summary, view, err := users.resolve(ctx, task)
		if err != nil {
			return nil, err
		}
		if scope(summary) {
			visible = append(visible, view)
		}
	}
	uc.observe(usecase.OperationList, true)
	return visible, nil
}

func (uc *UseCase) Create(ctx context.Context, actor domain.Actor, draft domain.TaskDraft) (*domain.Task, error) {
	if err := uc.authorize(ctx, usecase.OperationCreate, actor, authz.CheckCreate(actor)); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, domain.Invalid("title is required")
	}

	org, err := uc.directory.FindOrganizationByID(ctx, actor.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("resolve organization: %w", err)
	}
	if org == nil {
		return nil, domain.Forbidden("Organization not found for user")
	}
	creator, err := uc.directory.FindUserByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve creator: %w", err)
	}
	if creator == nil {
		return nil, domain.Forbidden("User not found")
	}

	task := &domain.Task{
		Title:          title,
		Description:    draft.Description,
		Category:       draft.Category,
		Status:         domain.StatusOpen,
		OrganizationID: org.ID,
		CreatedByID:    creator.ID,
	}
	if draft.AssigneeID != "" {
		assignee, err := uc.resolveAssignee(ctx, actor, draft.AssigneeID)
		if err != nil {
			return nil, err
		}
		task.AssigneeID = assignee.ID
	}

	saved, err := uc.tasks.Save(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	uc.record(ctx, actor, domain.ActionCreateTask, map[string]any{"taskId": saved.ID, "title": saved.Title})
	return saved, nil
}

func (uc *UseCase) Update(ctx context.Context, actor domain.Actor, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, domain.Invalid(fmt.Sprintf("unknown task status %q", *patch.Status))
	}

	task, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.authorize(ctx, usecase.OperationUpdate, actor, authz.CheckUpdate(actor, *task)); err != nil {
		return nil, err
	}

	switch {
	case patch.Assignee.Clears():
		task.AssigneeID = ""
	case patch.Assignee.Present:
		assignee, err := uc.resolveAssignee(ctx, actor, patch.Assignee.ID)
		if err != nil {
			return nil, err
		}
		task.AssigneeID = assignee.ID
	}
	patch.Apply(task)

	saved, err := uc.tasks.Save(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	uc.record(ctx, actor, domain.ActionUpdateTask, map[string]any{"taskId": saved.ID})
	return saved, nil
}

func (uc *UseCase) UpdateStatus(ctx context.Context, actor domain.Actor, id string, status domain.TaskStatus) (*domain.Task, error) {
	if !status.Valid() {
		return nil, domain.Invalid(fmt.Sprintf("unknown task status %q", status))
	}

	task, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.authorize(ctx, usecase.OperationUpdateStatus, actor, authz.CheckUpdateStatus(actor, *task)); err != nil {
		return nil, err
	}

	task.Status = status
	saved, err := uc.tasks.Save(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	uc.record(ctx, actor, domain.ActionUpdateTaskStatus, map[string]any{"taskId": saved.ID, "status": string(saved.Status)})
	return saved, nil
}

func (uc *UseCase) Delete(ctx context.Context, actor domain.Actor, id string) error {
	task, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.authorize(ctx, usecase.OperationDelete, actor, authz.CheckDelete(actor, *task)); err != nil {
		return err
	}

	if err := uc.tasks.Remove(ctx, task); err != nil {
		return fmt.Errorf("remove task: %w", err)
	}

	uc.record(ctx, actor, domain.ActionDeleteTask, map[string]any{"taskId": task.ID})
	return nil
}

func (uc *UseCase) load(ctx context.Context, id string) (*domain.Task, error) {
	task, err := uc.tasks.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find task %s: %w", id, err)
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (uc *UseCase) resolveAssignee(ctx context.Context, actor domain.Actor, id string) (*domain.User, error) {
	assignee, err := uc.directory.FindUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve assignee: %w", err)
	}
	if assignee == nil {
		return nil, domain.ErrAssigneeNotFound
	}
	if err := uc.authorize(ctx, usecase.OperationAssign, actor, authz.CheckAssign(actor, *assignee)); err != nil {
		return nil, err
	}
	return assignee, nil
}

// authorize reports the decision and passes the denial (if any) through.
func (uc *UseCase) authorize(ctx context.Context, operation string, actor domain.Actor, denial error) error {
	uc.observe(operation, denial == nil)
	if denial != nil {
		logger.WithRequestID(ctx, uc.logger).Info("task operation denied",
			zap.String("operation", operation),
			zap.String("actor_id", actor.ID),
			zap.Stringer("role", actor.Role),
			zap.String("reason", denial.Error()))
	}
	return denial
}

func (uc *UseCase) observe(operation string, allowed bool) {
	if uc.observer != nil {
		uc.observer.ObserveDecision(operation, allowed)
	}
}

func (uc *UseCase) record(ctx context.Context, actor domain.Actor, action domain.AuditAction, details map[string]any) {
	if uc.audit == nil {
		return
	}
	uc.audit.Record(ctx, domain.NewAuditEvent(uc.newID(), uc.now(), actor, action, details))
}
