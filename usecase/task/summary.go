package task

import (
	"context"
	"fmt"

	"github.com/fastygo/taskguard/domain"
	"github.com/fastygo/taskguard/repository"
)

// userResolver looks up each referenced user once per listing. Users missing
// from the directory resolve to nil and therefore to no organization.
type userResolver struct {
	directory repository.Directory
	users     map[string]*domain.User
}

func newUserResolver(directory repository.Directory) *userResolver {
	return &userResolver{directory: directory, users: make(map[string]*domain.User)}
}

// resolve returns the visibility summary and the listing view of task.
func (r *userResolver) resolve(ctx context.Context, task domain.Task) (domain.TaskSummary, domain.TaskView, error) {
	creator, err := r.user(ctx, task.CreatedByID)
	if err != nil {
		return domain.TaskSummary{}, domain.TaskView{}, err
	}
	assignee, err := r.user(ctx, task.AssigneeID)
	if err != nil {
		return domain.TaskSummary{}, domain.TaskView{}, err
	}

	summary := domain.TaskSummary{Task: task, CreatorOrgID: orgOf(creator), AssigneeOrgID: orgOf(assignee)}
	view := domain.TaskView{Task: task, CreatedBy: domain.NewUserRef(creator), Assignee: domain.NewUserRef(assignee)}
	return summary, view, nil
}

func (r *userResolver) user(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, nil
	}
	if user, ok := r.users[userID]; ok {
		return user, nil
	}
	user, err := r.directory.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user %s: %w", userID, err)
	}
	r.users[userID] = user
	return user, nil
}

func orgOf(user *domain.User) string {
	if user == nil {
		return ""
	}
	return user.OrganizationID
}
