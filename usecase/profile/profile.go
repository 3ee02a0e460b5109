package profile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/taskguard/domain"
	"github.com/fastygo/taskguard/repository"
)

// Profile is the caller's directory record with its organization.
type Profile struct {
	User         domain.User          `json:"user"`
	Organization *domain.Organization `json:"organization,omitempty"`
}

type UseCase struct {
	directory repository.Directory
	logger    *zap.Logger
}

func New(directory repository.Directory, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		directory: directory,
		logger:    logger,
	}
}

// GetProfile resolves the actor against the directory. The directory, not the
// token, is authoritative for name and organization details.
func (uc *UseCase) GetProfile(ctx context.Context, actor domain.Actor) (*Profile, error) {
	user, err := uc.directory.FindUserByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	org, err := uc.directory.FindOrganizationByID(ctx, user.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("resolve organization: %w", err)
	}
	if org == nil {
		uc.logger.Warn("user references unknown organization",
			zap.String("user_id", user.ID),
			zap.String("organization_id", user.OrganizationID))
	}
	return &Profile{User: *user, Organization: org}, nil
}
