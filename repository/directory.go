package repository

import (
	"context"

	"github.com/fastygo/taskguard/domain"
)

// Directory is the read-only lookup of users and organizations. Absence is
// reported as a nil result with a nil error.
type Directory interface {
	FindUserByID(ctx context.Context, id string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindOrganizationByID(ctx context.Context, id string) (*domain.Organization, error)
}
