package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskguard/domain"
	"github.com/fastygo/taskguard/repository"
)

type directory struct {
	pool *pgxpool.Pool
}

// NewDirectory returns a read-only Postgres directory of users and
// organizations.
func NewDirectory(pool *pgxpool.Pool) repository.Directory {
	return &directory{pool: pool}
}

func (d *directory) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT id, email, name, role, organization_id FROM users WHERE id = $1`
	return d.findUser(ctx, query, id)
}

func (d *directory) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT id, email, name, role, organization_id FROM users WHERE lower(email) = lower($1)`
	return d.findUser(ctx, query, email)
}

func (d *directory) FindOrganizationByID(ctx context.Context, id string) (*domain.Organization, error) {
	const query = `SELECT id, name, parent_id FROM organizations WHERE id = $1`

	var (
		org    domain.Organization
		parent *string
	)
	if err := d.pool.QueryRow(ctx, query, id).Scan(&org.ID, &org.Name, &parent); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	org.ParentID = fromNull(parent)
	return &org, nil
}

func (d *directory) findUser(ctx context.Context, query, arg string) (*domain.User, error) {
	var (
		user domain.User
		role string
	)
	if err := d.pool.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Email, &user.Name, &role, &user.OrganizationID); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", user.ID, err)
	}
	user.Role = parsed
	return &user, nil
}
