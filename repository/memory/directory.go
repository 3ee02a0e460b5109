package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/fastygo/taskguard/domain"
	"github.com/fastygo/taskguard/repository"
)

// Directory is a map-backed directory, mainly for tests and local runs.
type Directory struct {
	mu    sync.RWMutex
	users map[string]domain.User
	orgs  map[string]domain.Organization
}

func NewDirectory() *Directory {
	return &Directory{
		users: make(map[string]domain.User),
		orgs:  make(map[string]domain.Organization),
	}
}

func (d *Directory) AddOrganization(org domain.Organization) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.orgs[org.ID] = org
}

func (d *Directory) AddUser(user domain.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[user.ID] = user
}

func (d *Directory) FindUserByID(_ context.Context, id string) (*domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	user, ok := d.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (d *Directory) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, user := range d.users {
		if strings.EqualFold(user.Email, email) {
			found := user
			return &found, nil
		}
	}
	return nil, nil
}

func (d *Directory) FindOrganizationByID(_ context.Context, id string) (*domain.Organization, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	org, ok := d.orgs[id]
	if !ok {
		return nil, nil
	}
	return &org, nil
}

var _ repository.Directory = (*Directory)(nil)
