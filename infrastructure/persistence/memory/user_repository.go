package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/varangian-core/magical-board/domain/core/entities"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// UserRepository keeps users in process memory
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entities.User
}

// NewUserRepository creates an empty in-memory user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]*entities.User),
	}
}

// CreateUser stores a user
func (r *UserRepository) CreateUser(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID()]; exists {
		return pkgerrors.NewConflictError("user already exists: " + user.ID())
	}
	r.users[user.ID()] = cloneUser(user, user.LastActive())
	return nil
}

// GetUser retrieves a user by id
func (r *UserRepository) GetUser(ctx context.Context, id string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("user")
	}
	return cloneUser(user, user.LastActive()), nil
}

// GetAllUsers lists users, most recently active first
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u, u.LastActive()))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LastActive().Equal(out[j].LastActive()) {
			return out[i].ID() < out[j].ID()
		}
		return out[i].LastActive().After(out[j].LastActive())
	})
	return out, nil
}

// UpdateLastActive marks the user as active now
func (r *UserRepository) UpdateLastActive(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return pkgerrors.NewNotFoundError("user")
	}
	r.users[id] = cloneUser(user, time.Now().UTC())
	return nil
}

// DeleteUser removes a user
func (r *UserRepository) DeleteUser(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func cloneUser(u *entities.User, lastActive time.Time) *entities.User {
	out, _ := entities.ReconstructUser(u.ID(), u.Name(), u.Avatar(), u.CreatedAt(), lastActive)
	return out
}
