// Package memory holds in-process repositories for single-node deployments
// and the CLI.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"ogarx/internal/domain"
	"ogarx/internal/port"
)

type userRepo struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserRepo creates an in-memory UserRepository. Users are lost on restart.
func NewUserRepo() port.UserRepository {
	return &userRepo{users: make(map[string]domain.User)}
}

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return domain.ErrDuplicateUsername
	}
	user.ID = uuid.New()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.Username] = *user
	return nil
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}
