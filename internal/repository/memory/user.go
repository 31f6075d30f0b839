package memory

import (
	"context"
	"strings"

	"protonshop/internal/model"
	"protonshop/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type userRepo struct {
	s *Store
}

func (s *Store) Users() repository.UserRepository {
	return &userRepo{s: s}
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, errors.Wrap(repository.ErrNotFound, "find user by email")
}

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, errors.Wrap(repository.ErrNotFound, "find user")
	}
	return &u, nil
}

func (r *userRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return errors.Wrapf(repository.ErrDuplicate, "create user: email %q", user.Email)
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := r.s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) Update(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return errors.Wrap(repository.ErrNotFound, "update user")
	}
	user.UpdatedAt = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}
