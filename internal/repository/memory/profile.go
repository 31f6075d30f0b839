package memory

import (
	"context"

	"protonshop/internal/model"
	"protonshop/internal/repository"

	"github.com/google/uuid"
)

type profileRepo struct {
	s *Store
}

func (s *Store) Profiles() repository.ProfileRepository {
	return &profileRepo{s: s}
}

func (r *profileRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*model.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *profileRepo) Upsert(_ context.Context, profile *model.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	profile.UpdatedAt = r.s.now()
	r.s.profiles[profile.UserID] = *profile
	return nil
}
