package memory

import (
	"context"

	"protonshop/internal/repository"
)

type visitRepo struct {
	s *Store
}

func (s *Store) Visits() repository.VisitRepository {
	return &visitRepo{s: s}
}

func (r *visitRepo) Record(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.visits++
	return nil
}

func (r *visitRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.visits, nil
}
