package memory

import (
	"context"
	"sort"

	"protonshop/internal/model"
	"protonshop/internal/repository"
)

type categoryRepo struct {
	s *Store
}

func (s *Store) Categories() repository.CategoryRepository {
	return &categoryRepo{s: s}
}

func (r *categoryRepo) FindAll(_ context.Context) ([]model.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	categories := make([]model.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (r *categoryRepo) UpsertIgnore(_ context.Context, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[name]; ok {
		return nil
	}
	r.s.categories[name] = model.Category{
		ID:        uint(len(r.s.categories) + 1),
		Name:      name,
		CreatedAt: r.s.now(),
	}
	return nil
}
