// Package memory is a process-local Store Backend used by tests and by
// STORE_DRIVER=memory. Rows are copied in and out so callers never share
// state with the store.
package memory

import (
	"sync"
	"time"

	"protonshop/internal/model"
	"protonshop/internal/repository"

	"github.com/google/uuid"
)

type Store struct {
	mu  sync.RWMutex
	now func() time.Time
	seq int64

	products   map[uuid.UUID]*productRow
	categories map[string]model.Category
	orders     map[uuid.UUID]*orderRow
	profiles   map[uuid.UUID]model.Profile
	visits     int64
	users      map[uuid.UUID]model.User
}

type productRow struct {
	seq     int64
	product model.Product
}

type orderRow struct {
	seq   int64
	order model.Order
}

type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:        time.Now,
		products:   make(map[uuid.UUID]*productRow),
		categories: make(map[string]model.Category),
		orders:     make(map[uuid.UUID]*orderRow),
		profiles:   make(map[uuid.UUID]model.Profile),
		users:      make(map[uuid.UUID]model.User),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Products:   s.Products(),
		Categories: s.Categories(),
		Orders:     s.Orders(),
		Profiles:   s.Profiles(),
		Visits:     s.Visits(),
		Users:      s.Users(),
	}
}
