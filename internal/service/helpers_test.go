package service

import (
	"context"
	"sync"
	"testing"

	"protonshop/internal/model"
	"protonshop/internal/repository"
	"protonshop/internal/repository/memory"
	"protonshop/internal/shop"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type published struct {
	UserID  string
	Type    string
	Payload any
}

// recorder is a ws.Publisher that keeps everything it was asked to send.
type recorder struct {
	mu     sync.Mutex
	events []published
}

func (r *recorder) Publish(eventType string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{Type: eventType, Payload: payload})
}

func (r *recorder) PublishToUser(userID, eventType string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{UserID: userID, Type: eventType, Payload: payload})
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type memCarts struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCarts() *memCarts {
	return &memCarts{data: make(map[string][]byte)}
}

func (m *memCarts) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCarts) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memCarts) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// flakyOrders fails UpdateFields while the rest of the repository works.
type flakyOrders struct {
	repository.OrderRepository
	updateErr error
}

func (f *flakyOrders) UpdateFields(ctx context.Context, id uuid.UUID, update repository.OrderUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.OrderRepository.UpdateFields(ctx, id, update)
}

type brokenVisits struct{}

func (brokenVisits) Record(context.Context) error          { return errBoom }
func (brokenVisits) Count(context.Context) (int64, error) { return 0, errBoom }

type brokenCategories struct{}

func (brokenCategories) FindAll(context.Context) ([]model.Category, error) { return nil, errBoom }
func (brokenCategories) UpsertIgnore(context.Context, string) error        { return errBoom }

func seedProduct(t *testing.T, store *memory.Store, p model.Product) model.Product {
	t.Helper()
	require.NoError(t, store.Products().Create(context.Background(), &p))
	return p
}

func cartWith(ctx context.Context, carts shop.CartStorage, cartID string, products ...model.Product) (*shop.Ledger, error) {
	l, err := shop.LoadLedger(ctx, carts, cartID)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if err := l.Add(ctx, p); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func ptr[T any](v T) *T { return &v }
