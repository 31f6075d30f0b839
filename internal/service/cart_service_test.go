package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"protonshop/internal/model"
	"protonshop/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	mouse := seedProduct(t, store, model.Product{Name: "Mouse", Price: 50, SalePrice: ptr(40.0), CostPrice: 10})
	pad := seedProduct(t, store, model.Product{Name: "Pad", Price: 15})

	svc := NewCartService(newMemCarts(), store.Products())

	view, err := svc.Add(ctx, "abc", mouse.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Count)
	assert.Equal(t, 120.0, view.Total)
	assert.Zero(t, view.Lines[0].Product.CostPrice)

	view, err = svc.Add(ctx, "abc", pad.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Count)
	assert.Equal(t, 135.0, view.Total)

	view, err = svc.UpdateQuantity(ctx, "abc", mouse.ID, -3)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, pad.ID, view.Lines[0].Product.ID)

	view, err = svc.Remove(ctx, "abc", pad.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)

	_, err = svc.Add(ctx, "abc", pad.ID, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "abc"))
	view, err = svc.View(ctx, "abc")
	require.NoError(t, err)
	assert.Zero(t, view.Count)
}

func TestCartServiceErrors(t *testing.T) {
	store := memory.New()
	svc := NewCartService(newMemCarts(), store.Products())
	ctx := context.Background()

	_, err := svc.View(ctx, "  ")
	assert.ErrorIs(t, err, ErrMissingCartID)

	_, err = svc.Add(ctx, "abc", uuid.New(), 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartsAreIsolated(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	mouse := seedProduct(t, store, model.Product{Name: "Mouse", Price: 50})
	svc := NewCartService(newMemCarts(), store.Products())

	_, err := svc.Add(ctx, "one", mouse.ID, 1)
	require.NoError(t, err)
	view, err := svc.View(ctx, "two")
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

// slowCarts delays reads so unsynchronised writers overlap, and counts writes.
type slowCarts struct {
	*memCarts
	writes atomic.Int32
}

func (s *slowCarts) Get(ctx context.Context, key string) ([]byte, bool, error) {
	time.Sleep(time.Millisecond)
	return s.memCarts.Get(ctx, key)
}

func (s *slowCarts) Set(ctx context.Context, key string, value []byte) error {
	s.writes.Add(1)
	return s.memCarts.Set(ctx, key, value)
}

func TestCartServiceConcurrentAdds(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	mouse := seedProduct(t, store, model.Product{Name: "Mouse", Price: 50})
	svc := NewCartService(&slowCarts{memCarts: newMemCarts()}, store.Products())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Add(ctx, "abc", mouse.ID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	view, err := svc.View(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 20, view.Count)
	assert.Equal(t, 1000.0, view.Total)
}

func TestCartServiceAddWritesOnce(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	mouse := seedProduct(t, store, model.Product{Name: "Mouse", Price: 50})
	carts := &slowCarts{memCarts: newMemCarts()}
	svc := NewCartService(carts, store.Products())

	view, err := svc.Add(ctx, "abc", mouse.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Count)
	assert.Equal(t, int32(1), carts.writes.Load())
}
