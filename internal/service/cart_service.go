package service

import (
	"context"
	"strings"
	"sync"

	"protonshop/internal/repository"
	"protonshop/internal/shop"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrMissingCartID = errors.New("cart id is required")

// CartView is the cart as returned to the shopper.
type CartView struct {
	Lines []shop.CartLine `json:"lines"`
	Total float64         `json:"total"`
	Count int             `json:"count"`
}

func viewOf(l *shop.Ledger) *CartView {
	return &CartView{Lines: l.Lines(), Total: l.Total(), Count: l.Count()}
}

type CartService interface {
	// WithCart runs fn on the cart while no other request can change it.
	WithCart(ctx context.Context, cartID string, fn func(*shop.Ledger) error) error
	View(ctx context.Context, cartID string) (*CartView, error)
	Add(ctx context.Context, cartID string, productID uuid.UUID, quantity int) (*CartView, error)
	UpdateQuantity(ctx context.Context, cartID string, productID uuid.UUID, delta int) (*CartView, error)
	Remove(ctx context.Context, cartID string, productID uuid.UUID) (*CartView, error)
	Clear(ctx context.Context, cartID string) error
}

type cartService struct {
	store       shop.CartStorage
	productRepo repository.ProductRepository

	mu    sync.Mutex
	locks map[string]*cartLock
}

type cartLock struct {
	sync.Mutex
	refs int
}

func NewCartService(store shop.CartStorage, pRepo repository.ProductRepository) CartService {
	return &cartService{store: store, productRepo: pRepo, locks: make(map[string]*cartLock)}
}

// lock serialises load, mutate and persist for one cart id. Entries are
// dropped once no request holds or waits on them.
func (s *cartService) lock(cartID string) func() {
	s.mu.Lock()
	l, ok := s.locks[cartID]
	if !ok {
		l = &cartLock{}
		s.locks[cartID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, cartID)
		}
		s.mu.Unlock()
	}
}

func (s *cartService) WithCart(ctx context.Context, cartID string, fn func(*shop.Ledger) error) error {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return ErrMissingCartID
	}
	unlock := s.lock(cartID)
	defer unlock()

	l, err := shop.LoadLedger(ctx, s.store, cartID)
	if err != nil {
		return err
	}
	return fn(l)
}

func (s *cartService) mutate(ctx context.Context, cartID string, fn func(*shop.Ledger) error) (*CartView, error) {
	var view *CartView
	err := s.WithCart(ctx, cartID, func(l *shop.Ledger) error {
		if err := fn(l); err != nil {
			return err
		}
		view = viewOf(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *cartService) View(ctx context.Context, cartID string) (*CartView, error) {
	return s.mutate(ctx, cartID, func(*shop.Ledger) error { return nil })
}

// Add snapshots the current public product into the cart quantity times.
func (s *cartService) Add(ctx context.Context, cartID string, productID uuid.UUID, quantity int) (*CartView, error) {
	if strings.TrimSpace(cartID) == "" {
		return nil, ErrMissingCartID
	}
	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	snapshot := p.Public()

	return s.mutate(ctx, cartID, func(l *shop.Ledger) error {
		return l.AddQuantity(ctx, snapshot, quantity)
	})
}

func (s *cartService) UpdateQuantity(ctx context.Context, cartID string, productID uuid.UUID, delta int) (*CartView, error) {
	return s.mutate(ctx, cartID, func(l *shop.Ledger) error {
		return l.UpdateQuantity(ctx, productID, delta)
	})
}

func (s *cartService) Remove(ctx context.Context, cartID string, productID uuid.UUID) (*CartView, error) {
	return s.mutate(ctx, cartID, func(l *shop.Ledger) error {
		return l.Remove(ctx, productID)
	})
}

func (s *cartService) Clear(ctx context.Context, cartID string) error {
	return s.WithCart(ctx, cartID, func(l *shop.Ledger) error {
		return l.Clear(ctx)
	})
}
