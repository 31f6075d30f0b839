package shop

import (
	"context"
	"encoding/json"
	"sync"

	"protonshop/internal/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// CartStorageKey is the key the serialized cart lives under.
const CartStorageKey = "protonshop_cart"

// CartKey namespaces the cart key per cart session.
func CartKey(cartID string) string {
	if cartID == "" {
		return CartStorageKey
	}
	return CartStorageKey + ":" + cartID
}

// CartLine is one product in the cart. Product is a copy taken when the line
// was created, so later catalog edits do not reprice it.
type CartLine struct {
	Product  model.Product `json:"product"`
	Quantity int           `json:"quantity"`
}

func (l CartLine) LineTotal() float64 {
	return l.Product.EffectivePrice() * float64(l.Quantity)
}

// AddToCart increments the line for p or appends a new line with quantity 1.
func AddToCart(lines []CartLine, p model.Product) []CartLine {
	out := cloneLines(lines)
	for i := range out {
		if out[i].Product.ID == p.ID {
			out[i].Quantity++
			return out
		}
	}
	return append(out, CartLine{Product: p, Quantity: 1})
}

// UpdateCartQuantity adds delta to the line's quantity and drops the line when
// it reaches zero. Unknown ids are a no-op.
func UpdateCartQuantity(lines []CartLine, productID uuid.UUID, delta int) []CartLine {
	out := cloneLines(lines)
	for i := range out {
		if out[i].Product.ID != productID {
			continue
		}
		out[i].Quantity += delta
		if out[i].Quantity <= 0 {
			return append(out[:i], out[i+1:]...)
		}
		return out
	}
	return out
}

func RemoveFromCart(lines []CartLine, productID uuid.UUID) []CartLine {
	out := make([]CartLine, 0, len(lines))
	for _, l := range lines {
		if l.Product.ID != productID {
			out = append(out, l)
		}
	}
	return out
}

// CartTotal sums quantity times effective price over every line.
func CartTotal(lines []CartLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.LineTotal()
	}
	return total
}

// CartCount is the number of units in the cart.
func CartCount(lines []CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func cloneLines(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines), len(lines)+1)
	copy(out, lines)
	return out
}

// storedLine is the persisted shape: product fields flattened plus quantity.
// Legacy carts stored bare products, one entry per unit, without quantity.
type storedLine struct {
	model.Product
	Quantity *int `json:"quantity,omitempty"`
}

// EncodeCart serializes the cart in its persisted shape.
func EncodeCart(lines []CartLine) ([]byte, error) {
	stored := make([]storedLine, 0, len(lines))
	for _, l := range lines {
		q := l.Quantity
		stored = append(stored, storedLine{Product: l.Product, Quantity: &q})
	}
	return json.Marshal(stored)
}

// DecodeCart parses a persisted cart. When any entry lacks a quantity the
// whole list is regrouped by product id, counting units, and migrated is true.
func DecodeCart(data []byte) (lines []CartLine, migrated bool, err error) {
	if len(data) == 0 {
		return []CartLine{}, false, nil
	}

	var stored []storedLine
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, false, errors.Wrap(err, "decode cart")
	}

	for _, s := range stored {
		if s.Quantity == nil {
			migrated = true
			break
		}
	}

	lines = make([]CartLine, 0, len(stored))
	if !migrated {
		for _, s := range stored {
			if *s.Quantity <= 0 {
				continue
			}
			lines = append(lines, CartLine{Product: s.Product, Quantity: *s.Quantity})
		}
		return lines, false, nil
	}

	index := make(map[uuid.UUID]int, len(stored))
	for _, s := range stored {
		qty := 1
		if s.Quantity != nil && *s.Quantity > 0 {
			qty = *s.Quantity
		}
		if i, ok := index[s.Product.ID]; ok {
			lines[i].Quantity += qty
			continue
		}
		index[s.Product.ID] = len(lines)
		lines = append(lines, CartLine{Product: s.Product, Quantity: qty})
	}
	return lines, true, nil
}

// CartStorage is the durable key-value store a Ledger writes through.
type CartStorage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Ledger is a cart persisted on every mutation. A failed write leaves the
// in-memory lines unchanged.
type Ledger struct {
	mu    sync.Mutex
	store CartStorage
	key   string
	lines []CartLine
}

// LoadLedger reads the cart for cartID, migrating legacy entries and writing
// the migrated form back.
func LoadLedger(ctx context.Context, store CartStorage, cartID string) (*Ledger, error) {
	l := &Ledger{store: store, key: CartKey(cartID), lines: []CartLine{}}

	data, ok, err := store.Get(ctx, l.key)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if !ok {
		return l, nil
	}

	lines, migrated, err := DecodeCart(data)
	if err != nil {
		return nil, err
	}
	if migrated {
		if err := l.persist(ctx, lines); err != nil {
			return nil, err
		}
	}
	l.lines = lines
	return l, nil
}

func (l *Ledger) Key() string {
	return l.key
}

// Lines returns a copy of the current lines.
func (l *Ledger) Lines() []CartLine {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneLines(l.lines)
}

func (l *Ledger) Add(ctx context.Context, p model.Product) error {
	return l.AddQuantity(ctx, p, 1)
}

// AddQuantity adds p quantity times with a single write. Quantities below 1
// count as 1.
func (l *Ledger) AddQuantity(ctx context.Context, p model.Product, quantity int) error {
	return l.apply(ctx, func(lines []CartLine) []CartLine {
		next := AddToCart(lines, p)
		if quantity > 1 {
			next = UpdateCartQuantity(next, p.ID, quantity-1)
		}
		return next
	})
}

func (l *Ledger) UpdateQuantity(ctx context.Context, productID uuid.UUID, delta int) error {
	return l.apply(ctx, func(lines []CartLine) []CartLine { return UpdateCartQuantity(lines, productID, delta) })
}

func (l *Ledger) Remove(ctx context.Context, productID uuid.UUID) error {
	return l.apply(ctx, func(lines []CartLine) []CartLine { return RemoveFromCart(lines, productID) })
}

// Clear empties the cart; called after an order is stored.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.store.Delete(ctx, l.key); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	l.lines = []CartLine{}
	return nil
}

func (l *Ledger) Total() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return CartTotal(l.lines)
}

func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return CartCount(l.lines)
}

func (l *Ledger) apply(ctx context.Context, fn func([]CartLine) []CartLine) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := fn(l.lines)
	if err := l.persist(ctx, next); err != nil {
		return err
	}
	l.lines = next
	return nil
}

func (l *Ledger) persist(ctx context.Context, lines []CartLine) error {
	data, err := EncodeCart(lines)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := l.store.Set(ctx, l.key, data); err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}
