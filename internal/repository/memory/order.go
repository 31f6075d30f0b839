package memory

import (
	"context"
	"sort"

	"protonshop/internal/model"
	"protonshop/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type orderRepo struct {
	s *Store
}

func (s *Store) Orders() repository.OrderRepository {
	return &orderRepo{s: s}
}

func cloneOrder(o model.Order) model.Order {
	if o.Items != nil {
		o.Items = append([]model.OrderItem(nil), o.Items...)
	}
	if o.UserID != nil {
		v := *o.UserID
		o.UserID = &v
	}
	return o
}

func (r *orderRepo) Create(_ context.Context, order *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if _, ok := r.s.orders[order.ID]; ok {
		return errors.Wrap(repository.ErrDuplicate, "create order")
	}
	now := r.s.now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	r.s.orders[order.ID] = &orderRow{seq: r.s.nextSeq(), order: cloneOrder(*order)}
	return nil
}

func (r *orderRepo) sorted(filter func(model.Order) bool, ascending bool) []model.Order {
	rows := make([]*orderRow, 0, len(r.s.orders))
	for _, row := range r.s.orders {
		if filter == nil || filter(row.order) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.order.CreatedAt.Equal(b.order.CreatedAt) {
			if ascending {
				return a.order.CreatedAt.Before(b.order.CreatedAt)
			}
			return a.order.CreatedAt.After(b.order.CreatedAt)
		}
		if ascending {
			return a.seq < b.seq
		}
		return a.seq > b.seq
	})

	orders := make([]model.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, cloneOrder(row.order))
	}
	return orders
}

func (r *orderRepo) FindAll(_ context.Context, ascending bool) ([]model.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(nil, ascending), nil
}

func (r *orderRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]model.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(func(o model.Order) bool {
		return o.UserID != nil && *o.UserID == userID
	}, false), nil
}

func (r *orderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.orders[id]
	if !ok {
		return nil, errors.Wrap(repository.ErrNotFound, "find order")
	}
	o := cloneOrder(row.order)
	return &o, nil
}

func (r *orderRepo) FindItems(ctx context.Context, id uuid.UUID) ([]model.OrderItem, error) {
	o, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(repository.ErrNotFound, "find order items")
	}
	return o.Items, nil
}

func (r *orderRepo) UpdateFields(_ context.Context, id uuid.UUID, update repository.OrderUpdate) error {
	if update.Empty() {
		return nil
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.orders[id]
	if !ok {
		return errors.Wrap(repository.ErrNotFound, "update order")
	}
	update.Apply(&row.order)
	row.order.UpdatedAt = r.s.now()
	return nil
}

func (r *orderRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[id]; !ok {
		return errors.Wrap(repository.ErrNotFound, "delete order")
	}
	delete(r.s.orders, id)
	return nil
}
