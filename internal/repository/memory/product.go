package memory

import (
	"context"
	"sort"

	"protonshop/internal/model"
	"protonshop/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type productRepo struct {
	s *Store
}

func (s *Store) Products() repository.ProductRepository {
	return &productRepo{s: s}
}

func cloneProduct(p model.Product) model.Product {
	if p.Gallery != nil {
		p.Gallery = append(make([]string, 0, len(p.Gallery)), p.Gallery...)
	}
	if p.SalePrice != nil {
		v := *p.SalePrice
		p.SalePrice = &v
	}
	if p.Supplier != nil {
		v := *p.Supplier
		p.Supplier = &v
	}
	if p.ExternalID != nil {
		v := *p.ExternalID
		p.ExternalID = &v
	}
	return p
}

// externalIDTaken must be called with the lock held.
func (r *productRepo) externalIDTaken(p *model.Product) bool {
	if p.ExternalID == nil {
		return false
	}
	for id, row := range r.s.products {
		if id == p.ID || row.product.DeletedAt.Valid {
			continue
		}
		if row.product.ExternalID != nil && *row.product.ExternalID == *p.ExternalID {
			return true
		}
	}
	return false
}

func (r *productRepo) Create(_ context.Context, product *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if _, ok := r.s.products[product.ID]; ok {
		return errors.Wrap(repository.ErrDuplicate, "create product")
	}
	if r.externalIDTaken(product) {
		return errors.Wrapf(repository.ErrDuplicate, "create product: external_id %q", *product.ExternalID)
	}

	now := r.s.now()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.s.products[product.ID] = &productRow{seq: r.s.nextSeq(), product: cloneProduct(*product)}
	return nil
}

func (r *productRepo) FindAll(_ context.Context) ([]model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]*productRow, 0, len(r.s.products))
	for _, row := range r.s.products {
		if !row.product.DeletedAt.Valid {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].product.CreatedAt, rows[j].product.CreatedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return rows[i].seq > rows[j].seq
	})

	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, cloneProduct(row.product))
	}
	return products, nil
}

func (r *productRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.products[id]
	if !ok || row.product.DeletedAt.Valid {
		return nil, errors.Wrap(repository.ErrNotFound, "find product")
	}
	p := cloneProduct(row.product)
	return &p, nil
}

func (r *productRepo) FindByExternalID(_ context.Context, externalID string) (*model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, row := range r.s.products {
		if row.product.DeletedAt.Valid || row.product.ExternalID == nil {
			continue
		}
		if *row.product.ExternalID == externalID {
			p := cloneProduct(row.product)
			return &p, nil
		}
	}
	return nil, errors.Wrap(repository.ErrNotFound, "find product by external id")
}

func (r *productRepo) Update(_ context.Context, product *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.products[product.ID]
	if !ok || row.product.DeletedAt.Valid {
		return errors.Wrap(repository.ErrNotFound, "update product")
	}
	if r.externalIDTaken(product) {
		return errors.Wrapf(repository.ErrDuplicate, "update product: external_id %q", *product.ExternalID)
	}

	product.CreatedAt = row.product.CreatedAt
	product.CreatedBy = row.product.CreatedBy
	product.UpdatedAt = r.s.now()
	row.product = cloneProduct(*product)
	return nil
}

func (r *productRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.products[id]
	if !ok || row.product.DeletedAt.Valid {
		return errors.Wrap(repository.ErrNotFound, "delete product")
	}
	row.product.DeletedAt.Time = r.s.now()
	row.product.DeletedAt.Valid = true
	return nil
}
