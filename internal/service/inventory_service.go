package service

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"protonshop/internal/model"
	"protonshop/internal/repository"
	"protonshop/internal/shop"
	"protonshop/internal/ws"
	"protonshop/pkg/validator"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MediaStore receives uploaded product images and videos.
type MediaStore interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

type InventoryService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	CreateProduct(ctx context.Context, req *model.Product, actorID string) error
	UpdateProduct(ctx context.Context, id uuid.UUID, req *model.Product, actorID string) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, actorID string) error
	ListCategories(ctx context.Context) ([]string, error)
	UploadMedia(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

type inventoryService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	media        MediaStore
	publisher    ws.Publisher
	log          *slog.Logger
}

func NewInventoryService(pRepo repository.ProductRepository, cRepo repository.CategoryRepository, media MediaStore, publisher ws.Publisher, log *slog.Logger) InventoryService {
	return &inventoryService{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		media:        media,
		publisher:    publisher,
		log:          log,
	}
}

// prepare normalizes a product before it is written.
func prepare(p *model.Product) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = shop.NormalizeCategory(p.Category)
	p.Supplier = blankToNil(p.Supplier)
	p.ExternalID = blankToNil(p.ExternalID)
	if p.SalePrice != nil && *p.SalePrice <= 0 {
		p.SalePrice = nil
	}
	if p.Gallery == nil {
		p.Gallery = []string{}
	}
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *inventoryService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return p, nil
}

func (s *inventoryService) CreateProduct(ctx context.Context, req *model.Product, actorID string) error {
	prepare(req)
	if err := validator.Validate(req); err != nil {
		return err
	}

	req.ID = uuid.Nil
	req.CreatedBy = actorID
	req.UpdatedBy = actorID

	if err := s.productRepo.Create(ctx, req); err != nil {
		return duplicate(err)
	}
	s.ensureCategory(ctx, req.Category)

	s.log.InfoContext(ctx, "product.created",
		slog.String("product_id", req.ID.String()), slog.String("name", req.Name), slog.String("actor", actorID))
	s.publisher.Publish(ws.EventProductChanged, productEvent("product_created", req))
	return nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, req *model.Product, actorID string) (*model.Product, error) {
	prepare(req)
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	req.ID = id
	req.UpdatedBy = actorID
	if err := s.productRepo.Update(ctx, req); err != nil {
		return nil, duplicate(notFound(err, ErrProductNotFound))
	}
	s.ensureCategory(ctx, req.Category)

	updated, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}

	s.log.InfoContext(ctx, "product.updated",
		slog.String("product_id", id.String()), slog.String("actor", actorID))
	s.publisher.Publish(ws.EventProductChanged, productEvent("product_updated", updated))
	return updated, nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, id uuid.UUID, actorID string) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return notFound(err, ErrProductNotFound)
	}
	s.log.InfoContext(ctx, "product.deleted",
		slog.String("product_id", id.String()), slog.String("actor", actorID))
	s.publisher.Publish(ws.EventProductChanged, map[string]any{"action": "product_deleted", "id": id})
	return nil
}

// ListCategories returns normalized category names, or the starter set when
// none exist yet.
func (s *inventoryService) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	names = shop.NormalizeCategories(names)
	if len(names) == 0 {
		return append([]string(nil), shop.DefaultCategories...), nil
	}
	return names, nil
}

func (s *inventoryService) UploadMedia(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	u, err := s.media.Upload(ctx, filename, contentType, r)
	if err != nil {
		return "", errors.Wrap(err, "upload media")
	}
	s.log.InfoContext(ctx, "media.uploaded", slog.String("url", u), slog.String("content_type", contentType))
	return u, nil
}

// ensureCategory upserts the category; the product is already saved, so a
// failure here is only logged.
func (s *inventoryService) ensureCategory(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.categoryRepo.UpsertIgnore(ctx, name); err != nil {
		s.log.WarnContext(ctx, "category upsert failed",
			slog.String("category", name), slog.String("error", err.Error()))
	}
}

func productEvent(action string, p *model.Product) map[string]any {
	return map[string]any{
		"action": action,
		"product": map[string]any{
			"id":       p.ID,
			"name":     p.Name,
			"price":    p.Price,
			"category": p.Category,
			"stock":    p.Stock,
		},
	}
}

func duplicate(err error) error {
	if repository.IsUniqueViolation(err) {
		return ErrDuplicateProduct
	}
	return err
}
