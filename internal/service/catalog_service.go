package service

import (
	"context"
	"log/slog"
	"strings"

	"protonshop/internal/model"
	"protonshop/internal/repository"
	"protonshop/internal/shop"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// StoreProduct is the shopper-facing product with its media tagged for the
// gallery viewer.
type StoreProduct struct {
	model.Product
	Media []model.MediaItem `json:"media"`
}

func storeProduct(p model.Product) StoreProduct {
	public := p.Public()
	public.Category = shop.NormalizeCategory(public.Category)
	return StoreProduct{Product: public, Media: public.Media()}
}

// StoreData is what the storefront needs on first paint.
type StoreData struct {
	Products   []StoreProduct `json:"products"`
	Categories []string       `json:"categories"`
}

type CatalogService interface {
	StoreData(ctx context.Context, category, query string) (*StoreData, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*StoreProduct, error)
	RecordVisit(ctx context.Context)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	visitRepo    repository.VisitRepository
	log          *slog.Logger
}

func NewCatalogService(pRepo repository.ProductRepository, cRepo repository.CategoryRepository, vRepo repository.VisitRepository, log *slog.Logger) CatalogService {
	return &catalogService{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		visitRepo:    vRepo,
		log:          log,
	}
}

// StoreData loads the public catalog filtered by category and search text.
// An empty category means all of them. A products failure fails the call; a
// categories failure falls back to the starter categories.
func (s *catalogService) StoreData(ctx context.Context, category, query string) (*StoreData, error) {
	if strings.TrimSpace(category) == "" {
		category = shop.CategoryAll
	}
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load store products")
	}

	public := make([]model.Product, 0, len(products))
	for _, p := range products {
		p.Category = shop.NormalizeCategory(p.Category)
		public = append(public, p.Public())
	}

	filtered := shop.FilterCatalog(public, category, query)
	out := make([]StoreProduct, 0, len(filtered))
	for _, p := range filtered {
		out = append(out, storeProduct(p))
	}
	return &StoreData{
		Products:   out,
		Categories: s.categories(ctx),
	}, nil
}

func (s *catalogService) categories(ctx context.Context) []string {
	rows, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "categories unavailable, using defaults", slog.String("error", err.Error()))
		return append([]string(nil), shop.DefaultCategories...)
	}
	names := make([]string, 0, len(rows))
	for _, c := range rows {
		names = append(names, c.Name)
	}
	names = shop.NormalizeCategories(names)
	if len(names) == 0 {
		return append([]string(nil), shop.DefaultCategories...)
	}
	return names
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*StoreProduct, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	out := storeProduct(*p)
	return &out, nil
}

// RecordVisit never fails the page load.
func (s *catalogService) RecordVisit(ctx context.Context) {
	if err := s.visitRepo.Record(ctx); err != nil {
		s.log.WarnContext(ctx, "visit not recorded", slog.String("error", err.Error()))
	}
}
