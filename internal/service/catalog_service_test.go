package service

import (
	"context"
	"testing"

	"protonshop/internal/logger"
	"protonshop/internal/model"
	"protonshop/internal/repository/memory"
	"protonshop/internal/shop"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreData(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	seedProduct(t, store, model.Product{Name: "Olla", Price: 90, CostPrice: 40, Category: "caocina", Supplier: ptr("Imusa")})
	seedProduct(t, store, model.Product{Name: "Mouse", Price: 50, SalePrice: ptr(30.0), Category: "Periféricos"})
	require.NoError(t, store.Categories().UpsertIgnore(ctx, "Periféricos"))
	require.NoError(t, store.Categories().UpsertIgnore(ctx, "caocina"))

	svc := NewCatalogService(store.Products(), store.Categories(), store.Visits(), logger.Discard())

	data, err := svc.StoreData(ctx, shop.CategoryAll, "")
	require.NoError(t, err)
	require.Len(t, data.Products, 2)
	for _, p := range data.Products {
		assert.Zero(t, p.CostPrice)
		assert.Nil(t, p.Supplier)
		assert.NotNil(t, p.Media)
	}
	assert.ElementsMatch(t, []string{"Cocina", "Periféricos"}, data.Categories)

	data, err = svc.StoreData(ctx, "Cocina", "")
	require.NoError(t, err)
	require.Len(t, data.Products, 1)
	assert.Equal(t, "Olla", data.Products[0].Name)

	data, err = svc.StoreData(ctx, shop.CategoryOffers, "")
	require.NoError(t, err)
	require.Len(t, data.Products, 1)
	assert.Equal(t, "Mouse", data.Products[0].Name)

	data, err = svc.StoreData(ctx, shop.CategoryAll, "mou")
	require.NoError(t, err)
	require.Len(t, data.Products, 1)
}

func TestStoreDataCategoryFallback(t *testing.T) {
	store := memory.New()
	seedProduct(t, store, model.Product{Name: "Mouse", Price: 50})

	svc := NewCatalogService(store.Products(), brokenCategories{}, store.Visits(), logger.Discard())
	data, err := svc.StoreData(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, data.Products, 1)
	assert.Equal(t, shop.DefaultCategories, data.Categories)
}

func TestCatalogGetProductAndVisits(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	p := seedProduct(t, store, model.Product{
		Name: "Mouse", Price: 50, CostPrice: 20,
		Image:   "https://cdn.example.com/mouse.jpg",
		Gallery: []string{"https://cdn.example.com/mouse.webm?x=1"},
	})

	svc := NewCatalogService(store.Products(), store.Categories(), store.Visits(), logger.Discard())
	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CostPrice)
	assert.Equal(t, []model.MediaItem{
		{URL: "https://cdn.example.com/mouse.jpg", Kind: model.MediaImage},
		{URL: "https://cdn.example.com/mouse.webm?x=1", Kind: model.MediaVideo},
	}, got.Media)

	_, err = svc.GetProduct(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)

	svc.RecordVisit(ctx)
	svc.RecordVisit(ctx)
	n, err := store.Visits().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	broken := NewCatalogService(store.Products(), store.Categories(), brokenVisits{}, logger.Discard())
	broken.RecordVisit(ctx)
}
