package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"protonshop/internal/logger"
	"protonshop/internal/model"
	"protonshop/internal/repository/memory"
	"protonshop/internal/shop"
	"protonshop/internal/ws"
	"protonshop/pkg/validator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMedia struct {
	uploaded map[string]string
}

func (m *fakeMedia) Upload(_ context.Context, filename, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.uploaded == nil {
		m.uploaded = make(map[string]string)
	}
	m.uploaded[filename] = string(data)
	return "/media/" + filename, nil
}

func newInventory(store *memory.Store, pub *recorder) (InventoryService, *fakeMedia) {
	media := &fakeMedia{}
	return NewInventoryService(store.Products(), store.Categories(), media, pub, logger.Discard()), media
}

func TestCreateProductNormalizes(t *testing.T) {
	store := memory.New()
	pub := &recorder{}
	svc, _ := newInventory(store, pub)
	ctx := context.Background()

	p := &model.Product{
		Name:       "  Olla a presión ",
		Price:      120000,
		SalePrice:  ptr(0.0),
		Category:   "caocina",
		Supplier:   ptr("  "),
		ExternalID: ptr(""),
	}
	require.NoError(t, svc.CreateProduct(ctx, p, "admin-1"))

	stored, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Olla a presión", stored.Name)
	assert.Equal(t, "Cocina", stored.Category)
	assert.Nil(t, stored.SalePrice)
	assert.Nil(t, stored.Supplier)
	assert.Nil(t, stored.ExternalID)
	assert.NotNil(t, stored.Gallery)
	assert.Equal(t, "admin-1", stored.CreatedBy)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cocina"}, categories)
	assert.Equal(t, []string{ws.EventProductChanged}, pub.types())
}

func TestCreateProductRejects(t *testing.T) {
	store := memory.New()
	svc, _ := newInventory(store, &recorder{})
	ctx := context.Background()

	var verr *validator.Error
	err := svc.CreateProduct(ctx, &model.Product{Name: " ", Price: 10}, "")
	require.ErrorAs(t, err, &verr)

	err = svc.CreateProduct(ctx, &model.Product{Name: "Negativo", Price: -1}, "")
	require.ErrorAs(t, err, &verr)

	require.NoError(t, svc.CreateProduct(ctx, &model.Product{Name: "A", ExternalID: ptr("sku-1")}, ""))
	err = svc.CreateProduct(ctx, &model.Product{Name: "B", ExternalID: ptr("sku-1")}, "")
	assert.ErrorIs(t, err, ErrDuplicateProduct)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	store := memory.New()
	svc, _ := newInventory(store, &recorder{})
	ctx := context.Background()

	p := &model.Product{Name: "Mouse", Price: 50}
	require.NoError(t, svc.CreateProduct(ctx, p, "admin"))

	updated, err := svc.UpdateProduct(ctx, p.ID, &model.Product{Name: "Mouse Pro", Price: 80, SalePrice: ptr(60.0)}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "Mouse Pro", updated.Name)
	assert.Equal(t, 60.0, updated.EffectivePrice())

	_, err = svc.UpdateProduct(ctx, uuid.New(), &model.Product{Name: "X"}, "admin")
	assert.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID, "admin"))
	_, err = svc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID, "admin"), ErrProductNotFound)
}

func TestListCategoriesFallsBackToDefaults(t *testing.T) {
	svc, _ := newInventory(memory.New(), &recorder{})
	categories, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, shop.DefaultCategories, categories)
}

func TestUploadMedia(t *testing.T) {
	svc, media := newInventory(memory.New(), &recorder{})
	u, err := svc.UploadMedia(context.Background(), "foto.jpg", "image/jpeg", strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "/media/foto.jpg", u)
	assert.Equal(t, "jpeg", media.uploaded["foto.jpg"])
}
