package shop

import (
	"testing"

	"protonshop/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 { return &v }

func catalogFixture() []model.Product {
	return []model.Product{
		{Name: "Olla Express", Price: 120000, SalePrice: price(99000), Category: "Cocina", Description: "Acero inoxidable"},
		{Name: "Audífonos BT", Price: 80000, Category: "Electrónica", Description: "Cancelación de ruido"},
		{Name: "Mouse Gamer", Price: 60000, SalePrice: price(70000), Category: "Periféricos"},
		{Name: "Cable USB-C", Price: 15000, SalePrice: price(0), Category: "Accesorios", Description: "Carga rápida para audífonos"},
		{Name: "Sartén", Price: 45000, SalePrice: price(30000), Category: "cocina"},
	}
}

func names(ps []model.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestFilterCatalog(t *testing.T) {
	products := catalogFixture()

	tests := []struct {
		name     string
		category string
		query    string
		want     []string
	}{
		{"all", CategoryAll, "", []string{"Olla Express", "Audífonos BT", "Mouse Gamer", "Cable USB-C", "Sartén"}},
		{"offers only", CategoryOffers, "", []string{"Olla Express", "Sartén"}},
		{"exact category is case sensitive", "Cocina", "", []string{"Olla Express"}},
		{"query matches description", CategoryAll, "AUDÍFONOS", []string{"Audífonos BT", "Cable USB-C"}},
		{"query is trimmed", CategoryAll, "  mouse ", []string{"Mouse Gamer"}},
		{"category and query are combined", "Accesorios", "carga", []string{"Cable USB-C"}},
		{"no match", "Electrónica", "olla", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterCatalog(products, tt.category, tt.query)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestFilterCatalogEmptyInput(t *testing.T) {
	got := FilterCatalog(nil, CategoryOffers, "x")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterCatalogIsIdempotent(t *testing.T) {
	products := catalogFixture()
	once := FilterCatalog(products, CategoryOffers, "a")
	twice := FilterCatalog(once, CategoryOffers, "a")
	assert.Equal(t, once, twice)
}

func TestOffersPredicate(t *testing.T) {
	products := catalogFixture()
	got := FilterCatalog(products, CategoryOffers, "")

	var want []model.Product
	for _, p := range products {
		if p.SalePrice != nil && *p.SalePrice != 0 && *p.SalePrice < p.Price {
			want = append(want, p)
		}
	}
	assert.Equal(t, want, got)
}

func TestNormalizeCategories(t *testing.T) {
	assert.Equal(t, "Cocina", NormalizeCategory(" caocina "))
	assert.Equal(t, "Cocina", NormalizeCategory("COCINA"))
	assert.Equal(t, "Hogar", NormalizeCategory("Hogar"))

	got := NormalizeCategories([]string{"cocina", "Hogar", "Caocina", " ", "Hogar", "Cocina"})
	assert.Equal(t, []string{"Cocina", "Hogar"}, got)
}
