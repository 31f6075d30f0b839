package shop

import (
	"strings"

	"protonshop/internal/model"
)

// Pseudo-categories understood by the storefront.
const (
	CategoryAll           = "Todos"
	CategoryOffers        = "Ofertas Especiales"
	CategoryUncategorized = "Sin Categoría"
)

// DefaultCategories is shown when the categories table is still empty.
var DefaultCategories = []string{"Electrónica", "Accesorios", "Periféricos"}

// FilterCatalog returns the products visible under the selected category and
// search query. Input order is preserved.
func FilterCatalog(products []model.Product, activeCategory, searchQuery string) []model.Product {
	query := strings.ToLower(strings.TrimSpace(searchQuery))

	visible := make([]model.Product, 0, len(products))
	for _, p := range products {
		if !matchesCategory(p, activeCategory) {
			continue
		}
		if !matchesQuery(p, query) {
			continue
		}
		visible = append(visible, p)
	}
	return visible
}

func matchesCategory(p model.Product, activeCategory string) bool {
	switch activeCategory {
	case CategoryAll:
		return true
	case CategoryOffers:
		return p.OnSale()
	default:
		return p.Category == activeCategory
	}
}

func matchesQuery(p model.Product, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query)
}

// NormalizeCategory trims the name and folds known misspellings of "Cocina".
func NormalizeCategory(name string) string {
	name = strings.TrimSpace(name)
	switch strings.ToLower(name) {
	case "caocina", "cocina":
		return "Cocina"
	}
	return name
}

// NormalizeCategories normalizes every name and drops blanks and duplicates,
// keeping first-seen order.
func NormalizeCategories(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = NormalizeCategory(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
