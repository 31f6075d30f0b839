package shop

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"protonshop/internal/model"

	"github.com/pkg/errors"
)

var ErrInvalidShippingCost = errors.New("shipping cost must be a non-negative number")

// Subtotal sums price times quantity; a missing quantity counts as one.
func Subtotal(items []model.OrderItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.LineTotal()
	}
	return sum
}

// ComputeOrderTotal is the only way an order total is derived.
func ComputeOrderTotal(items []model.OrderItem, shippingCost float64) float64 {
	return Subtotal(items) + shippingCost
}

// ParseShippingCost accepts JSON numbers and numeric strings.
func ParseShippingCost(v any) (float64, error) {
	var cost float64
	switch t := v.(type) {
	case float64:
		cost = t
	case float32:
		cost = float64(t)
	case int:
		cost = float64(t)
	case int64:
		cost = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, ErrInvalidShippingCost
		}
		cost = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, ErrInvalidShippingCost
		}
		cost = f
	default:
		return 0, ErrInvalidShippingCost
	}
	return cost, ValidateShippingCost(cost)
}

func ValidateShippingCost(cost float64) error {
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 {
		return ErrInvalidShippingCost
	}
	return nil
}

// LineItemsFromCart snapshots cart lines into order items charged at the
// effective price.
func LineItemsFromCart(lines []CartLine) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, model.OrderItem{
			ProductID: l.Product.ID.String(),
			Name:      l.Product.Name,
			Price:     l.Product.EffectivePrice(),
			Quantity:  l.Quantity,
			Image:     l.Product.Image,
		})
	}
	return items
}

const (
	orderCodePrefix   = "ORD-"
	orderCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	orderCodeLength   = 6
)

// NewOrderCode returns ORD- plus six characters that cannot be misread
// (no I, O, 0 or 1). Codes are not checked for uniqueness.
func NewOrderCode() string {
	var b strings.Builder
	b.Grow(len(orderCodePrefix) + orderCodeLength)
	b.WriteString(orderCodePrefix)
	for range orderCodeLength {
		b.WriteByte(orderCodeAlphabet[rand.IntN(len(orderCodeAlphabet))])
	}
	return b.String()
}
