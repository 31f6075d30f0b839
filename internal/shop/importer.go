package shop

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"protonshop/internal/model"

	"github.com/pkg/errors"
)

// UnknownImportName labels failed records that resolved no name.
const UnknownImportName = "Item desconocido"

var ErrEmptyImportPayload = errors.New("import payload is empty")

// Accepted source keys per canonical field, tried in order.
var (
	nameKeys        = []string{"name", "title", "nombre", "titulo"}
	priceKeys       = []string{"price", "valor", "precio", "precio_sugerido", "sugerido"}
	costPriceKeys   = []string{"cost_price", "costo", "precio_proveedor", "proveedor_precio"}
	salePriceKeys   = []string{"sale_price", "salePrice", "precio_oferta"}
	categoryKeys    = []string{"category", "categoria"}
	imageKeys       = []string{"image", "imagen", "img"}
	descriptionKeys = []string{"description", "descripcion", "desc"}
	stockKeys       = []string{"stock", "cantidad"}
	galleryKeys     = []string{"gallery", "galeria"}
	supplierKeys    = []string{"supplier", "proveedor"}
	externalIDKeys  = []string{"external_id", "id_externo", "sku", "id"}

	// Nested attribute maps consulted for category and SKU.
	attributeMapKeys = []string{"attributes", "atributos", "specs"}
	nestedSKUKeys    = []string{"sku", "external_id", "id_externo"}
)

// NormalizeImportRecord maps a heterogeneous JSON record onto the product
// shape. The first present, non-empty value per field wins.
func NormalizeImportRecord(raw map[string]any) model.Product {
	p := model.Product{
		Name:        toString(firstValue(raw, nameKeys)),
		Price:       toAmount(firstValue(raw, priceKeys)),
		CostPrice:   toAmount(firstValue(raw, costPriceKeys)),
		Image:       toString(firstValue(raw, imageKeys)),
		Description: toString(firstValue(raw, descriptionKeys)),
		Stock:       int(toAmount(firstValue(raw, stockKeys))),
		Gallery:     toStrings(firstValue(raw, galleryKeys)),
	}

	if sale := toAmount(firstValue(raw, salePriceKeys)); sale > 0 {
		p.SalePrice = &sale
	}

	category := firstValue(raw, categoryKeys)
	if category == nil {
		category = nestedValue(raw, categoryKeys)
	}
	p.Category = NormalizeCategory(toString(category))

	externalID := firstValue(raw, externalIDKeys)
	if externalID == nil {
		externalID = nestedValue(raw, nestedSKUKeys)
	}
	p.ExternalID = nullable(toString(externalID))
	p.Supplier = nullable(toString(firstValue(raw, supplierKeys)))

	return p
}

// ImportPayload is either a single record (form prefill) or a batch.
type ImportPayload struct {
	Single  *model.Product
	Records []model.Product
}

func (p ImportPayload) IsBatch() bool {
	return p.Single == nil
}

// ParseImportPayload decodes a JSON object or array of objects and normalizes
// every record.
func ParseImportPayload(data []byte) (ImportPayload, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ImportPayload{}, ErrEmptyImportPayload
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if data[0] == '[' {
		var raws []map[string]any
		if err := dec.Decode(&raws); err != nil {
			return ImportPayload{}, errors.Wrap(err, "decode import batch")
		}
		records := make([]model.Product, 0, len(raws))
		for _, raw := range raws {
			records = append(records, NormalizeImportRecord(raw))
		}
		return ImportPayload{Records: records}, nil
	}

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return ImportPayload{}, errors.Wrap(err, "decode import record")
	}
	single := NormalizeImportRecord(raw)
	return ImportPayload{Single: &single}, nil
}

func firstValue(raw map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && !isEmpty(v) {
			return v
		}
	}
	return nil
}

func nestedValue(raw map[string]any, keys []string) any {
	for _, mk := range attributeMapKeys {
		nested, ok := raw[mk].(map[string]any)
		if !ok {
			continue
		}
		if v := firstValue(nested, keys); v != nil {
			return v
		}
	}
	return nil
}

// isEmpty mirrors falsy source values: nil, blank strings, zero and empty
// lists fall through to the next synonym.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	case float64:
		return t == 0
	case int:
		return t == 0
	case bool:
		return !t
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// toAmount takes numbers as-is. Strings lose every non-digit before parsing,
// so "$550.000" is 550000; decimal separators are discarded on purpose.
func toAmount(v any) float64 {
	switch t := v.(type) {
	case json.Number:
		f, _ := t.Float64()
		return f
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		return digitsOnly(t)
	}
	return 0
}

func digitsOnly(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return f
}

func toStrings(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		out := make([]string, 0, len(t))
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
