package model

import (
	"net/url"
	"path"
	"strings"

	"github.com/lib/pq"
)

// Product is a catalog entry. CostPrice is private to the admin side.
type Product struct {
	BaseModel
	Name        string         `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Price       float64        `gorm:"type:numeric;not null;default:0" json:"price" validate:"gte=0"`
	CostPrice   float64        `gorm:"type:numeric;default:0" json:"cost_price,omitempty" validate:"gte=0"`
	SalePrice   *float64       `gorm:"type:numeric" json:"sale_price" validate:"omitempty,gt=0"`
	Category    string         `gorm:"type:varchar(120);index" json:"category"`
	Image       string         `gorm:"type:text" json:"image"`
	Gallery     pq.StringArray `gorm:"type:text[]" json:"gallery"`
	Description string         `gorm:"type:text" json:"description"`
	Stock       int            `gorm:"default:0" json:"stock" validate:"gte=0"`
	Supplier    *string        `gorm:"type:varchar(255)" json:"supplier,omitempty"`
	ExternalID  *string        `gorm:"type:varchar(100);uniqueIndex" json:"external_id,omitempty"`
}

// OnSale reports whether the promotional price undercuts the list price.
func (p Product) OnSale() bool {
	return p.SalePrice != nil && *p.SalePrice != 0 && *p.SalePrice < p.Price
}

// EffectivePrice is the price a shopper is charged.
func (p Product) EffectivePrice() float64 {
	if p.OnSale() {
		return *p.SalePrice
	}
	return p.Price
}

// Public strips the fields shoppers must never see.
func (p Product) Public() Product {
	p.CostPrice = 0
	p.Supplier = nil
	p.CreatedBy = ""
	p.UpdatedBy = ""
	return p
}

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

type MediaItem struct {
	URL  string    `json:"url"`
	Kind MediaKind `json:"kind"`
}

// Media lists the main image followed by the gallery, tagged by kind.
func (p Product) Media() []MediaItem {
	items := make([]MediaItem, 0, len(p.Gallery)+1)
	if p.Image != "" {
		items = append(items, MediaItem{URL: p.Image, Kind: mediaKindOf(p.Image)})
	}
	for _, u := range p.Gallery {
		if u == "" {
			continue
		}
		items = append(items, MediaItem{URL: u, Kind: mediaKindOf(u)})
	}
	return items
}

func mediaKindOf(u string) MediaKind {
	if IsVideoURL(u) {
		return MediaVideo
	}
	return MediaImage
}

// IsVideoURL sniffs the file extension; .mp4 and .webm render as video.
func IsVideoURL(raw string) bool {
	p := raw
	if parsed, err := url.Parse(raw); err == nil && parsed.Path != "" {
		p = parsed.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".mp4", ".webm":
		return true
	}
	return false
}
