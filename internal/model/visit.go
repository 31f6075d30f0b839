package model

import "time"

// Visit is one storefront page load; only the row count matters.
type Visit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
}
