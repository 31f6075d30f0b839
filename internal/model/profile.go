package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the shipping details used to prefill checkout.
type Profile struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	FullName     string    `gorm:"type:varchar(255)" json:"full_name" validate:"max=255"`
	Phone        string    `gorm:"type:varchar(40)" json:"phone" validate:"max=40"`
	Address      string    `gorm:"type:text" json:"address"`
	Municipio    string    `gorm:"type:varchar(120)" json:"municipio"`
	Departamento string    `gorm:"type:varchar(120)" json:"departamento"`
	UpdatedAt    time.Time `json:"updated_at"`
}
