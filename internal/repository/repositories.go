package repository

import (
	"protonshop/internal/model"

	"gorm.io/gorm"
)

// Repositories bundles one Store Backend.
type Repositories struct {
	Products   ProductRepository
	Categories CategoryRepository
	Orders     OrderRepository
	Profiles   ProfileRepository
	Visits     VisitRepository
	Users      UserRepository
}

func NewGormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Products:   NewProductRepo(db),
		Categories: NewCategoryRepo(db),
		Orders:     NewOrderRepo(db),
		Profiles:   NewProfileRepo(db),
		Visits:     NewVisitRepo(db),
		Users:      NewUserRepo(db),
	}
}

// Models lists every table for AutoMigrate.
func Models() []any {
	return []any{
		&model.User{},
		&model.Product{},
		&model.Category{},
		&model.Order{},
		&model.Profile{},
		&model.Visit{},
	}
}
