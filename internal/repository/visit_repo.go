package repository

import (
	"context"

	"protonshop/internal/model"

	"gorm.io/gorm"
)

type VisitRepository interface {
	Record(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

type visitRepo struct {
	db *gorm.DB
}

func NewVisitRepo(db *gorm.DB) VisitRepository {
	return &visitRepo{db: db}
}

func (r *visitRepo) Record(ctx context.Context) error {
	return translate(r.db.WithContext(ctx).Create(&model.Visit{}).Error, "record visit")
}

func (r *visitRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Visit{}).Count(&n).Error
	return n, translate(err, "count visits")
}
