package repository

import (
	"context"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository is a read-only catalog lookup used for display-name
// enrichment. Catalog writes happen in an external module.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("barcode = ? AND active = true", barcode).
		First(&p).Error
	return &p, err
}
