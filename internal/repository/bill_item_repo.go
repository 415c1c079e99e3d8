package repository

import (
	"context"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BillItemRepository is the data access contract for bill line items.
type BillItemRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, item *model.BillItem) error
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.BillItem, error)
	FindByBillAndProductTx(ctx context.Context, tx *gorm.DB, billID, productID uuid.UUID) (*model.BillItem, error)
	ListByBillTx(ctx context.Context, tx *gorm.DB, billID uuid.UUID) ([]model.BillItem, error)
	// AddQtyTx merges a re-added product into its existing row.
	AddQtyTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error
	UpdateQtyTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error
	SaveTx(ctx context.Context, tx *gorm.DB, item *model.BillItem) error
	DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteByBillTx(ctx context.Context, tx *gorm.DB, billID uuid.UUID) error
	DB() *gorm.DB
}

type billItemRepo struct{ db *gorm.DB }

func NewBillItemRepository(db *gorm.DB) BillItemRepository { return &billItemRepo{db: db} }

func (r *billItemRepo) DB() *gorm.DB { return r.db }

func (r *billItemRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *billItemRepo) CreateTx(ctx context.Context, tx *gorm.DB, item *model.BillItem) error {
	return r.conn(tx).WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *billItemRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.BillItem, error) {
	var item model.BillItem
	err := r.conn(tx).WithContext(ctx).First(&item, "id = ?", id).Error
	return &item, err
}

func (r *billItemRepo) FindByBillAndProductTx(ctx context.Context, tx *gorm.DB, billID, productID uuid.UUID) (*model.BillItem, error) {
	var item model.BillItem
	err := r.conn(tx).WithContext(ctx).
		Where("bill_id = ? AND product_id = ?", billID, productID).
		First(&item).Error
	return &item, err
}

func (r *billItemRepo) ListByBillTx(ctx context.Context, tx *gorm.DB, billID uuid.UUID) ([]model.BillItem, error) {
	var items []model.BillItem
	err := r.conn(tx).WithContext(ctx).
		Where("bill_id = ?", billID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *billItemRepo) AddQtyTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error {
	return r.conn(tx).WithContext(ctx).Model(&model.BillItem{}).
		Where("id = ?", id).
		Update("qty", gorm.Expr("qty + ?", delta)).Error
}

func (r *billItemRepo) UpdateQtyTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error {
	res := r.conn(tx).WithContext(ctx).Model(&model.BillItem{}).
		Where("id = ?", id).
		Update("qty", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *billItemRepo) SaveTx(ctx context.Context, tx *gorm.DB, item *model.BillItem) error {
	return r.conn(tx).WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

func (r *billItemRepo) DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).Delete(&model.BillItem{}, "id = ?", id).Error
}

func (r *billItemRepo) DeleteByBillTx(ctx context.Context, tx *gorm.DB, billID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).Delete(&model.BillItem{}, "bill_id = ?", billID).Error
}
