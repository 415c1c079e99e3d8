package repository

import (
	"context"
	"time"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HeldBillRepository is the data access contract for park tickets.
type HeldBillRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, h *model.HeldBill) error
	// FindForSellerTx locates a live (status=held) ticket owned by the
	// seller and locks it for the retrieve transaction.
	FindForSellerTx(ctx context.Context, tx *gorm.DB, id, sellerID uuid.UUID) (*model.HeldBill, error)
	DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.HeldBill, error)
	// ListExpiredTx returns tickets (any seller) held before the cutoff,
	// locked for the janitor sweep.
	ListExpiredTx(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]model.HeldBill, error)
	DB() *gorm.DB
}

type heldBillRepo struct{ db *gorm.DB }

func NewHeldBillRepository(db *gorm.DB) HeldBillRepository { return &heldBillRepo{db: db} }

func (r *heldBillRepo) DB() *gorm.DB { return r.db }

func (r *heldBillRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *heldBillRepo) CreateTx(ctx context.Context, tx *gorm.DB, h *model.HeldBill) error {
	return r.conn(tx).WithContext(ctx).Omit(clause.Associations).Create(h).Error
}

func (r *heldBillRepo) FindForSellerTx(ctx context.Context, tx *gorm.DB, id, sellerID uuid.UUID) (*model.HeldBill, error) {
	var h model.HeldBill
	err := r.conn(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND seller_id = ? AND status = ?", id, sellerID, model.HeldBillStatusHeld).
		First(&h).Error
	return &h, err
}

func (r *heldBillRepo) DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).Delete(&model.HeldBill{}, "id = ?", id).Error
}

func (r *heldBillRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.HeldBill, error) {
	var holds []model.HeldBill
	err := r.db.WithContext(ctx).Preload("Bill.Items.Product").
		Where("seller_id = ? AND status = ?", sellerID, model.HeldBillStatusHeld).
		Order("held_at DESC").
		Find(&holds).Error
	return holds, err
}

func (r *heldBillRepo) ListExpiredTx(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]model.HeldBill, error) {
	var holds []model.HeldBill
	err := r.conn(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ? AND held_at < ?", model.HeldBillStatusHeld, cutoff).
		Find(&holds).Error
	return holds, err
}
