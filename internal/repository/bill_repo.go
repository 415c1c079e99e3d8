package repository

import (
	"context"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BillRepository is the data access contract for bills. Methods taking a
// tx parameter run inside a caller-owned transaction; passing nil falls back
// to the repository's own connection (used by unit-test stubs).
type BillRepository interface {
	Create(ctx context.Context, tx *gorm.DB, b *model.Bill) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error)
	FindOpenBySeller(ctx context.Context, sellerID uuid.UUID) (*model.Bill, error)
	// FindOpenBySellerTx locks the seller's open bill FOR UPDATE — the
	// per-seller mutual-exclusion scope for hold/retrieve/checkout.
	FindOpenBySellerTx(ctx context.Context, tx *gorm.DB, sellerID uuid.UUID) (*model.Bill, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Bill, error)
	// UpdateStatusTx is a guarded flip: it only succeeds when the bill is
	// still in the expected `from` status, returning gorm.ErrRecordNotFound
	// when a concurrent request won the race.
	UpdateStatusTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to model.BillStatus) error
	SaveTx(ctx context.Context, tx *gorm.DB, b *model.Bill) error
	// DeleteTx removes a bill only while it is still in expectStatus —
	// paid bills are never hard-deleted.
	DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, expectStatus model.BillStatus) error
	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type billRepo struct{ db *gorm.DB }

func NewBillRepository(db *gorm.DB) BillRepository { return &billRepo{db: db} }

func (r *billRepo) DB() *gorm.DB { return r.db }

func (r *billRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *billRepo) Create(ctx context.Context, tx *gorm.DB, b *model.Bill) error {
	return r.conn(tx).WithContext(ctx).Omit(clause.Associations).Create(b).Error
}

func (r *billRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	var b model.Bill
	err := r.db.WithContext(ctx).Preload("Items.Product").First(&b, "id = ?", id).Error
	return &b, err
}

func (r *billRepo) FindOpenBySeller(ctx context.Context, sellerID uuid.UUID) (*model.Bill, error) {
	var b model.Bill
	err := r.db.WithContext(ctx).Preload("Items.Product").
		Where("seller_id = ? AND status = ?", sellerID, model.BillOpen).
		First(&b).Error
	return &b, err
}

func (r *billRepo) FindOpenBySellerTx(ctx context.Context, tx *gorm.DB, sellerID uuid.UUID) (*model.Bill, error) {
	var b model.Bill
	err := r.conn(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("seller_id = ? AND status = ?", sellerID, model.BillOpen).
		First(&b).Error
	return &b, err
}

func (r *billRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Bill, error) {
	var b model.Bill
	err := r.conn(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ?", id).Error
	return &b, err
}

func (r *billRepo) UpdateStatusTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to model.BillStatus) error {
	res := r.conn(tx).WithContext(ctx).Model(&model.Bill{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *billRepo) SaveTx(ctx context.Context, tx *gorm.DB, b *model.Bill) error {
	return r.conn(tx).WithContext(ctx).Omit(clause.Associations).Save(b).Error
}

func (r *billRepo) DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, expectStatus model.BillStatus) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ? AND status = ?", id, expectStatus).
		Delete(&model.Bill{}).Error
}
