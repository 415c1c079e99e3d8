package repository

import (
	"context"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointTransactionRepository is the append-only loyalty ledger. There is no
// update or delete — corrections are new entries.
type PointTransactionRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, p *model.PointTransaction) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.PointTransaction, error)
	// SumByCustomer returns Σ(points) over the customer's ledger — used to
	// verify the reconciliation invariant against the stored balance.
	SumByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	DB() *gorm.DB
}

type pointTransactionRepo struct{ db *gorm.DB }

func NewPointTransactionRepository(db *gorm.DB) PointTransactionRepository {
	return &pointTransactionRepo{db: db}
}

func (r *pointTransactionRepo) DB() *gorm.DB { return r.db }

func (r *pointTransactionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *pointTransactionRepo) CreateTx(ctx context.Context, tx *gorm.DB, p *model.PointTransaction) error {
	return r.conn(tx).WithContext(ctx).Create(p).Error
}

func (r *pointTransactionRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.PointTransaction, error) {
	var entries []model.PointTransaction
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

func (r *pointTransactionRepo) SumByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&model.PointTransaction{}).
		Where("customer_id = ?", customerID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&sum).Error
	return sum, err
}
