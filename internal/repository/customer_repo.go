package repository

import (
	"context"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomerRepository is the data access contract for loyalty accounts.
type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	// FindByIDTx locks the customer row FOR UPDATE so point-balance
	// read-modify-write cannot lose updates under concurrent checkouts.
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Customer, error)
	SaveTx(ctx context.Context, tx *gorm.DB, c *model.Customer) error
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Customer, error)
	DB() *gorm.DB
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) DB() *gorm.DB { return r.db }

func (r *customerRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *customerRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.conn(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, "id = ?", id).Error
	return &c, err
}

func (r *customerRepo) SaveTx(ctx context.Context, tx *gorm.DB, c *model.Customer) error {
	return r.conn(tx).WithContext(ctx).Omit(clause.Associations).Save(c).Error
}

func (r *customerRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&customers).Error
	return customers, err
}
