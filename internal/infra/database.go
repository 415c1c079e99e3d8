package infra

import (
	"fmt"

	"smartpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches that GORM
// cannot express (partial unique indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Translate driver errors (e.g. pg unique violations) into
		// gorm.ErrDuplicatedKey so services can detect races portably.
		TranslateError: true,
		// product_id is a soft reference — the catalog is maintained by an
		// external module and line prices are captured at add-time, so no
		// FK may force every sold product to exist locally.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies the schema: AutoMigrate for the tables themselves plus
// SQL patches for what AutoMigrate cannot do. Also used by integration tests
// against throwaway containers.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Seller{},
		&model.Product{},
		&model.Customer{},
		&model.Bill{},
		&model.BillItem{},
		&model.HeldBill{},
		&model.PointTransaction{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that GORM AutoMigrate cannot express.
// Each statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// At most one open bill per seller. A partial unique index is the
		// only reliable guard — application-level find-or-create alone
		// loses the race between two concurrent first requests.
		`CREATE UNIQUE INDEX IF NOT EXISTS uni_bills_seller_open
		     ON bills (seller_id)
		     WHERE status = 'open'`,
		// Janitor sweep scans live tickets by age.
		`CREATE INDEX IF NOT EXISTS idx_held_bills_status_held_at
		     ON held_bills (status, held_at)`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
