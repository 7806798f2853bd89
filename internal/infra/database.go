package infra

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/profaxno/siproad-products-api/internal/model"
)

// NewDatabase opens a GORM connection backed by pgx. TranslateError maps
// driver errors onto gorm sentinels such as gorm.ErrForeignKeyViolated.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
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
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Migrate creates or updates the catalog tables, then applies the indexes
// AutoMigrate cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Company{},
		&model.ProductType{},
		&model.ElementType{},
		&model.Element{},
		&model.Formula{},
		&model.FormulaElement{},
		&model.Product{},
		&model.ProductElement{},
		&model.ProductFormula{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// MigrateReplica creates or updates the products-sales replica tables.
func MigrateReplica(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.ReplicaProductType{},
		&model.ReplicaFormula{},
		&model.ReplicaProduct{},
	); err != nil {
		return fmt.Errorf("AutoMigrate replica: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL. Names are unique per company
// among active rows only, so a removed name can be reused.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_pro_element_company_name_active
		    ON pro_element (company_id, name) WHERE active = true`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_pro_formula_company_name_active
		    ON pro_formula (company_id, name) WHERE active = true`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_pro_product_company_name_active
		    ON pro_product (company_id, name) WHERE active = true`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_pro_element_type_company_name_active
		    ON pro_element_type (company_id, name) WHERE active = true`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_pro_product_type_company_name_active
		    ON pro_product_type (company_id, name) WHERE active = true`,
		`CREATE INDEX IF NOT EXISTS idx_pro_product_company_code
		    ON pro_product (company_id, code)`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
