package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/profaxno/siproad-products-api/internal/model"
)

// CompanyRepository stores the tenants replicated from the admin service.
type CompanyRepository interface {
	// FindByID returns the company whatever its state.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	FindActiveByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	Save(ctx context.Context, tx *gorm.DB, c *model.Company) error
	SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type companyRepo struct{ db *gorm.DB }

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) DB() *gorm.DB { return r.db }

func (r *companyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var c model.Company
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *companyRepo) FindActiveByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var c model.Company
	if err := r.db.WithContext(ctx).Where("active = ?", true).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *companyRepo) Save(ctx context.Context, tx *gorm.DB, c *model.Company) error {
	return use(ctx, r.db, tx).Omit(clause.Associations).Save(c).Error
}

func (r *companyRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return translate(use(ctx, r.db, tx).Model(&model.Company{}).Where("id = ?", id).Update("active", false).Error)
}
