package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/profaxno/siproad-products-api/internal/model"
)

// ProductTypeRepository defines persistence for product types.
type ProductTypeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductType, error)
	FindActiveByName(ctx context.Context, companyID uuid.UUID, name string) (*model.ProductType, error)
	List(ctx context.Context, companyID uuid.UUID, q Query) ([]model.ProductType, error)
	// ListByCompany pages through active and inactive rows for synchronize.
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]model.ProductType, error)
	Save(ctx context.Context, tx *gorm.DB, p *model.ProductType) error
	CountActiveReferences(ctx context.Context, id uuid.UUID) (int64, error)
	SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type productTypeRepo struct{ db *gorm.DB }

func NewProductTypeRepository(db *gorm.DB) ProductTypeRepository {
	return &productTypeRepo{db: db}
}

func (r *productTypeRepo) DB() *gorm.DB { return r.db }

func (r *productTypeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductType, error) {
	var p model.ProductType
	err := r.db.WithContext(ctx).Where("active = ?", true).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productTypeRepo) FindActiveByName(ctx context.Context, companyID uuid.UUID, name string) (*model.ProductType, error) {
	var p model.ProductType
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND name = ? AND active = ?", companyID, name, true).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productTypeRepo) List(ctx context.Context, companyID uuid.UUID, q Query) ([]model.ProductType, error) {
	var list []model.ProductType
	db := r.db.WithContext(ctx).Where("company_id = ? AND active = ?", companyID, true)
	err := q.apply(db).Order("name asc").Find(&list).Error
	return list, err
}

func (r *productTypeRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]model.ProductType, error) {
	var list []model.ProductType
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at asc, id asc").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *productTypeRepo) Save(ctx context.Context, tx *gorm.DB, p *model.ProductType) error {
	return use(ctx, r.db, tx).Omit(clause.Associations).Save(p).Error
}

func (r *productTypeRepo) CountActiveReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("product_type_id = ? AND active = ?", id, true).
		Count(&n).Error
	return n, err
}

func (r *productTypeRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return translate(use(ctx, r.db, tx).Model(&model.ProductType{}).Where("id = ?", id).Update("active", false).Error)
}
