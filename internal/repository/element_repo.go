package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/profaxno/siproad-products-api/internal/model"
)

// ElementRepository defines persistence for elements. Reads only ever
// return active rows.
type ElementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Element, error)
	// FindByIDs returns the active elements among ids in a single query.
	// Missing or inactive ids are simply absent from the result.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Element, error)
	FindActiveByName(ctx context.Context, companyID uuid.UUID, name string) (*model.Element, error)
	List(ctx context.Context, companyID uuid.UUID, q Query) ([]model.Element, error)
	Save(ctx context.Context, tx *gorm.DB, e *model.Element) error
	// CountActiveReferences counts active formulas and products whose
	// composition names the element.
	CountActiveReferences(ctx context.Context, id uuid.UUID) (int64, error)
	SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type elementRepo struct{ db *gorm.DB }

func NewElementRepository(db *gorm.DB) ElementRepository {
	return &elementRepo{db: db}
}

func (r *elementRepo) DB() *gorm.DB { return r.db }

func (r *elementRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Element, error) {
	var e model.Element
	err := r.db.WithContext(ctx).Preload("ElementType").Where("active = ?", true).First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *elementRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Element, error) {
	var list []model.Element
	if len(ids) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ? AND active = ?", ids, true).Find(&list).Error
	return list, err
}

func (r *elementRepo) FindActiveByName(ctx context.Context, companyID uuid.UUID, name string) (*model.Element, error) {
	var e model.Element
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND name = ? AND active = ?", companyID, name, true).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *elementRepo) List(ctx context.Context, companyID uuid.UUID, q Query) ([]model.Element, error) {
	var list []model.Element
	db := r.db.WithContext(ctx).Preload("ElementType").Where("company_id = ? AND active = ?", companyID, true)
	err := q.apply(db).Order("name asc").Find(&list).Error
	return list, err
}

func (r *elementRepo) Save(ctx context.Context, tx *gorm.DB, e *model.Element) error {
	return use(ctx, r.db, tx).Omit(clause.Associations).Save(e).Error
}

func (r *elementRepo) CountActiveReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var inFormulas, inProducts int64
	err := r.db.WithContext(ctx).Model(&model.FormulaElement{}).
		Joins("JOIN pro_formula ON pro_formula.id = pro_formula_element.formula_id").
		Where("pro_formula_element.element_id = ? AND pro_formula.active = ?", id, true).
		Count(&inFormulas).Error
	if err != nil {
		return 0, err
	}
	err = r.db.WithContext(ctx).Model(&model.ProductElement{}).
		Joins("JOIN pro_product ON pro_product.id = pro_product_element.product_id").
		Where("pro_product_element.element_id = ? AND pro_product.active = ?", id, true).
		Count(&inProducts).Error
	return inFormulas + inProducts, err
}

func (r *elementRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return translate(use(ctx, r.db, tx).Model(&model.Element{}).Where("id = ?", id).Update("active", false).Error)
}
