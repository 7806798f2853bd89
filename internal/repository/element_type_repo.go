package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/profaxno/siproad-products-api/internal/model"
)

// ElementTypeRepository defines persistence for element types.
type ElementTypeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.ElementType, error)
	FindActiveByName(ctx context.Context, companyID uuid.UUID, name string) (*model.ElementType, error)
	List(ctx context.Context, companyID uuid.UUID, q Query) ([]model.ElementType, error)
	Save(ctx context.Context, tx *gorm.DB, t *model.ElementType) error
	CountActiveReferences(ctx context.Context, id uuid.UUID) (int64, error)
	SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type elementTypeRepo struct{ db *gorm.DB }

func NewElementTypeRepository(db *gorm.DB) ElementTypeRepository {
	return &elementTypeRepo{db: db}
}

func (r *elementTypeRepo) DB() *gorm.DB { return r.db }

func (r *elementTypeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ElementType, error) {
	var t model.ElementType
	err := r.db.WithContext(ctx).Where("active = ?", true).First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *elementTypeRepo) FindActiveByName(ctx context.Context, companyID uuid.UUID, name string) (*model.ElementType, error) {
	var t model.ElementType
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND name = ? AND active = ?", companyID, name, true).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *elementTypeRepo) List(ctx context.Context, companyID uuid.UUID, q Query) ([]model.ElementType, error) {
	var list []model.ElementType
	db := r.db.WithContext(ctx).Where("company_id = ? AND active = ?", companyID, true)
	err := q.apply(db).Order("name asc").Find(&list).Error
	return list, err
}

func (r *elementTypeRepo) Save(ctx context.Context, tx *gorm.DB, t *model.ElementType) error {
	return use(ctx, r.db, tx).Omit(clause.Associations).Save(t).Error
}

// CountActiveReferences counts the active elements classified by the type.
func (r *elementTypeRepo) CountActiveReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Element{}).
		Where("element_type_id = ? AND active = ?", id, true).
		Count(&n).Error
	return n, err
}

func (r *elementTypeRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return translate(use(ctx, r.db, tx).Model(&model.ElementType{}).Where("id = ?", id).Update("active", false).Error)
}
