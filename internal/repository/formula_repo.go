package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/profaxno/siproad-products-api/internal/model"
)

// FormulaRepository defines persistence for formulas and their element
// lines. Reads preload Lines.Element so cost can be recomputed in memory.
type FormulaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Formula, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Formula, error)
	FindActiveByName(ctx context.Context, companyID uuid.UUID, name string) (*model.Formula, error)
	List(ctx context.Context, companyID uuid.UUID, q Query) ([]model.Formula, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]model.Formula, error)
	Save(ctx context.Context, tx *gorm.DB, f *model.Formula) error
	// ReplaceLines swaps the formula's element lines; empty rows is a no-op.
	ReplaceLines(ctx context.Context, tx *gorm.DB, formulaID uuid.UUID, rows []model.FormulaElement) error
	// CountActiveReferences counts active products composed of the formula.
	CountActiveReferences(ctx context.Context, id uuid.UUID) (int64, error)
	SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type formulaRepo struct{ db *gorm.DB }

func NewFormulaRepository(db *gorm.DB) FormulaRepository {
	return &formulaRepo{db: db}
}

func (r *formulaRepo) DB() *gorm.DB { return r.db }

func (r *formulaRepo) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Lines.Element")
}

func (r *formulaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Formula, error) {
	var f model.Formula
	err := r.withLines(ctx).Where("active = ?", true).First(&f, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *formulaRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Formula, error) {
	var list []model.Formula
	if len(ids) == 0 {
		return list, nil
	}
	err := r.withLines(ctx).Where("id IN ? AND active = ?", ids, true).Find(&list).Error
	return list, err
}

func (r *formulaRepo) FindActiveByName(ctx context.Context, companyID uuid.UUID, name string) (*model.Formula, error) {
	var f model.Formula
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND name = ? AND active = ?", companyID, name, true).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *formulaRepo) List(ctx context.Context, companyID uuid.UUID, q Query) ([]model.Formula, error) {
	var list []model.Formula
	db := r.withLines(ctx).Where("company_id = ? AND active = ?", companyID, true)
	err := q.apply(db).Order("name asc").Find(&list).Error
	return list, err
}

func (r *formulaRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]model.Formula, error) {
	var list []model.Formula
	err := r.withLines(ctx).
		Where("company_id = ?", companyID).
		Order("created_at asc, id asc").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *formulaRepo) Save(ctx context.Context, tx *gorm.DB, f *model.Formula) error {
	return use(ctx, r.db, tx).Omit(clause.Associations).Save(f).Error
}

func (r *formulaRepo) ReplaceLines(ctx context.Context, tx *gorm.DB, formulaID uuid.UUID, rows []model.FormulaElement) error {
	if len(rows) == 0 {
		return nil
	}
	return inTx(ctx, r.db, tx, func(tx *gorm.DB) error {
		return replaceChildren(ctx, tx.Omit(clause.Associations), "formula_id", formulaID, rows)
	})
}

func (r *formulaRepo) CountActiveReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ProductFormula{}).
		Joins("JOIN pro_product ON pro_product.id = pro_product_formula.product_id").
		Where("pro_product_formula.formula_id = ? AND pro_product.active = ?", id, true).
		Count(&n).Error
	return n, err
}

func (r *formulaRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return translate(use(ctx, r.db, tx).Model(&model.Formula{}).Where("id = ?", id).Update("active", false).Error)
}
