package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/profaxno/siproad-products-api/internal/model"
)

// ProductSearch filters searchByValues: NameCode matches name or code.
type ProductSearch struct {
	NameCode      string
	ProductTypeID *uuid.UUID
}

// ProductRepository defines persistence for products and both of their
// line sets. Reads preload the full composition tree.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindActiveByName(ctx context.Context, companyID uuid.UUID, name string) (*model.Product, error)
	List(ctx context.Context, companyID uuid.UUID, q Query) ([]model.Product, error)
	Search(ctx context.Context, companyID uuid.UUID, s ProductSearch, q Query) ([]model.Product, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]model.Product, error)
	Save(ctx context.Context, tx *gorm.DB, p *model.Product) error
	ReplaceElementLines(ctx context.Context, tx *gorm.DB, productID uuid.UUID, rows []model.ProductElement) error
	ReplaceFormulaLines(ctx context.Context, tx *gorm.DB, productID uuid.UUID, rows []model.ProductFormula) error
	ClearElementLines(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error
	ClearFormulaLines(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error
	SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) withComposition(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("ProductType").
		Preload("ElementLines.Element").
		Preload("FormulaLines.Formula.Lines.Element")
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.withComposition(ctx).Where("active = ?", true).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindActiveByName(ctx context.Context, companyID uuid.UUID, name string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND name = ? AND active = ?", companyID, name, true).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, companyID uuid.UUID, q Query) ([]model.Product, error) {
	var list []model.Product
	db := r.withComposition(ctx).Where("company_id = ? AND active = ?", companyID, true)
	err := q.apply(db).Order("name asc").Find(&list).Error
	return list, err
}

func (r *productRepo) Search(ctx context.Context, companyID uuid.UUID, s ProductSearch, q Query) ([]model.Product, error) {
	var list []model.Product
	db := r.withComposition(ctx).Where("company_id = ? AND active = ?", companyID, true)
	if s.NameCode != "" {
		term := "%" + strings.ToUpper(s.NameCode) + "%"
		db = db.Where("(name LIKE ? OR code LIKE ?)", term, term)
	}
	if s.ProductTypeID != nil {
		db = db.Where("product_type_id = ?", *s.ProductTypeID)
	}
	err := q.apply(db).Order("name asc").Find(&list).Error
	return list, err
}

func (r *productRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]model.Product, error) {
	var list []model.Product
	err := r.withComposition(ctx).
		Where("company_id = ?", companyID).
		Order("created_at asc, id asc").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *productRepo) Save(ctx context.Context, tx *gorm.DB, p *model.Product) error {
	return use(ctx, r.db, tx).Omit(clause.Associations).Save(p).Error
}

func (r *productRepo) ReplaceElementLines(ctx context.Context, tx *gorm.DB, productID uuid.UUID, rows []model.ProductElement) error {
	if len(rows) == 0 {
		return nil
	}
	return inTx(ctx, r.db, tx, func(tx *gorm.DB) error {
		return replaceChildren(ctx, tx.Omit(clause.Associations), "product_id", productID, rows)
	})
}

func (r *productRepo) ReplaceFormulaLines(ctx context.Context, tx *gorm.DB, productID uuid.UUID, rows []model.ProductFormula) error {
	if len(rows) == 0 {
		return nil
	}
	return inTx(ctx, r.db, tx, func(tx *gorm.DB) error {
		return replaceChildren(ctx, tx.Omit(clause.Associations), "product_id", productID, rows)
	})
}

func (r *productRepo) ClearElementLines(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error {
	return deleteChildren[model.ProductElement](ctx, use(ctx, r.db, tx), "product_id", productID)
}

func (r *productRepo) ClearFormulaLines(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error {
	return deleteChildren[model.ProductFormula](ctx, use(ctx, r.db, tx), "product_id", productID)
}

func (r *productRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return translate(use(ctx, r.db, tx).Model(&model.Product{}).Where("id = ?", id).Update("active", false).Error)
}
