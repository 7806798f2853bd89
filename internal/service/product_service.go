package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/profaxno/siproad-products-api/internal/apierror"
	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/model"
	"github.com/profaxno/siproad-products-api/internal/replication"
	"github.com/profaxno/siproad-products-api/internal/repository"
)

// ProductService defines business operations for products.
type ProductService interface {
	Update(ctx context.Context, d dto.ProductDTO) (*dto.ProductDTO, error)
	UpdateBatch(ctx context.Context, list []dto.ProductDTO) dto.ProcessSummary
	Find(ctx context.Context, companyID uuid.UUID, page dto.Pagination, in dto.SearchInput) ([]dto.ProductDTO, error)
	SearchByValues(ctx context.Context, companyID uuid.UUID, page dto.Pagination, in dto.ProductSearchInput) ([]dto.ProductDTO, error)
	FindOneByID(ctx context.Context, id uuid.UUID) (*dto.ProductDTO, error)
	Remove(ctx context.Context, id uuid.UUID) error
	Synchronize(ctx context.Context, companyID uuid.UUID) (*dto.SyncSummary, error)
}

type productService struct {
	repo         repository.ProductRepository
	elements     repository.ElementRepository
	formulas     repository.FormulaRepository
	productTypes repository.ProductTypeRepository
	companies    repository.CompanyRepository
	replicator   Replicator
	limit        int
}

func NewProductService(
	repo repository.ProductRepository,
	elements repository.ElementRepository,
	formulas repository.FormulaRepository,
	productTypes repository.ProductTypeRepository,
	companies repository.CompanyRepository,
	replicator Replicator,
	limit int,
) ProductService {
	return &productService{
		repo:         repo,
		elements:     elements,
		formulas:     formulas,
		productTypes: productTypes,
		companies:    companies,
		replicator:   replicator,
		limit:        pageSize(limit),
	}
}

// resolveFormulas costs formula lines with one batched lookup. A formula's
// unit cost is recomputed from its loaded element lines.
func resolveFormulas(ctx context.Context, repo repository.FormulaRepository, lines []Line) (*Aggregation[model.Formula], error) {
	found, err := repo.FindByIDs(ctx, DistinctIDs(lines))
	if err != nil {
		return nil, err
	}
	return Aggregate("formulas", lines, found,
		func(f model.Formula) uuid.UUID { return f.ID },
		formulaUnitCost)
}

// Update creates the product when d has no id, otherwise updates it.
// HasFormula selects the composition list; a non-empty one replaces the
// product's lines, clears the other line set and recomputes cost.
func (s *productService) Update(ctx context.Context, d dto.ProductDTO) (*dto.ProductDTO, error) {
	start := time.Now()
	name := strings.ToUpper(strings.TrimSpace(d.Name))

	comp, err := productComposition(d)
	if err != nil {
		return nil, err
	}
	companyID, err := requireCompany(ctx, s.companies, d.CompanyID)
	if err != nil {
		return nil, err
	}
	productType, err := s.resolveProductType(ctx, d.ProductTypeID)
	if err != nil {
		return nil, err
	}

	var p *model.Product
	if d.ID == "" {
		if err := s.ensureNameFree(ctx, companyID, name, uuid.Nil); err != nil {
			return nil, err
		}
		p = &model.Product{CompanyID: companyID, Cost: d.Cost, HasFormula: d.HasFormula}
	} else {
		id, err := parseID("id", d.ID)
		if err != nil {
			return nil, err
		}
		if p, err = s.repo.FindByID(ctx, id); err != nil {
			return nil, findErr(err, "product", id)
		}
		if p.Name != name {
			if err := s.ensureNameFree(ctx, p.CompanyID, name, p.ID); err != nil {
				return nil, err
			}
		}
	}
	kindChanged := p.HasFormula != d.HasFormula

	var elementAgg *Aggregation[model.Element]
	var formulaAgg *Aggregation[model.Formula]
	switch {
	case comp.Empty() && kindChanged:
		// the stored lines are about to be cleared, so their cost goes too
		p.Cost = d.Cost
	case comp.Empty():
	case comp.Kind == ElementLines:
		if elementAgg, err = resolveElements(ctx, s.elements, comp.Lines); err != nil {
			return nil, err
		}
		p.Cost = elementAgg.Total
	case comp.Kind == FormulaLines:
		if formulaAgg, err = resolveFormulas(ctx, s.formulas, comp.Lines); err != nil {
			return nil, err
		}
		p.Cost = formulaAgg.Total
	default:
		return nil, apierror.Invalid("invalid composition kind: %s", comp.Kind)
	}

	p.Name = name
	p.Code = strPtr(strings.ToUpper(strings.TrimSpace(d.Code)))
	p.Description = strPtr(strings.ToUpper(strings.TrimSpace(d.Description)))
	p.ImageURL = strPtr(strings.TrimSpace(d.ImageURL))
	p.Price = d.Price
	p.HasFormula = d.HasFormula
	p.Active = true
	p.ProductType = productType
	p.ProductTypeID = nil
	if productType != nil {
		p.ProductTypeID = &productType.ID
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Save(ctx, tx, p); err != nil {
			return err
		}
		switch {
		case elementAgg != nil:
			return s.replaceElementLines(ctx, tx, p, comp.Lines, elementAgg)
		case formulaAgg != nil:
			return s.replaceFormulaLines(ctx, tx, p, comp.Lines, formulaAgg)
		case kindChanged && p.HasFormula:
			p.ElementLines = nil
			return s.repo.ClearElementLines(ctx, tx, p.ID)
		case kindChanged:
			p.FormulaLines = nil
			return s.repo.ClearFormulaLines(ctx, tx, p.ID)
		}
		return nil
	})
	if err != nil {
		return nil, usedErr(err, "product", p.ID)
	}

	out := mapProduct(p)
	if err := replicate(ctx, s.replicator, replication.ProcessProductUpdate, out); err != nil {
		log.Error().Err(err).Str("id", out.ID).Msg("product update: replication skipped")
	}
	log.Info().Str("id", out.ID).Str("name", out.Name).Str("cost", out.Cost.String()).Dur("runtime", time.Since(start)).Msg("product update executed")
	return &out, nil
}

func (s *productService) replaceElementLines(ctx context.Context, tx *gorm.DB, p *model.Product, lines []Line, agg *Aggregation[model.Element]) error {
	rows := make([]model.ProductElement, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, model.ProductElement{ProductID: p.ID, ElementID: l.ComponentID, Qty: l.Qty})
	}
	if err := s.repo.ReplaceElementLines(ctx, tx, p.ID, rows); err != nil {
		return err
	}
	if err := s.repo.ClearFormulaLines(ctx, tx, p.ID); err != nil {
		return err
	}
	for i := range rows {
		el := agg.Resolved[rows[i].ElementID]
		rows[i].Element = &el
	}
	p.ElementLines = rows
	p.FormulaLines = nil
	return nil
}

func (s *productService) replaceFormulaLines(ctx context.Context, tx *gorm.DB, p *model.Product, lines []Line, agg *Aggregation[model.Formula]) error {
	rows := make([]model.ProductFormula, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, model.ProductFormula{ProductID: p.ID, FormulaID: l.ComponentID, Qty: l.Qty})
	}
	if err := s.repo.ReplaceFormulaLines(ctx, tx, p.ID, rows); err != nil {
		return err
	}
	if err := s.repo.ClearElementLines(ctx, tx, p.ID); err != nil {
		return err
	}
	for i := range rows {
		f := agg.Resolved[rows[i].FormulaID]
		rows[i].Formula = &f
	}
	p.FormulaLines = rows
	p.ElementLines = nil
	return nil
}

func (s *productService) resolveProductType(ctx context.Context, raw string) (*model.ProductType, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := parseID("productTypeId", raw)
	if err != nil {
		return nil, err
	}
	pt, err := s.productTypes.FindByID(ctx, id)
	if err != nil {
		return nil, findErr(err, "productType", id)
	}
	return pt, nil
}

func (s *productService) ensureNameFree(ctx context.Context, companyID uuid.UUID, name string, self uuid.UUID) error {
	existing, err := s.repo.FindActiveByName(ctx, companyID, name)
	if err != nil && !isNotFound(err) {
		return err
	}
	if existing != nil && existing.ID != self {
		return apierror.AlreadyExists("product already exists, name=%s", name)
	}
	return nil
}

func (s *productService) UpdateBatch(ctx context.Context, list []dto.ProductDTO) dto.ProcessSummary {
	return runBatch(ctx, "product", list,
		func(d dto.ProductDTO) string { return d.Name },
		func(ctx context.Context, d dto.ProductDTO) error {
			_, err := s.Update(ctx, d)
			return err
		})
}

func (s *productService) query(page dto.Pagination, in dto.SearchInput) repository.Query {
	limit := page.Limit
	if limit <= 0 {
		limit = s.limit
	}
	return repository.Query{Search: in.Search, SearchList: in.SearchList, Limit: limit, Offset: page.Offset(limit)}
}

func mapProducts(list []model.Product) []dto.ProductDTO {
	out := make([]dto.ProductDTO, 0, len(list))
	for i := range list {
		out = append(out, mapProduct(&list[i]))
	}
	return out
}

func (s *productService) Find(ctx context.Context, companyID uuid.UUID, page dto.Pagination, in dto.SearchInput) ([]dto.ProductDTO, error) {
	list, err := s.repo.List(ctx, companyID, s.query(page, in))
	if err != nil {
		return nil, err
	}
	return mapProducts(list), nil
}

func (s *productService) SearchByValues(ctx context.Context, companyID uuid.UUID, page dto.Pagination, in dto.ProductSearchInput) ([]dto.ProductDTO, error) {
	search := repository.ProductSearch{NameCode: strings.TrimSpace(in.NameCode)}
	if in.ProductTypeID != "" {
		id, err := parseID("productTypeId", in.ProductTypeID)
		if err != nil {
			return nil, err
		}
		search.ProductTypeID = &id
	}
	list, err := s.repo.Search(ctx, companyID, search, s.query(page, dto.SearchInput{}))
	if err != nil {
		return nil, err
	}
	return mapProducts(list), nil
}

func (s *productService) FindOneByID(ctx context.Context, id uuid.UUID) (*dto.ProductDTO, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, findErr(err, "product", id)
	}
	out := mapProduct(p)
	return &out, nil
}

// Remove soft-deletes the product and replicates PRODUCT_DELETE.
func (s *productService) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return findErr(err, "product", id)
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return usedErr(s.repo.SoftDelete(ctx, tx, id), "product", id)
	})
	if err != nil {
		return err
	}
	if err := replicate(ctx, s.replicator, replication.ProcessProductDelete, dto.IDPayload{ID: id.String()}); err != nil {
		log.Error().Err(err).Str("id", id.String()).Msg("product remove: replication skipped")
	}
	log.Info().Str("id", id.String()).Msg("product removed")
	return nil
}

func (s *productService) Synchronize(ctx context.Context, companyID uuid.UUID) (*dto.SyncSummary, error) {
	return synchronize(ctx, s.replicator, "product", s.limit,
		func(ctx context.Context, limit, offset int) ([]model.Product, error) {
			return s.repo.ListByCompany(ctx, companyID, limit, offset)
		},
		func(p model.Product) (replication.Message, error) {
			if !p.Active {
				return replication.NewMessage(replication.ProcessProductDelete, dto.IDPayload{ID: p.ID.String()})
			}
			return replication.NewMessage(replication.ProcessProductUpdate, mapProduct(&p))
		})
}
