package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/profaxno/siproad-products-api/internal/apierror"
	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/model"
	"github.com/profaxno/siproad-products-api/internal/replication"
	"github.com/profaxno/siproad-products-api/internal/repository"
)

// FormulaService defines business operations for formulas.
type FormulaService interface {
	Update(ctx context.Context, d dto.FormulaDTO) (*dto.FormulaDTO, error)
	UpdateBatch(ctx context.Context, list []dto.FormulaDTO) dto.ProcessSummary
	Find(ctx context.Context, companyID uuid.UUID, page dto.Pagination, in dto.SearchInput) ([]dto.FormulaDTO, error)
	FindOneByID(ctx context.Context, id uuid.UUID) (*dto.FormulaDTO, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]dto.FormulaDTO, error)
	Remove(ctx context.Context, id uuid.UUID) error
	Synchronize(ctx context.Context, companyID uuid.UUID) (*dto.SyncSummary, error)
}

type formulaService struct {
	repo       repository.FormulaRepository
	elements   repository.ElementRepository
	companies  repository.CompanyRepository
	replicator Replicator
	limit      int
}

func NewFormulaService(
	repo repository.FormulaRepository,
	elements repository.ElementRepository,
	companies repository.CompanyRepository,
	replicator Replicator,
	limit int,
) FormulaService {
	return &formulaService{
		repo:       repo,
		elements:   elements,
		companies:  companies,
		replicator: replicator,
		limit:      pageSize(limit),
	}
}

// resolveElements costs element lines with one batched lookup.
func resolveElements(ctx context.Context, repo repository.ElementRepository, lines []Line) (*Aggregation[model.Element], error) {
	found, err := repo.FindByIDs(ctx, DistinctIDs(lines))
	if err != nil {
		return nil, err
	}
	return Aggregate("elements", lines, found,
		func(e model.Element) uuid.UUID { return e.ID },
		func(e model.Element) decimal.Decimal { return e.Cost })
}

// Update creates the formula when d has no id, otherwise updates it. A
// non-empty element list replaces the stored lines and recomputes cost;
// an empty one leaves both untouched.
func (s *formulaService) Update(ctx context.Context, d dto.FormulaDTO) (*dto.FormulaDTO, error) {
	start := time.Now()
	name := strings.ToUpper(strings.TrimSpace(d.Name))

	comp, err := formulaComposition(d.ElementList)
	if err != nil {
		return nil, err
	}
	companyID, err := requireCompany(ctx, s.companies, d.CompanyID)
	if err != nil {
		return nil, err
	}

	var f *model.Formula
	if d.ID == "" {
		if err := s.ensureNameFree(ctx, companyID, name, uuid.Nil); err != nil {
			return nil, err
		}
		f = &model.Formula{CompanyID: companyID, Cost: d.Cost}
	} else {
		id, err := parseID("id", d.ID)
		if err != nil {
			return nil, err
		}
		if f, err = s.repo.FindByID(ctx, id); err != nil {
			return nil, findErr(err, "formula", id)
		}
		if f.Name != name {
			if err := s.ensureNameFree(ctx, f.CompanyID, name, f.ID); err != nil {
				return nil, err
			}
		}
	}

	var agg *Aggregation[model.Element]
	if !comp.Empty() {
		if agg, err = resolveElements(ctx, s.elements, comp.Lines); err != nil {
			return nil, err
		}
		f.Cost = agg.Total
	}
	f.Name = name
	f.Active = true

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Save(ctx, tx, f); err != nil {
			return err
		}
		if comp.Empty() {
			return nil
		}
		rows := make([]model.FormulaElement, 0, len(comp.Lines))
		for _, l := range comp.Lines {
			rows = append(rows, model.FormulaElement{FormulaID: f.ID, ElementID: l.ComponentID, Qty: l.Qty})
		}
		if err := s.repo.ReplaceLines(ctx, tx, f.ID, rows); err != nil {
			return usedErr(err, "formula", f.ID)
		}
		for i := range rows {
			el := agg.Resolved[rows[i].ElementID]
			rows[i].Element = &el
		}
		f.Lines = rows
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := mapFormula(f)
	if err := replicate(ctx, s.replicator, replication.ProcessFormulaUpdate, out); err != nil {
		log.Error().Err(err).Str("id", out.ID).Msg("formula update: replication skipped")
	}
	log.Info().Str("id", out.ID).Str("name", out.Name).Dur("runtime", time.Since(start)).Msg("formula update executed")
	return &out, nil
}

func (s *formulaService) ensureNameFree(ctx context.Context, companyID uuid.UUID, name string, self uuid.UUID) error {
	existing, err := s.repo.FindActiveByName(ctx, companyID, name)
	if err != nil && !isNotFound(err) {
		return err
	}
	if existing != nil && existing.ID != self {
		return apierror.AlreadyExists("formula already exists, name=%s", name)
	}
	return nil
}

func (s *formulaService) UpdateBatch(ctx context.Context, list []dto.FormulaDTO) dto.ProcessSummary {
	return runBatch(ctx, "formula", list,
		func(d dto.FormulaDTO) string { return d.Name },
		func(ctx context.Context, d dto.FormulaDTO) error {
			_, err := s.Update(ctx, d)
			return err
		})
}

func (s *formulaService) Find(ctx context.Context, companyID uuid.UUID, page dto.Pagination, in dto.SearchInput) ([]dto.FormulaDTO, error) {
	limit := page.Limit
	if limit <= 0 {
		limit = s.limit
	}
	list, err := s.repo.List(ctx, companyID, repository.Query{
		Search:     in.Search,
		SearchList: in.SearchList,
		Limit:      limit,
		Offset:     page.Offset(limit),
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.FormulaDTO, 0, len(list))
	for i := range list {
		out = append(out, mapFormula(&list[i]))
	}
	return out, nil
}

func (s *formulaService) FindOneByID(ctx context.Context, id uuid.UUID) (*dto.FormulaDTO, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, findErr(err, "formula", id)
	}
	out := mapFormula(f)
	return &out, nil
}

// FindByIDs returns the active formulas among ids, with their lines.
// Unknown or inactive ids are skipped.
func (s *formulaService) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]dto.FormulaDTO, error) {
	list, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FormulaDTO, 0, len(list))
	for i := range list {
		out = append(out, mapFormula(&list[i]))
	}
	return out, nil
}

// Remove soft-deletes the formula unless an active product uses it, then
// replicates FORMULA_DELETE.
func (s *formulaService) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return findErr(err, "formula", id)
	}
	n, err := s.repo.CountActiveReferences(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apierror.BeingUsed("formula is being used, id=%s", id)
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return usedErr(s.repo.SoftDelete(ctx, tx, id), "formula", id)
	})
	if err != nil {
		return err
	}
	if err := replicate(ctx, s.replicator, replication.ProcessFormulaDelete, dto.IDPayload{ID: id.String()}); err != nil {
		log.Error().Err(err).Str("id", id.String()).Msg("formula remove: replication skipped")
	}
	log.Info().Str("id", id.String()).Msg("formula removed")
	return nil
}

func (s *formulaService) Synchronize(ctx context.Context, companyID uuid.UUID) (*dto.SyncSummary, error) {
	return synchronize(ctx, s.replicator, "formula", s.limit,
		func(ctx context.Context, limit, offset int) ([]model.Formula, error) {
			return s.repo.ListByCompany(ctx, companyID, limit, offset)
		},
		func(f model.Formula) (replication.Message, error) {
			if !f.Active {
				return replication.NewMessage(replication.ProcessFormulaDelete, dto.IDPayload{ID: f.ID.String()})
			}
			return replication.NewMessage(replication.ProcessFormulaUpdate, mapFormula(&f))
		})
}
