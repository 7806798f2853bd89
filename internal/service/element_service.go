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
	"github.com/profaxno/siproad-products-api/internal/repository"
)

// ElementService defines business operations for elements. Elements are
// not replicated; formulas and products carry their costs downstream.
type ElementService interface {
	Update(ctx context.Context, d dto.ElementDTO) (*dto.ElementDTO, error)
	UpdateBatch(ctx context.Context, list []dto.ElementDTO) dto.ProcessSummary
	Find(ctx context.Context, companyID uuid.UUID, page dto.Pagination, in dto.SearchInput) ([]dto.ElementDTO, error)
	FindOneByID(ctx context.Context, id uuid.UUID) (*dto.ElementDTO, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type elementService struct {
	repo      repository.ElementRepository
	types     repository.ElementTypeRepository
	companies repository.CompanyRepository
	limit     int
}

func NewElementService(repo repository.ElementRepository, types repository.ElementTypeRepository, companies repository.CompanyRepository, limit int) ElementService {
	return &elementService{repo: repo, types: types, companies: companies, limit: pageSize(limit)}
}

// Update creates the element when d has no id, otherwise updates it.
func (s *elementService) Update(ctx context.Context, d dto.ElementDTO) (*dto.ElementDTO, error) {
	start := time.Now()
	name := strings.ToUpper(strings.TrimSpace(d.Name))

	companyID, err := requireCompany(ctx, s.companies, d.CompanyID)
	if err != nil {
		return nil, err
	}
	elementType, err := s.resolveElementType(ctx, companyID, d.ElementTypeID)
	if err != nil {
		return nil, err
	}

	var e *model.Element
	if d.ID == "" {
		if err := s.ensureNameFree(ctx, companyID, name, uuid.Nil); err != nil {
			return nil, err
		}
		e = &model.Element{CompanyID: companyID}
	} else {
		id, err := parseID("id", d.ID)
		if err != nil {
			return nil, err
		}
		if e, err = s.repo.FindByID(ctx, id); err != nil {
			return nil, findErr(err, "element", id)
		}
		if e.Name != name {
			if err := s.ensureNameFree(ctx, e.CompanyID, name, e.ID); err != nil {
				return nil, err
			}
		}
	}

	e.Name = name
	e.Cost = d.Cost
	e.Stock = d.Stock
	e.Unit = strings.ToUpper(d.Unit)
	e.Active = true
	e.ElementType = elementType
	e.ElementTypeID = nil
	if elementType != nil {
		e.ElementTypeID = &elementType.ID
	}

	if err := s.repo.Save(ctx, nil, e); err != nil {
		return nil, err
	}

	out := mapElement(*e)
	log.Info().Str("id", out.ID).Str("name", out.Name).Dur("runtime", time.Since(start)).Msg("element update executed")
	return &out, nil
}

// resolveElementType returns nil when no type was given and NotFound when
// the given one is not an active type of the company.
func (s *elementService) resolveElementType(ctx context.Context, companyID uuid.UUID, raw string) (*model.ElementType, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := parseID("elementTypeId", raw)
	if err != nil {
		return nil, err
	}
	t, err := s.types.FindByID(ctx, id)
	if err != nil {
		return nil, findErr(err, "elementType", id)
	}
	if t.CompanyID != companyID {
		return nil, apierror.NotFound("elementType not found, id=%s", id)
	}
	return t, nil
}

func (s *elementService) ensureNameFree(ctx context.Context, companyID uuid.UUID, name string, self uuid.UUID) error {
	existing, err := s.repo.FindActiveByName(ctx, companyID, name)
	if err != nil && !isNotFound(err) {
		return err
	}
	if existing != nil && existing.ID != self {
		return apierror.AlreadyExists("element already exists, name=%s", name)
	}
	return nil
}

func (s *elementService) UpdateBatch(ctx context.Context, list []dto.ElementDTO) dto.ProcessSummary {
	return runBatch(ctx, "element", list,
		func(d dto.ElementDTO) string { return d.Name },
		func(ctx context.Context, d dto.ElementDTO) error {
			_, err := s.Update(ctx, d)
			return err
		})
}

func (s *elementService) Find(ctx context.Context, companyID uuid.UUID, page dto.Pagination, in dto.SearchInput) ([]dto.ElementDTO, error) {
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
	out := make([]dto.ElementDTO, 0, len(list))
	for _, e := range list {
		out = append(out, mapElement(e))
	}
	return out, nil
}

func (s *elementService) FindOneByID(ctx context.Context, id uuid.UUID) (*dto.ElementDTO, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, findErr(err, "element", id)
	}
	out := mapElement(*e)
	return &out, nil
}

// Remove soft-deletes the element unless an active formula or product
// still lists it.
func (s *elementService) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return findErr(err, "element", id)
	}
	n, err := s.repo.CountActiveReferences(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apierror.BeingUsed("element is being used, id=%s", id)
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return usedErr(s.repo.SoftDelete(ctx, tx, id), "element", id)
	})
}
