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

// ElementTypeService defines business operations for element types. Like
// elements, types stay local to this service.
type ElementTypeService interface {
	Update(ctx context.Context, d dto.ElementTypeDTO) (*dto.ElementTypeDTO, error)
	UpdateBatch(ctx context.Context, list []dto.ElementTypeDTO) dto.ProcessSummary
	Find(ctx context.Context, companyID uuid.UUID, page dto.Pagination, in dto.SearchInput) ([]dto.ElementTypeDTO, error)
	FindOneByID(ctx context.Context, id uuid.UUID) (*dto.ElementTypeDTO, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type elementTypeService struct {
	repo      repository.ElementTypeRepository
	companies repository.CompanyRepository
	limit     int
}

func NewElementTypeService(repo repository.ElementTypeRepository, companies repository.CompanyRepository, limit int) ElementTypeService {
	return &elementTypeService{repo: repo, companies: companies, limit: pageSize(limit)}
}

func (s *elementTypeService) Update(ctx context.Context, d dto.ElementTypeDTO) (*dto.ElementTypeDTO, error) {
	start := time.Now()
	name := strings.ToUpper(strings.TrimSpace(d.Name))

	companyID, err := requireCompany(ctx, s.companies, d.CompanyID)
	if err != nil {
		return nil, err
	}

	var t *model.ElementType
	if d.ID == "" {
		if err := s.ensureNameFree(ctx, companyID, name, uuid.Nil); err != nil {
			return nil, err
		}
		t = &model.ElementType{CompanyID: companyID}
	} else {
		id, err := parseID("id", d.ID)
		if err != nil {
			return nil, err
		}
		if t, err = s.repo.FindByID(ctx, id); err != nil {
			return nil, findErr(err, "elementType", id)
		}
		if t.Name != name {
			if err := s.ensureNameFree(ctx, t.CompanyID, name, t.ID); err != nil {
				return nil, err
			}
		}
	}
	t.Name = name
	t.Active = true

	if err := s.repo.Save(ctx, nil, t); err != nil {
		return nil, err
	}

	out := mapElementType(*t)
	log.Info().Str("id", out.ID).Str("name", out.Name).Dur("runtime", time.Since(start)).Msg("elementType update executed")
	return &out, nil
}

func (s *elementTypeService) ensureNameFree(ctx context.Context, companyID uuid.UUID, name string, self uuid.UUID) error {
	existing, err := s.repo.FindActiveByName(ctx, companyID, name)
	if err != nil && !isNotFound(err) {
		return err
	}
	if existing != nil && existing.ID != self {
		return apierror.AlreadyExists("elementType already exists, name=%s", name)
	}
	return nil
}

func (s *elementTypeService) UpdateBatch(ctx context.Context, list []dto.ElementTypeDTO) dto.ProcessSummary {
	return runBatch(ctx, "elementType", list,
		func(d dto.ElementTypeDTO) string { return d.Name },
		func(ctx context.Context, d dto.ElementTypeDTO) error {
			_, err := s.Update(ctx, d)
			return err
		})
}

func (s *elementTypeService) Find(ctx context.Context, companyID uuid.UUID, page dto.Pagination, in dto.SearchInput) ([]dto.ElementTypeDTO, error) {
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
	out := make([]dto.ElementTypeDTO, 0, len(list))
	for _, t := range list {
		out = append(out, mapElementType(t))
	}
	return out, nil
}

func (s *elementTypeService) FindOneByID(ctx context.Context, id uuid.UUID) (*dto.ElementTypeDTO, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, findErr(err, "elementType", id)
	}
	out := mapElementType(*t)
	return &out, nil
}

// Remove soft-deletes the type unless an active element is classified by it.
func (s *elementTypeService) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return findErr(err, "elementType", id)
	}
	n, err := s.repo.CountActiveReferences(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apierror.BeingUsed("elementType is being used, id=%s", id)
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return usedErr(s.repo.SoftDelete(ctx, tx, id), "elementType", id)
	})
}
