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

// ProductTypeService defines business operations for product types.
type ProductTypeService interface {
	Update(ctx context.Context, d dto.ProductTypeDTO) (*dto.ProductTypeDTO, error)
	UpdateBatch(ctx context.Context, list []dto.ProductTypeDTO) dto.ProcessSummary
	Find(ctx context.Context, companyID uuid.UUID, page dto.Pagination, in dto.SearchInput) ([]dto.ProductTypeDTO, error)
	FindOneByID(ctx context.Context, id uuid.UUID) (*dto.ProductTypeDTO, error)
	Remove(ctx context.Context, id uuid.UUID) error
	Synchronize(ctx context.Context, companyID uuid.UUID) (*dto.SyncSummary, error)
}

type productTypeService struct {
	repo       repository.ProductTypeRepository
	companies  repository.CompanyRepository
	replicator Replicator
	limit      int
}

func NewProductTypeService(repo repository.ProductTypeRepository, companies repository.CompanyRepository, replicator Replicator, limit int) ProductTypeService {
	return &productTypeService{repo: repo, companies: companies, replicator: replicator, limit: pageSize(limit)}
}

func (s *productTypeService) Update(ctx context.Context, d dto.ProductTypeDTO) (*dto.ProductTypeDTO, error) {
	start := time.Now()
	name := strings.ToUpper(strings.TrimSpace(d.Name))

	companyID, err := requireCompany(ctx, s.companies, d.CompanyID)
	if err != nil {
		return nil, err
	}

	var p *model.ProductType
	if d.ID == "" {
		if err := s.ensureNameFree(ctx, companyID, name, uuid.Nil); err != nil {
			return nil, err
		}
		p = &model.ProductType{CompanyID: companyID}
	} else {
		id, err := parseID("id", d.ID)
		if err != nil {
			return nil, err
		}
		if p, err = s.repo.FindByID(ctx, id); err != nil {
			return nil, findErr(err, "productType", id)
		}
		if p.Name != name {
			if err := s.ensureNameFree(ctx, p.CompanyID, name, p.ID); err != nil {
				return nil, err
			}
		}
	}
	p.Name = name
	p.Active = true

	if err := s.repo.Save(ctx, nil, p); err != nil {
		return nil, err
	}

	out := mapProductType(*p)
	if err := replicate(ctx, s.replicator, replication.ProcessProductTypeUpdate, out); err != nil {
		log.Error().Err(err).Str("id", out.ID).Msg("productType update: replication skipped")
	}
	log.Info().Str("id", out.ID).Str("name", out.Name).Dur("runtime", time.Since(start)).Msg("productType update executed")
	return &out, nil
}

func (s *productTypeService) ensureNameFree(ctx context.Context, companyID uuid.UUID, name string, self uuid.UUID) error {
	existing, err := s.repo.FindActiveByName(ctx, companyID, name)
	if err != nil && !isNotFound(err) {
		return err
	}
	if existing != nil && existing.ID != self {
		return apierror.AlreadyExists("productType already exists, name=%s", name)
	}
	return nil
}

func (s *productTypeService) UpdateBatch(ctx context.Context, list []dto.ProductTypeDTO) dto.ProcessSummary {
	return runBatch(ctx, "productType", list,
		func(d dto.ProductTypeDTO) string { return d.Name },
		func(ctx context.Context, d dto.ProductTypeDTO) error {
			_, err := s.Update(ctx, d)
			return err
		})
}

func (s *productTypeService) Find(ctx context.Context, companyID uuid.UUID, page dto.Pagination, in dto.SearchInput) ([]dto.ProductTypeDTO, error) {
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
	out := make([]dto.ProductTypeDTO, 0, len(list))
	for _, p := range list {
		out = append(out, mapProductType(p))
	}
	return out, nil
}

func (s *productTypeService) FindOneByID(ctx context.Context, id uuid.UUID) (*dto.ProductTypeDTO, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, findErr(err, "productType", id)
	}
	out := mapProductType(*p)
	return &out, nil
}

// Remove soft-deletes the type unless an active product is classified by it.
func (s *productTypeService) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return findErr(err, "productType", id)
	}
	n, err := s.repo.CountActiveReferences(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apierror.BeingUsed("productType is being used, id=%s", id)
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return usedErr(s.repo.SoftDelete(ctx, tx, id), "productType", id)
	})
	if err != nil {
		return err
	}
	if err := replicate(ctx, s.replicator, replication.ProcessProductTypeDelete, dto.IDPayload{ID: id.String()}); err != nil {
		log.Error().Err(err).Str("id", id.String()).Msg("productType remove: replication skipped")
	}
	return nil
}

func (s *productTypeService) Synchronize(ctx context.Context, companyID uuid.UUID) (*dto.SyncSummary, error) {
	return synchronize(ctx, s.replicator, "productType", s.limit,
		func(ctx context.Context, limit, offset int) ([]model.ProductType, error) {
			return s.repo.ListByCompany(ctx, companyID, limit, offset)
		},
		func(p model.ProductType) (replication.Message, error) {
			if !p.Active {
				return replication.NewMessage(replication.ProcessProductTypeDelete, dto.IDPayload{ID: p.ID.String()})
			}
			return replication.NewMessage(replication.ProcessProductTypeUpdate, mapProductType(p))
		})
}
