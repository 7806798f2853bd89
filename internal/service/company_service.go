package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/model"
	"github.com/profaxno/siproad-products-api/internal/repository"
)

// CompanyService applies company changes replicated from the admin service.
type CompanyService interface {
	// Update upserts the company under the id chosen by the admin service.
	Update(ctx context.Context, d dto.CompanyDTO) (*dto.CompanyDTO, error)
	Remove(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*dto.CompanyDTO, error)
}

type companyService struct {
	repo repository.CompanyRepository
}

func NewCompanyService(repo repository.CompanyRepository) CompanyService {
	return &companyService{repo: repo}
}

func mapCompany(c model.Company) dto.CompanyDTO {
	active := c.Active
	return dto.CompanyDTO{ID: c.ID.String(), Name: c.Name, Active: &active}
}

func (s *companyService) Update(ctx context.Context, d dto.CompanyDTO) (*dto.CompanyDTO, error) {
	id, err := parseID("id", d.ID)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.FindByID(ctx, id)
	switch {
	case isNotFound(err):
		log.Info().Str("id", id.String()).Msg("company update: not found, creating")
		c = &model.Company{ID: id}
	case err != nil:
		return nil, err
	}

	c.Name = strings.ToUpper(strings.TrimSpace(d.Name))
	c.Active = true
	if d.Active != nil {
		c.Active = *d.Active
	}
	if err := s.repo.Save(ctx, nil, c); err != nil {
		return nil, err
	}

	out := mapCompany(*c)
	log.Info().Str("id", out.ID).Str("name", out.Name).Msg("company update executed")
	return &out, nil
}

func (s *companyService) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return findErr(err, "company", id)
	}
	if err := s.repo.SoftDelete(ctx, nil, id); err != nil {
		return usedErr(err, "company", id)
	}
	log.Info().Str("id", id.String()).Msg("company removed")
	return nil
}

func (s *companyService) FindByID(ctx context.Context, id uuid.UUID) (*dto.CompanyDTO, error) {
	c, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		return nil, findErr(err, "company", id)
	}
	out := mapCompany(*c)
	return &out, nil
}
