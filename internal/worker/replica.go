package worker

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/model"
	"github.com/profaxno/siproad-products-api/internal/replication"
	"github.com/profaxno/siproad-products-api/internal/repository"
)

// NewReplicaRegistry keeps the products-sales read model in step with the
// catalog. Every handler is idempotent, so a redelivered message leaves the
// replica unchanged.
func NewReplicaRegistry(repo repository.ReplicaRepository) Registry {
	return Registry{
		replication.ProcessProductUpdate: func(ctx context.Context, msg replication.Message) error {
			var d dto.ProductDTO
			if err := decodeValid(msg, &d); err != nil {
				return err
			}
			row, err := replicaProduct(d)
			if err != nil {
				return Permanent(err)
			}
			return repo.UpsertProduct(ctx, row)
		},
		replication.ProcessProductDelete: func(ctx context.Context, msg replication.Message) error {
			id, err := decodeID(msg)
			if err != nil {
				return err
			}
			return repo.DeleteProduct(ctx, id)
		},
		replication.ProcessFormulaUpdate: func(ctx context.Context, msg replication.Message) error {
			var d dto.FormulaDTO
			if err := decodeValid(msg, &d); err != nil {
				return err
			}
			row, err := replicaFormula(d)
			if err != nil {
				return Permanent(err)
			}
			return repo.UpsertFormula(ctx, row)
		},
		replication.ProcessFormulaDelete: func(ctx context.Context, msg replication.Message) error {
			id, err := decodeID(msg)
			if err != nil {
				return err
			}
			return repo.DeleteFormula(ctx, id)
		},
		replication.ProcessProductTypeUpdate: func(ctx context.Context, msg replication.Message) error {
			var d dto.ProductTypeDTO
			if err := decodeValid(msg, &d); err != nil {
				return err
			}
			id, err := uuid.Parse(d.ID)
			if err != nil {
				return Permanent(err)
			}
			return repo.UpsertProductType(ctx, &model.ReplicaProductType{
				ID:           id,
				CompanyID:    uuid.MustParse(d.CompanyID),
				Name:         d.Name,
				Active:       true,
				ReplicatedAt: time.Now().UTC(),
			})
		},
		replication.ProcessProductTypeDelete: func(ctx context.Context, msg replication.Message) error {
			id, err := decodeID(msg)
			if err != nil {
				return err
			}
			return repo.DeleteProductType(ctx, id)
		},
	}
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func replicaProduct(d dto.ProductDTO) (*model.ReplicaProduct, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	var composition any = d.ElementList
	if d.HasFormula {
		composition = d.FormulaList
	}
	doc, err := json.Marshal(composition)
	if err != nil {
		return nil, err
	}

	row := &model.ReplicaProduct{
		ID:           id,
		CompanyID:    uuid.MustParse(d.CompanyID),
		Name:         d.Name,
		Code:         optional(d.Code),
		Description:  optional(d.Description),
		ImageURL:     optional(d.ImageURL),
		Cost:         d.Cost,
		Price:        d.Price,
		HasFormula:   d.HasFormula,
		Composition:  datatypes.JSON(doc),
		Active:       true,
		ReplicatedAt: time.Now().UTC(),
	}
	if d.ProductTypeID != "" {
		ptID := uuid.MustParse(d.ProductTypeID)
		row.ProductTypeID = &ptID
	}
	return row, nil
}

func replicaFormula(d dto.FormulaDTO) (*model.ReplicaFormula, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	doc, err := json.Marshal(d.ElementList)
	if err != nil {
		return nil, err
	}
	return &model.ReplicaFormula{
		ID:           id,
		CompanyID:    uuid.MustParse(d.CompanyID),
		Name:         d.Name,
		Cost:         d.Cost,
		Composition:  datatypes.JSON(doc),
		Active:       true,
		ReplicatedAt: time.Now().UTC(),
	}, nil
}
