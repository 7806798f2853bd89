package worker

import (
	"context"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/profaxno/siproad-products-api/internal/apierror"
	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/replication"
	"github.com/profaxno/siproad-products-api/internal/service"
)

// decodeValid decodes and validates a payload. Both failures are permanent.
func decodeValid(msg replication.Message, v any) error {
	if err := decode(msg, v); err != nil {
		return err
	}
	if err := dto.Validate.Struct(v); err != nil {
		return Permanent(pkgerrors.Wrapf(err, "invalid %s payload", msg.Process))
	}
	return nil
}

func decodeID(msg replication.Message) (uuid.UUID, error) {
	var payload dto.IDPayload
	if err := decodeValid(msg, &payload); err != nil {
		return uuid.Nil, err
	}
	return uuid.MustParse(payload.ID), nil
}

// NewReceptionRegistry applies company changes published by the admin
// service to the local company table.
func NewReceptionRegistry(companies service.CompanyService) Registry {
	return Registry{
		replication.ProcessCompanyUpdate: func(ctx context.Context, msg replication.Message) error {
			var d dto.CompanyDTO
			if err := decodeValid(msg, &d); err != nil {
				return err
			}
			_, err := companies.Update(ctx, d)
			if apierror.IsValidation(err) {
				return Permanent(err)
			}
			return err
		},
		replication.ProcessCompanyDelete: func(ctx context.Context, msg replication.Message) error {
			id, err := decodeID(msg)
			if err != nil {
				return err
			}
			err = companies.Remove(ctx, id)
			switch {
			case apierror.IsNotFound(err):
				log.Warn().Str("id", id.String()).Msg("company delete: unknown company, skipping")
				return nil
			case apierror.IsBeingUsed(err):
				return Permanent(err)
			}
			return err
		},
	}
}
