// Package service holds the catalog business logic. Every write follows the
// same two phases: a local transaction that saves the entity and swaps its
// composition, then a best-effort replication send after commit.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/profaxno/siproad-products-api/internal/apierror"
	"github.com/profaxno/siproad-products-api/internal/repository"
	"github.com/profaxno/siproad-products-api/internal/replication"
)

// Replicator sends committed changes downstream. Send is fire-and-forget,
// Publish blocks and reports transport errors.
type Replicator interface {
	Send(ctx context.Context, msgs ...replication.Message)
	Publish(ctx context.Context, msgs ...replication.Message) error
}

const defaultPageSize = 1000

// runTx executes fn inside a DB transaction if db is non-nil.
// When db is nil (unit tests with stub repos) it calls fn(nil) directly.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apierror.Invalid("invalid %s: %q", field, raw)
	}
	return id, nil
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// findErr turns a repository miss into a NotFound naming entity and id.
func findErr(err error, entity string, id uuid.UUID) error {
	if isNotFound(err) {
		return apierror.NotFound("%s not found, id=%s", entity, id)
	}
	return err
}

// usedErr turns a foreign key failure into IsBeingUsed.
func usedErr(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, repository.ErrReferenced) {
		return apierror.BeingUsed("%s is being used, id=%s", entity, id)
	}
	return err
}

// requireCompany resolves the active owner company of a write.
func requireCompany(ctx context.Context, companies repository.CompanyRepository, raw string) (uuid.UUID, error) {
	id, err := parseID("companyId", raw)
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := companies.FindActiveByID(ctx, id); err != nil {
		return uuid.Nil, findErr(err, "company", id)
	}
	return id, nil
}

// replicate builds one message and hands it to the replicator. A payload
// that cannot be serialised is a programming error, reported but not fatal.
func replicate(ctx context.Context, r Replicator, process replication.Process, payload any) error {
	if r == nil {
		return nil
	}
	msg, err := replication.NewMessage(process, payload)
	if err != nil {
		return fmt.Errorf("build %s message: %w", process, err)
	}
	r.Send(ctx, msg)
	return nil
}

func pageSize(n int) int {
	if n <= 0 {
		return defaultPageSize
	}
	return n
}
