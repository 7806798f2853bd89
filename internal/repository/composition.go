package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const insertBatchSize = 200

// replaceChildren swaps the whole child set of a parent inside tx: it loads
// the current rows, deletes them and bulk inserts rows. An empty rows slice
// leaves the current children untouched, so omitting a composition never
// clears it.
func replaceChildren[T any](ctx context.Context, tx *gorm.DB, parentColumn string, parentID uuid.UUID, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	db := tx.WithContext(ctx)

	var existing []T
	if err := db.Where(parentColumn+" = ?", parentID).Find(&existing).Error; err != nil {
		return err
	}
	if len(existing) > 0 {
		if err := db.Delete(&existing).Error; err != nil {
			return translate(err)
		}
	}
	return translate(db.CreateInBatches(rows, insertBatchSize).Error)
}

// deleteChildren removes every child of a parent. Used when a product
// switches composition kind and the other line set must go.
func deleteChildren[T any](ctx context.Context, tx *gorm.DB, parentColumn string, parentID uuid.UUID) error {
	return translate(tx.WithContext(ctx).Where(parentColumn+" = ?", parentID).Delete(new(T)).Error)
}

// inTx runs fn in tx, opening one on db when the caller has none.
func inTx(ctx context.Context, db, tx *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx != nil {
		return fn(tx)
	}
	return db.WithContext(ctx).Transaction(fn)
}
