// Package repository holds the gorm-backed stores of the catalog. Every
// write takes an optional *gorm.DB transaction; nil runs on the base pool.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgForeignKeyViolation is SQLSTATE 23503.
const pgForeignKeyViolation = "23503"

// Query narrows list reads. Search matches an exact id or name, SearchList
// matches names containing any of its terms.
type Query struct {
	Search     string
	SearchList []string
	Limit      int
	Offset     int
}

func (q Query) apply(db *gorm.DB) *gorm.DB {
	if q.Search != "" {
		if id, err := uuid.Parse(q.Search); err == nil {
			db = db.Where("id = ?", id)
		} else {
			db = db.Where("name = ?", strings.ToUpper(q.Search))
		}
	}
	if len(q.SearchList) > 0 {
		parts := make([]string, 0, len(q.SearchList))
		args := make([]any, 0, len(q.SearchList))
		for _, term := range q.SearchList {
			parts = append(parts, "name LIKE ?")
			args = append(args, "%"+strings.ToUpper(term)+"%")
		}
		db = db.Where("("+strings.Join(parts, " OR ")+")", args...)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}
	return db
}

// use picks the transaction when one is in flight.
func use(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// IsForeignKeyViolation reports whether err is a referential integrity
// failure, either already translated by gorm or raw from pgx.
func IsForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// ErrReferenced is returned by deletes and replaces that hit a foreign key.
var ErrReferenced = errors.New("row is referenced by another row")

func translate(err error) error {
	if err != nil && IsForeignKeyViolation(err) {
		return errors.Join(ErrReferenced, err)
	}
	return err
}
