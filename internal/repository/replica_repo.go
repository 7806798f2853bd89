package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/profaxno/siproad-products-api/internal/model"
)

// ReplicaRepository writes the products-sales copy of the catalog. Every
// operation is idempotent: upserts are keyed by the source id and deleting
// an unknown id succeeds without touching anything.
type ReplicaRepository interface {
	UpsertProduct(ctx context.Context, p *model.ReplicaProduct) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	UpsertFormula(ctx context.Context, f *model.ReplicaFormula) error
	DeleteFormula(ctx context.Context, id uuid.UUID) error
	UpsertProductType(ctx context.Context, p *model.ReplicaProductType) error
	DeleteProductType(ctx context.Context, id uuid.UUID) error
	FindProduct(ctx context.Context, id uuid.UUID) (*model.ReplicaProduct, error)
}

type replicaRepo struct{ db *gorm.DB }

func NewReplicaRepository(db *gorm.DB) ReplicaRepository {
	return &replicaRepo{db: db}
}

func upsert[T any](ctx context.Context, db *gorm.DB, row *T) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(row).Error
}

func markDeleted[T any](ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).Model(new(T)).
		Where("id = ?", id).
		Updates(map[string]any{"active": false, "replicated_at": time.Now().UTC()}).Error
}

func (r *replicaRepo) UpsertProduct(ctx context.Context, p *model.ReplicaProduct) error {
	p.ReplicatedAt = time.Now().UTC()
	return upsert(ctx, r.db, p)
}

func (r *replicaRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return markDeleted[model.ReplicaProduct](ctx, r.db, id)
}

func (r *replicaRepo) UpsertFormula(ctx context.Context, f *model.ReplicaFormula) error {
	f.ReplicatedAt = time.Now().UTC()
	return upsert(ctx, r.db, f)
}

func (r *replicaRepo) DeleteFormula(ctx context.Context, id uuid.UUID) error {
	return markDeleted[model.ReplicaFormula](ctx, r.db, id)
}

func (r *replicaRepo) UpsertProductType(ctx context.Context, p *model.ReplicaProductType) error {
	p.ReplicatedAt = time.Now().UTC()
	return upsert(ctx, r.db, p)
}

func (r *replicaRepo) DeleteProductType(ctx context.Context, id uuid.UUID) error {
	return markDeleted[model.ReplicaProductType](ctx, r.db, id)
}

func (r *replicaRepo) FindProduct(ctx context.Context, id uuid.UUID) (*model.ReplicaProduct, error) {
	var p model.ReplicaProduct
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
