package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/infra"
	"github.com/profaxno/siproad-products-api/internal/model"
	"github.com/profaxno/siproad-products-api/internal/replication"
	"github.com/profaxno/siproad-products-api/internal/repository"
)

func openReplicaDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, infra.MigrateReplica(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestReplicaRegistry_ProductRedeliveryIsIdempotent(t *testing.T) {
	db := openReplicaDB(t)
	q := &memQueue{}
	pool := newTestPool(q, NewReplicaRegistry(repository.NewReplicaRepository(db)))

	product := dto.ProductDTO{
		ID:          uuid.NewString(),
		CompanyID:   uuid.NewString(),
		Name:        "LOAF",
		Code:        "L-1",
		Cost:        decimalOf(140),
		Price:       decimalOf(200),
		HasFormula:  true,
		Active:      true,
		FormulaList: []dto.ProductFormulaDTO{{ID: uuid.NewString(), Qty: 4, Name: "BREAD BASE", UnitCost: decimalOf(35), Cost: decimalOf(140)}},
	}

	pool.Process(context.Background(), delivery(t, replication.ProcessProductUpdate, product, 0))
	pool.Process(context.Background(), delivery(t, replication.ProcessProductUpdate, product, 0))
	require.Len(t, q.acked, 2)

	var rows []model.ReplicaProduct
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "LOAF", rows[0].Name)
	assert.True(t, rows[0].Cost.Equal(decimalOf(140)))
	require.NotNil(t, rows[0].Code)
	assert.Equal(t, "L-1", *rows[0].Code)

	var lines []dto.ProductFormulaDTO
	require.NoError(t, json.Unmarshal(rows[0].Composition, &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, "BREAD BASE", lines[0].Name)

	del := dto.IDPayload{ID: product.ID}
	pool.Process(context.Background(), delivery(t, replication.ProcessProductDelete, del, 0))
	pool.Process(context.Background(), delivery(t, replication.ProcessProductDelete, del, 0))
	assert.Len(t, q.acked, 4)

	var stored model.ReplicaProduct
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.False(t, stored.Active)
}

func TestReplicaRegistry_UpdateAfterChangeOverwrites(t *testing.T) {
	db := openReplicaDB(t)
	q := &memQueue{}
	pool := newTestPool(q, NewReplicaRegistry(repository.NewReplicaRepository(db)))

	formula := dto.FormulaDTO{ID: uuid.NewString(), CompanyID: uuid.NewString(), Name: "BREAD BASE", Cost: decimalOf(35)}
	pool.Process(context.Background(), delivery(t, replication.ProcessFormulaUpdate, formula, 0))
	formula.Cost = decimalOf(40)
	pool.Process(context.Background(), delivery(t, replication.ProcessFormulaUpdate, formula, 0))

	var rows []model.ReplicaFormula
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Cost.Equal(decimalOf(40)))
}

func TestReplicaRegistry_DeleteOfUnknownIDSucceeds(t *testing.T) {
	db := openReplicaDB(t)
	q := &memQueue{}
	pool := newTestPool(q, NewReplicaRegistry(repository.NewReplicaRepository(db)))

	pool.Process(context.Background(), delivery(t, replication.ProcessProductTypeDelete, dto.IDPayload{ID: uuid.NewString()}, 0))

	assert.Len(t, q.acked, 1)
	assert.Empty(t, q.dead)
}

func TestReplicaRegistry_InvalidPayloadDeadLetters(t *testing.T) {
	db := openReplicaDB(t)
	q := &memQueue{}
	pool := newTestPool(q, NewReplicaRegistry(repository.NewReplicaRepository(db)))

	pool.Process(context.Background(), delivery(t, replication.ProcessProductTypeUpdate, dto.ProductTypeDTO{ID: uuid.NewString(), Name: "DRINKS"}, 0))

	assert.Len(t, q.dead, 1, "missing companyId never becomes valid")
	assert.Empty(t, q.retried)
}
