package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profaxno/siproad-products-api/internal/apierror"
	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/replication"
)

func TestProductTypeUpdate(t *testing.T) {
	f := newFixture(t, 10)

	out, err := f.productTypeSvc.Update(ctx(), dto.ProductTypeDTO{CompanyID: f.companyID.String(), Name: "drinks"})
	require.NoError(t, err)
	assert.Equal(t, "DRINKS", out.Name)

	msg := f.lastSent(t)
	assert.Equal(t, replication.ProcessProductTypeUpdate, msg.Process)
	assert.Equal(t, replication.SourceProducts, msg.Source)

	_, err = f.productTypeSvc.Update(ctx(), dto.ProductTypeDTO{CompanyID: f.companyID.String(), Name: "Drinks"})
	assert.True(t, apierror.IsAlreadyExists(err))
}

func TestProductTypeRemove(t *testing.T) {
	f := newFixture(t, 10)
	out, err := f.productTypeSvc.Update(ctx(), dto.ProductTypeDTO{CompanyID: f.companyID.String(), Name: "drinks"})
	require.NoError(t, err)
	id := uuid.MustParse(out.ID)

	f.productTypes.refs[id] = 1
	assert.True(t, apierror.IsBeingUsed(f.productTypeSvc.Remove(ctx(), id)))

	f.productTypes.refs[id] = 0
	require.NoError(t, f.productTypeSvc.Remove(ctx(), id))

	msg := f.lastSent(t)
	assert.Equal(t, replication.ProcessProductTypeDelete, msg.Process)
	var payload dto.IDPayload
	require.NoError(t, msg.Decode(&payload))
	assert.Equal(t, out.ID, payload.ID)
}

func seedProductTypes(t *testing.T, f *fixture, names ...string) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, len(names))
	for _, n := range names {
		out, err := f.productTypeSvc.Update(ctx(), dto.ProductTypeDTO{CompanyID: f.companyID.String(), Name: n})
		require.NoError(t, err)
		ids = append(ids, uuid.MustParse(out.ID))
	}
	return ids
}

func TestProductTypeSynchronize_Pages(t *testing.T) {
	f := newFixture(t, 2)
	ids := seedProductTypes(t, f, "a", "b", "c", "d", "e")
	require.NoError(t, f.productTypeSvc.Remove(ctx(), ids[3]))

	summary, err := f.productTypeSvc.Synchronize(ctx(), f.companyID)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Rows)
	assert.Equal(t, 3, summary.Batches)
	assert.True(t, summary.Complete)

	require.Len(t, f.replicator.published, 3)
	assert.Len(t, f.replicator.published[0], 2)
	assert.Len(t, f.replicator.published[2], 1)
	assert.Equal(t, replication.ProcessProductTypeDelete, f.replicator.published[1][1].Process)
	assert.Equal(t, replication.ProcessProductTypeUpdate, f.replicator.published[1][0].Process)
}

func TestProductTypeSynchronize_ExactMultipleOfPageSize(t *testing.T) {
	f := newFixture(t, 2)
	seedProductTypes(t, f, "a", "b", "c", "d")

	summary, err := f.productTypeSvc.Synchronize(ctx(), f.companyID)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Rows)
	assert.Equal(t, 2, summary.Batches)
}

func TestProductTypeSynchronize_NoRows(t *testing.T) {
	f := newFixture(t, 2)

	summary, err := f.productTypeSvc.Synchronize(ctx(), f.companyID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Rows)
	assert.Equal(t, 0, summary.Batches)
	assert.True(t, summary.Complete)
	assert.Empty(t, f.replicator.published)
}

func TestProductTypeSynchronize_StopsOnPublishFailure(t *testing.T) {
	f := newFixture(t, 2)
	seedProductTypes(t, f, "a", "b", "c", "d", "e")
	f.replicator.failOn = 2

	summary, err := f.productTypeSvc.Synchronize(ctx(), f.companyID)
	require.ErrorIs(t, err, errBrokerDown)
	assert.Equal(t, 1, summary.Batches)
	assert.Equal(t, 2, summary.Rows)
	assert.False(t, summary.Complete)
	assert.Equal(t, 2, f.replicator.calls, "no page is published after the failure")
}

func TestSynchronize_WithoutReplicator(t *testing.T) {
	f := newFixture(t, 2)
	svc := NewProductTypeService(f.productTypes, f.companies, nil, 2)
	_, err := svc.Synchronize(ctx(), f.companyID)
	assert.ErrorIs(t, err, errNoReplicator)
}
