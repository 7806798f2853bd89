package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profaxno/siproad-products-api/internal/apierror"
	"github.com/profaxno/siproad-products-api/internal/model"
)

func decimalOf(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func elementKey(e model.Element) uuid.UUID        { return e.ID }
func elementCost(e model.Element) decimal.Decimal { return e.Cost }

func TestAggregate_SumsQtyTimesUnitCost(t *testing.T) {
	e1 := model.Element{ID: uuid.New(), Cost: decimalOf(10)}
	e2 := model.Element{ID: uuid.New(), Cost: decimalOf(5)}
	lines := []Line{{ComponentID: e1.ID, Qty: 2}, {ComponentID: e2.ID, Qty: 3}}

	agg, err := Aggregate("elements", lines, []model.Element{e2, e1}, elementKey, elementCost)
	require.NoError(t, err)
	assert.Equal(t, "35", agg.Total.String())
	assert.Len(t, agg.Resolved, 2)
}

func TestAggregate_FractionalQty(t *testing.T) {
	e1 := model.Element{ID: uuid.New(), Cost: decimal.RequireFromString("12.5")}
	agg, err := Aggregate("elements", []Line{{ComponentID: e1.ID, Qty: 0.25}}, []model.Element{e1}, elementKey, elementCost)
	require.NoError(t, err)
	assert.Equal(t, "3.125", agg.Total.String())
}

func TestAggregate_ReportsOnlyMissingIDs(t *testing.T) {
	e1 := model.Element{ID: uuid.New(), Cost: decimalOf(10)}
	e9 := uuid.New()
	lines := []Line{{ComponentID: e1.ID, Qty: 1}, {ComponentID: e9, Qty: 1}}

	agg, err := Aggregate("elements", lines, []model.Element{e1}, elementKey, elementCost)
	assert.Nil(t, agg)
	require.Error(t, err)
	assert.True(t, apierror.IsNotFound(err))

	var missing *apierror.MissingIDsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{e9.String()}, missing.IDs)
	assert.Equal(t, "elements", missing.Entity)
}

func TestAggregate_EmptyComposition(t *testing.T) {
	agg, err := Aggregate("elements", nil, nil, elementKey, elementCost)
	require.NoError(t, err)
	assert.True(t, agg.Total.IsZero())
}

func TestMergeLines_SumsRepeatedComponents(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	got := MergeLines([]Line{{a, 1}, {b, 2}, {a, 3}})
	assert.Equal(t, []Line{{a, 4}, {b, 2}}, got)
	assert.Equal(t, []uuid.UUID{a, b}, DistinctIDs(got))
}

func TestExpandFormula_ScalesLinesAndComputesCost(t *testing.T) {
	flour := &model.Element{ID: uuid.New(), Name: "FLOUR", Cost: decimalOf(10), Unit: "KG"}
	salt := &model.Element{ID: uuid.New(), Name: "SALT", Cost: decimalOf(5), Unit: "KG"}
	f := &model.Formula{
		Cost: decimalOf(999), // stale stored cost
		Lines: []model.FormulaElement{
			{ElementID: flour.ID, Qty: 2, Element: flour},
			{ElementID: salt.ID, Qty: 3, Element: salt},
		},
	}

	lines, cost := ExpandFormula(f, 4)
	assert.Equal(t, "35", cost.String())
	require.Len(t, lines, 2)
	assert.Equal(t, 8.0, lines[0].Qty)
	assert.Equal(t, 12.0, lines[1].Qty)
	assert.Equal(t, "FLOUR", lines[0].Name)
}

func TestExpandFormula_NoLinesUsesStoredCost(t *testing.T) {
	lines, cost := ExpandFormula(&model.Formula{Cost: decimalOf(42)}, 2)
	assert.Nil(t, lines)
	assert.Equal(t, "42", cost.String())
}
