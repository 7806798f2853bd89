package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/profaxno/siproad-products-api/internal/apierror"
)

// Line is one (component, qty) entry of a composition.
type Line struct {
	ComponentID uuid.UUID
	Qty         float64
}

// Aggregation is the outcome of costing a composition.
type Aggregation[T any] struct {
	Total    decimal.Decimal
	Resolved map[uuid.UUID]T
}

// DistinctIDs returns the component ids of lines in first-seen order.
func DistinctIDs(lines []Line) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ComponentID]; ok {
			continue
		}
		seen[l.ComponentID] = struct{}{}
		ids = append(ids, l.ComponentID)
	}
	return ids
}

// MergeLines folds repeated components into one line with the summed qty,
// keeping the first-seen order.
func MergeLines(lines []Line) []Line {
	idx := make(map[uuid.UUID]int, len(lines))
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if i, ok := idx[l.ComponentID]; ok {
			out[i].Qty += l.Qty
			continue
		}
		idx[l.ComponentID] = len(out)
		out = append(out, l)
	}
	return out
}

// Aggregate costs lines against the components found by a single batched
// lookup. Every distinct component id must be among found, otherwise the
// missing ids are reported in input order and nothing is costed. The total
// is the sum of qty times unit cost over all lines.
func Aggregate[T any](entity string, lines []Line, found []T, key func(T) uuid.UUID, unitCost func(T) decimal.Decimal) (*Aggregation[T], error) {
	resolved := make(map[uuid.UUID]T, len(found))
	for _, c := range found {
		resolved[key(c)] = c
	}

	var missing []string
	for _, id := range DistinctIDs(lines) {
		if _, ok := resolved[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, &apierror.MissingIDsError{Entity: entity, IDs: missing}
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(decimal.NewFromFloat(l.Qty).Mul(unitCost(resolved[l.ComponentID])))
	}
	return &Aggregation[T]{Total: total, Resolved: resolved}, nil
}
