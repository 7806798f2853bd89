package service

import (
	"fmt"

	"github.com/profaxno/siproad-products-api/internal/dto"
)

// CompositionKind says which component type a composition's lines name.
type CompositionKind int

const (
	ElementLines CompositionKind = iota + 1
	FormulaLines
)

func (k CompositionKind) String() string {
	switch k {
	case ElementLines:
		return "elements"
	case FormulaLines:
		return "formulas"
	default:
		return fmt.Sprintf("CompositionKind(%d)", int(k))
	}
}

// Composition is the requested line set of a formula or product. An empty
// composition means "leave the stored lines as they are".
type Composition struct {
	Kind  CompositionKind
	Lines []Line
}

func (c Composition) Empty() bool { return len(c.Lines) == 0 }

func formulaComposition(list []dto.FormulaElementDTO) (Composition, error) {
	lines := make([]Line, 0, len(list))
	for _, l := range list {
		id, err := parseID("element id", l.ID)
		if err != nil {
			return Composition{}, err
		}
		lines = append(lines, Line{ComponentID: id, Qty: l.Qty})
	}
	return Composition{Kind: ElementLines, Lines: MergeLines(lines)}, nil
}

// productComposition reads the list selected by HasFormula; the other list
// is ignored.
func productComposition(d dto.ProductDTO) (Composition, error) {
	if !d.HasFormula {
		lines := make([]Line, 0, len(d.ElementList))
		for _, l := range d.ElementList {
			id, err := parseID("element id", l.ID)
			if err != nil {
				return Composition{}, err
			}
			lines = append(lines, Line{ComponentID: id, Qty: l.Qty})
		}
		return Composition{Kind: ElementLines, Lines: MergeLines(lines)}, nil
	}

	lines := make([]Line, 0, len(d.FormulaList))
	for _, l := range d.FormulaList {
		id, err := parseID("formula id", l.ID)
		if err != nil {
			return Composition{}, err
		}
		lines = append(lines, Line{ComponentID: id, Qty: l.Qty})
	}
	return Composition{Kind: FormulaLines, Lines: MergeLines(lines)}, nil
}
