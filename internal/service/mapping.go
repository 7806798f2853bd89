package service

import (
	"github.com/shopspring/decimal"

	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/model"
)

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func mapElement(e model.Element) dto.ElementDTO {
	out := dto.ElementDTO{
		ID:        e.ID.String(),
		CompanyID: e.CompanyID.String(),
		Name:      e.Name,
		Cost:      e.Cost,
		Stock:     e.Stock,
		Unit:      e.Unit,
		Active:    e.Active,
	}
	if e.ElementTypeID != nil {
		out.ElementTypeID = e.ElementTypeID.String()
	}
	if e.ElementType != nil {
		t := mapElementType(*e.ElementType)
		out.ElementType = &t
	}
	return out
}

func mapElementType(t model.ElementType) dto.ElementTypeDTO {
	return dto.ElementTypeDTO{
		ID:        t.ID.String(),
		CompanyID: t.CompanyID.String(),
		Name:      t.Name,
		Active:    t.Active,
	}
}

func mapProductType(p model.ProductType) dto.ProductTypeDTO {
	return dto.ProductTypeDTO{
		ID:        p.ID.String(),
		CompanyID: p.CompanyID.String(),
		Name:      p.Name,
		Active:    p.Active,
	}
}

// ExpandFormula returns the element breakdown of a formula, each line
// scaled by factor, together with the unit cost of the formula computed
// from its loaded lines. A formula whose lines are not loaded reports its
// stored cost.
func ExpandFormula(f *model.Formula, factor float64) ([]dto.FormulaElementDTO, decimal.Decimal) {
	if len(f.Lines) == 0 {
		return nil, f.Cost
	}
	lines := make([]dto.FormulaElementDTO, 0, len(f.Lines))
	cost := decimal.Zero
	for _, l := range f.Lines {
		if l.Element == nil {
			return nil, f.Cost
		}
		cost = cost.Add(decimal.NewFromFloat(l.Qty).Mul(l.Element.Cost))
		lines = append(lines, dto.FormulaElementDTO{
			ID:   l.ElementID.String(),
			Qty:  l.Qty * factor,
			Name: l.Element.Name,
			Cost: l.Element.Cost,
			Unit: l.Element.Unit,
		})
	}
	return lines, cost
}

// formulaUnitCost is the cost a formula contributes per unit of qty.
func formulaUnitCost(f model.Formula) decimal.Decimal {
	_, cost := ExpandFormula(&f, 1)
	return cost
}

func mapFormula(f *model.Formula) dto.FormulaDTO {
	lines, _ := ExpandFormula(f, 1)
	return dto.FormulaDTO{
		ID:          f.ID.String(),
		CompanyID:   f.CompanyID.String(),
		Name:        f.Name,
		Cost:        f.Cost,
		Active:      f.Active,
		ElementList: lines,
	}
}

func mapProduct(p *model.Product) dto.ProductDTO {
	out := dto.ProductDTO{
		ID:          p.ID.String(),
		CompanyID:   p.CompanyID.String(),
		Name:        p.Name,
		Code:        strOrEmpty(p.Code),
		Description: strOrEmpty(p.Description),
		ImageURL:    strOrEmpty(p.ImageURL),
		Cost:        p.Cost,
		Price:       p.Price,
		HasFormula:  p.HasFormula,
		Active:      p.Active,
	}
	if p.ProductTypeID != nil {
		out.ProductTypeID = p.ProductTypeID.String()
	}
	if p.ProductType != nil {
		pt := mapProductType(*p.ProductType)
		out.ProductType = &pt
	}

	for _, l := range p.ElementLines {
		line := dto.ProductElementDTO{ID: l.ElementID.String(), Qty: l.Qty}
		if l.Element != nil {
			line.Name = l.Element.Name
			line.Cost = l.Element.Cost
			line.Unit = l.Element.Unit
		}
		out.ElementList = append(out.ElementList, line)
	}

	for _, l := range p.FormulaLines {
		line := dto.ProductFormulaDTO{ID: l.FormulaID.String(), Qty: l.Qty}
		if l.Formula != nil {
			elements, unitCost := ExpandFormula(l.Formula, l.Qty)
			line.Name = l.Formula.Name
			line.UnitCost = unitCost
			line.Cost = unitCost.Mul(decimal.NewFromFloat(l.Qty))
			line.ElementList = elements
		}
		out.FormulaList = append(out.FormulaList, line)
	}
	return out
}
