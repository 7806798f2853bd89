package dto

import "github.com/shopspring/decimal"

// FormulaDTO is both the write request and the read shape of a formula.
// An omitted or empty ElementList leaves the stored lines untouched.
type FormulaDTO struct {
	ID          string              `json:"id,omitempty" validate:"omitempty,uuid"`
	CompanyID   string              `json:"companyId"    validate:"required,uuid"`
	Name        string              `json:"name"         validate:"required,max=45"`
	Cost        decimal.Decimal     `json:"cost"         validate:"gte=0"`
	Active      bool                `json:"active"`
	ElementList []FormulaElementDTO `json:"elementList,omitempty" validate:"omitempty,dive"`
}

// FormulaElementDTO is one element line. On reads Cost is the element's
// unit cost, and Qty is already scaled when nested under a product formula.
type FormulaElementDTO struct {
	ID   string          `json:"id"   validate:"required,uuid"`
	Qty  float64         `json:"qty"  validate:"gt=0"`
	Name string          `json:"name,omitempty"`
	Cost decimal.Decimal `json:"cost"`
	Unit string          `json:"unit,omitempty"`
}
