package dto

import "github.com/shopspring/decimal"

// ProductDTO is both the write request and the read shape of a product.
// HasFormula selects which list carries the composition.
type ProductDTO struct {
	ID            string              `json:"id,omitempty"            validate:"omitempty,uuid"`
	CompanyID     string              `json:"companyId"               validate:"required,uuid"`
	ProductTypeID string              `json:"productTypeId,omitempty" validate:"omitempty,uuid"`
	Name          string              `json:"name"                    validate:"required,max=50"`
	Code          string              `json:"code,omitempty"          validate:"omitempty,max=45"`
	Description   string              `json:"description,omitempty"   validate:"omitempty,max=100"`
	ImageURL      string              `json:"imageUrl,omitempty"      validate:"omitempty,max=255"`
	Cost          decimal.Decimal     `json:"cost"                    validate:"gte=0"`
	Price         decimal.Decimal     `json:"price"                   validate:"gte=0"`
	HasFormula    bool                `json:"hasFormula"`
	Active        bool                `json:"active"`
	ProductType   *ProductTypeDTO     `json:"productType,omitempty"`
	ElementList   []ProductElementDTO `json:"elementList,omitempty" validate:"omitempty,dive"`
	FormulaList   []ProductFormulaDTO `json:"formulaList,omitempty" validate:"omitempty,dive"`
}

// ProductElementDTO is a direct element line; Cost is the unit cost.
type ProductElementDTO struct {
	ID   string          `json:"id"  validate:"required,uuid"`
	Qty  float64         `json:"qty" validate:"gt=0"`
	Name string          `json:"name,omitempty"`
	Cost decimal.Decimal `json:"cost"`
	Unit string          `json:"unit,omitempty"`
}

// ProductFormulaDTO is a formula line. UnitCost is the formula cost and
// Cost is UnitCost times Qty. ElementList is the formula's breakdown with
// quantities multiplied by Qty.
type ProductFormulaDTO struct {
	ID          string              `json:"id"  validate:"required,uuid"`
	Qty         float64             `json:"qty" validate:"gt=0"`
	Name        string              `json:"name,omitempty"`
	UnitCost    decimal.Decimal     `json:"unitCost"`
	Cost        decimal.Decimal     `json:"cost"`
	ElementList []FormulaElementDTO `json:"elementList,omitempty" validate:"-"`
}

// ProductSearchInput drives searchByValues.
type ProductSearchInput struct {
	NameCode      string `json:"nameCode"      form:"nameCode"`
	ProductTypeID string `json:"productTypeId" form:"productTypeId" validate:"omitempty,uuid"`
}
