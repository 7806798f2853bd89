package dto

import "github.com/shopspring/decimal"

type ElementDTO struct {
	ID        string          `json:"id,omitempty" validate:"omitempty,uuid"`
	CompanyID string          `json:"companyId"    validate:"required,uuid"`
	Name      string          `json:"name"         validate:"required,max=45"`
	Cost      decimal.Decimal `json:"cost"         validate:"gte=0"`
	Stock     float64         `json:"stock"`
	Unit      string          `json:"unit"         validate:"required,max=5"`
	Active    bool            `json:"active"`

	ElementTypeID string          `json:"elementTypeId,omitempty" validate:"omitempty,uuid"`
	ElementType   *ElementTypeDTO `json:"elementType,omitempty"`
}
