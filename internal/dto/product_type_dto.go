package dto

type ProductTypeDTO struct {
	ID        string `json:"id,omitempty" validate:"omitempty,uuid"`
	CompanyID string `json:"companyId"    validate:"required,uuid"`
	Name      string `json:"name"         validate:"required,max=45"`
	Active    bool   `json:"active"`
}
