package dto

// CompanyDTO is the payload of COMPANY_UPDATE messages from the admin service.
type CompanyDTO struct {
	ID     string `json:"id"   validate:"required,uuid"`
	Name   string `json:"name" validate:"required,max=50"`
	Active *bool  `json:"active,omitempty"`
}
