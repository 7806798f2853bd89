package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/service"
)

// CompaniesHandler exposes the replicated company table for support
// tooling; the admin service remains the owner of these rows.
type CompaniesHandler struct{ svc service.CompanyService }

func NewCompaniesHandler(svc service.CompanyService) *CompaniesHandler {
	return &CompaniesHandler{svc: svc}
}

func (h *CompaniesHandler) Update(c *gin.Context) {
	var req dto.CompanyDTO
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), req)
	if err != nil {
		respondError(c, "company update", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CompaniesHandler) FindOne(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "company findOne", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CompaniesHandler) Remove(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), id); err != nil {
		respondError(c, "company remove", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "deleted"})
}
