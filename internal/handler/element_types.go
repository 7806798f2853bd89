package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/service"
)

type ElementTypesHandler struct{ svc service.ElementTypeService }

func NewElementTypesHandler(svc service.ElementTypeService) *ElementTypesHandler {
	return &ElementTypesHandler{svc: svc}
}

func (h *ElementTypesHandler) Update(c *gin.Context) {
	var req dto.ElementTypeDTO
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), req)
	if err != nil {
		respondError(c, "elementType update", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ElementTypesHandler) UpdateBatch(c *gin.Context) {
	list, ok := bindBatch[dto.ElementTypeDTO](c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.UpdateBatch(c.Request.Context(), list))
}

func (h *ElementTypesHandler) Find(c *gin.Context) {
	companyID, ok := uuidParam(c, "companyId")
	if !ok {
		return
	}
	page, in, ok := bindList(c)
	if !ok {
		return
	}
	list, err := h.svc.Find(c.Request.Context(), companyID, page, in)
	if err != nil {
		respondError(c, "elementType find", err)
		return
	}
	respondList(c, list)
}

func (h *ElementTypesHandler) FindByValue(c *gin.Context) {
	companyID, ok := uuidParam(c, "companyId")
	if !ok {
		return
	}
	list, err := h.svc.Find(c.Request.Context(), companyID, dto.Pagination{}, dto.SearchInput{Search: c.Param("value")})
	if err != nil {
		respondError(c, "elementType findByValue", err)
		return
	}
	respondList(c, list)
}

func (h *ElementTypesHandler) FindOne(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.FindOneByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "elementType findOne", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ElementTypesHandler) Remove(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), id); err != nil {
		respondError(c, "elementType remove", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "deleted"})
}
