package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/service"
)

type ProductTypesHandler struct{ svc service.ProductTypeService }

func NewProductTypesHandler(svc service.ProductTypeService) *ProductTypesHandler {
	return &ProductTypesHandler{svc: svc}
}

func (h *ProductTypesHandler) Update(c *gin.Context) {
	var req dto.ProductTypeDTO
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), req)
	if err != nil {
		respondError(c, "productType update", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductTypesHandler) UpdateBatch(c *gin.Context) {
	list, ok := bindBatch[dto.ProductTypeDTO](c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.UpdateBatch(c.Request.Context(), list))
}

func (h *ProductTypesHandler) Find(c *gin.Context) {
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
		respondError(c, "productType find", err)
		return
	}
	respondList(c, list)
}

func (h *ProductTypesHandler) FindOne(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.FindOneByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "productType findOne", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductTypesHandler) Remove(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), id); err != nil {
		respondError(c, "productType remove", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "deleted"})
}

func (h *ProductTypesHandler) Synchronize(c *gin.Context) {
	companyID, ok := uuidParam(c, "companyId")
	if !ok {
		return
	}
	summary, err := h.svc.Synchronize(c.Request.Context(), companyID)
	if err != nil {
		respondSyncError(c, "productType synchronize", summary, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
