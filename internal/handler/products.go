package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/profaxno/siproad-products-api/internal/apierror"
	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/service"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

func (h *ProductsHandler) Update(c *gin.Context) {
	var req dto.ProductDTO
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), req)
	if err != nil {
		respondError(c, "product update", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) UpdateBatch(c *gin.Context) {
	list, ok := bindBatch[dto.ProductDTO](c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.UpdateBatch(c.Request.Context(), list))
}

func (h *ProductsHandler) Find(c *gin.Context) {
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
		respondError(c, "product find", err)
		return
	}
	respondList(c, list)
}

func (h *ProductsHandler) FindByValue(c *gin.Context) {
	companyID, ok := uuidParam(c, "companyId")
	if !ok {
		return
	}
	list, err := h.svc.Find(c.Request.Context(), companyID, dto.Pagination{}, dto.SearchInput{Search: c.Param("value")})
	if err != nil {
		respondError(c, "product findByValue", err)
		return
	}
	respondList(c, list)
}

// SearchByValues matches name or code and optionally a product type.
func (h *ProductsHandler) SearchByValues(c *gin.Context) {
	companyID, ok := uuidParam(c, "companyId")
	if !ok {
		return
	}
	var page dto.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if !validateStruct(c, &page) {
		return
	}
	var in dto.ProductSearchInput
	if !bindAndValidate(c, &in) {
		return
	}
	list, err := h.svc.SearchByValues(c.Request.Context(), companyID, page, in)
	if err != nil {
		respondError(c, "product searchByValues", err)
		return
	}
	respondList(c, list)
}

func (h *ProductsHandler) FindOne(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.FindOneByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "product findOne", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Remove(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), id); err != nil {
		respondError(c, "product remove", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "deleted"})
}

func (h *ProductsHandler) Synchronize(c *gin.Context) {
	companyID, ok := uuidParam(c, "companyId")
	if !ok {
		return
	}
	summary, err := h.svc.Synchronize(c.Request.Context(), companyID)
	if err != nil {
		respondSyncError(c, "product synchronize", summary, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
