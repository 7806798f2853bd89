package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/service"
)

type FormulasHandler struct{ svc service.FormulaService }

func NewFormulasHandler(svc service.FormulaService) *FormulasHandler {
	return &FormulasHandler{svc: svc}
}

func (h *FormulasHandler) Update(c *gin.Context) {
	var req dto.FormulaDTO
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), req)
	if err != nil {
		respondError(c, "formula update", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FormulasHandler) UpdateBatch(c *gin.Context) {
	list, ok := bindBatch[dto.FormulaDTO](c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.UpdateBatch(c.Request.Context(), list))
}

func (h *FormulasHandler) Find(c *gin.Context) {
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
		respondError(c, "formula find", err)
		return
	}
	respondList(c, list)
}

func (h *FormulasHandler) FindByValue(c *gin.Context) {
	companyID, ok := uuidParam(c, "companyId")
	if !ok {
		return
	}
	list, err := h.svc.Find(c.Request.Context(), companyID, dto.Pagination{}, dto.SearchInput{Search: c.Param("value")})
	if err != nil {
		respondError(c, "formula findByValue", err)
		return
	}
	respondList(c, list)
}

func (h *FormulasHandler) FindOne(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.FindOneByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "formula findOne", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FormulasHandler) Remove(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), id); err != nil {
		respondError(c, "formula remove", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "deleted"})
}

func (h *FormulasHandler) Synchronize(c *gin.Context) {
	companyID, ok := uuidParam(c, "companyId")
	if !ok {
		return
	}
	summary, err := h.svc.Synchronize(c.Request.Context(), companyID)
	if err != nil {
		respondSyncError(c, "formula synchronize", summary, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
