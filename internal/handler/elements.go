package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/service"
)

type ElementsHandler struct{ svc service.ElementService }

func NewElementsHandler(svc service.ElementService) *ElementsHandler {
	return &ElementsHandler{svc: svc}
}

func (h *ElementsHandler) Update(c *gin.Context) {
	var req dto.ElementDTO
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), req)
	if err != nil {
		respondError(c, "element update", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ElementsHandler) UpdateBatch(c *gin.Context) {
	list, ok := bindBatch[dto.ElementDTO](c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.UpdateBatch(c.Request.Context(), list))
}

func (h *ElementsHandler) Find(c *gin.Context) {
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
		respondError(c, "element find", err)
		return
	}
	respondList(c, list)
}

// FindByValue matches an element by exact id or name.
func (h *ElementsHandler) FindByValue(c *gin.Context) {
	companyID, ok := uuidParam(c, "companyId")
	if !ok {
		return
	}
	list, err := h.svc.Find(c.Request.Context(), companyID, dto.Pagination{}, dto.SearchInput{Search: c.Param("value")})
	if err != nil {
		respondError(c, "element findByValue", err)
		return
	}
	respondList(c, list)
}

func (h *ElementsHandler) FindOne(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.FindOneByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "element findOne", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ElementsHandler) Remove(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), id); err != nil {
		respondError(c, "element remove", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "deleted"})
}
