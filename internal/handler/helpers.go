package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/profaxno/siproad-products-api/internal/apierror"
	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/infra"
	"github.com/profaxno/siproad-products-api/internal/middleware"
	"github.com/profaxno/siproad-products-api/internal/replication"
)

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindBatch binds a JSON array and validates every element.
func bindBatch[T any](c *gin.Context) ([]T, bool) {
	var list []T
	if err := c.ShouldBindJSON(&list); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return nil, false
	}
	for i := range list {
		if !validateStruct(c, &list[i]) {
			return nil, false
		}
	}
	return list, true
}

func validateStruct(c *gin.Context, req interface{}) bool {
	err := dto.Validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	fields := make(map[string]string)
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
	return false
}

// uuidParam parses a path parameter, writing a 400 when it is not a uuid.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+name+": "+c.Param(name)))
		return uuid.Nil, false
	}
	return id, true
}

// bindList reads ?page=&limit=&search=&searchList= for list endpoints.
func bindList(c *gin.Context) (dto.Pagination, dto.SearchInput, bool) {
	var page dto.Pagination
	var in dto.SearchInput
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return page, in, false
	}
	if !validateStruct(c, &page) {
		return page, in, false
	}
	if err := c.ShouldBindQuery(&in); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return page, in, false
	}
	return page, in, true
}

// respondError writes the envelope for a service error. Anything that is
// not a known domain error is logged and reported as a 500.
func respondError(c *gin.Context, op string, err error) {
	status, body := apierror.Response(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("op", op).
			Err(err).
			Msg("request failed")
	}
	c.JSON(status, body)
}

func respondList[T any](c *gin.Context, list []T) {
	c.JSON(http.StatusOK, dto.ListResponse[T]{Qty: len(list), Payload: list})
}

// syncFailure reports how far a synchronize run got before it stopped.
type syncFailure struct {
	Detail  string           `json:"detail"`
	Summary *dto.SyncSummary `json:"summary,omitempty"`
}

// respondSyncError answers 503 when the broker refused a batch; the
// summary tells the caller which pages were already published.
func respondSyncError(c *gin.Context, op string, summary *dto.SyncSummary, err error) {
	log.Error().
		Str("request_id", c.GetString(middleware.RequestIDKey)).
		Str("op", op).
		Err(err).
		Msg("synchronize failed")
	if errors.Is(err, replication.ErrTransport) || errors.Is(err, infra.ErrCircuitOpen) {
		c.JSON(http.StatusServiceUnavailable, syncFailure{Detail: "replication broker unavailable", Summary: summary})
		return
	}
	c.JSON(http.StatusInternalServerError, syncFailure{Detail: "internal server error", Summary: summary})
}
