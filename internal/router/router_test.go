package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/profaxno/siproad-products-api/internal/config"
	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/infra"
	"github.com/profaxno/siproad-products-api/internal/middleware"
)

func init() { gin.SetMode(gin.TestMode) }

func newEngine(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(cfg, db, nil, nil, nil)
}

func testConfig() *config.Config {
	return &config.Config{Env: "development", RateLimitPerMinute: 1000, DBDefaultLimit: 1000}
}

func call(t *testing.T, r http.Handler, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, BasePath+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w
}

func TestCatalogFlow(t *testing.T) {
	r := newEngine(t, testConfig())
	companyID := uuid.NewString()

	w := call(t, r, http.MethodPatch, "/companies/update", dto.CompanyDTO{ID: companyID, Name: "acme"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	var flour dto.ElementDTO
	w = call(t, r, http.MethodPatch, "/elements/update", dto.ElementDTO{
		CompanyID: companyID, Name: "flour", Cost: decimal.NewFromInt(5), Unit: "kg",
	}, &flour)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "FLOUR", flour.Name)

	var one dto.ElementDTO
	w = call(t, r, http.MethodGet, "/elements/one/"+flour.ID, nil, &one)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, flour.ID, one.ID)

	var list dto.ListResponse[dto.ElementDTO]
	w = call(t, r, http.MethodGet, "/elements/"+companyID, nil, &list)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, list.Qty)

	w = call(t, r, http.MethodGet, "/elements/"+companyID+"/FLOUR", nil, &list)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, list.Qty)

	var bread dto.ProductDTO
	w = call(t, r, http.MethodPatch, "/products/update", dto.ProductDTO{
		CompanyID:   companyID,
		Name:        "bread",
		Price:       decimal.NewFromInt(30),
		ElementList: []dto.ProductElementDTO{{ID: flour.ID, Qty: 3}},
	}, &bread)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, bread.Cost.Equal(decimal.NewFromInt(15)), bread.Cost.String())

	w = call(t, r, http.MethodDelete, "/elements/"+flour.ID, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "element used by a product")

	w = call(t, r, http.MethodDelete, "/products/"+bread.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = call(t, r, http.MethodDelete, "/elements/"+flour.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(t, r, http.MethodGet, "/elements/one/"+flour.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestElementTypeFlow(t *testing.T) {
	r := newEngine(t, testConfig())
	companyID := uuid.NewString()
	w := call(t, r, http.MethodPatch, "/companies/update", dto.CompanyDTO{ID: companyID, Name: "acme"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var dairy dto.ElementTypeDTO
	w = call(t, r, http.MethodPatch, "/elementTypes/update", dto.ElementTypeDTO{CompanyID: companyID, Name: "dairy"}, &dairy)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "DAIRY", dairy.Name)

	var list dto.ListResponse[dto.ElementTypeDTO]
	w = call(t, r, http.MethodGet, "/elementTypes/"+companyID+"/DAIRY", nil, &list)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, list.Qty)

	var milk dto.ElementDTO
	w = call(t, r, http.MethodPatch, "/elements/update", dto.ElementDTO{
		CompanyID: companyID, ElementTypeID: dairy.ID, Name: "milk", Cost: decimal.NewFromInt(2), Unit: "lt",
	}, &milk)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var one dto.ElementDTO
	w = call(t, r, http.MethodGet, "/elements/one/"+milk.ID, nil, &one)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, one.ElementType)
	assert.Equal(t, "DAIRY", one.ElementType.Name)

	w = call(t, r, http.MethodDelete, "/elementTypes/"+dairy.ID, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "type used by an element")

	w = call(t, r, http.MethodDelete, "/elements/"+milk.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = call(t, r, http.MethodDelete, "/elementTypes/"+dairy.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = call(t, r, http.MethodGet, "/elementTypes/one/"+dairy.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownCompanyRejected(t *testing.T) {
	r := newEngine(t, testConfig())

	w := call(t, r, http.MethodPatch, "/elements/update", dto.ElementDTO{
		CompanyID: uuid.NewString(), Name: "salt", Unit: "kg",
	}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSynchronizeWithoutBroker(t *testing.T) {
	r := newEngine(t, testConfig())

	w := call(t, r, http.MethodPost, "/products/synchronize/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestJWTRequiredWhenConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = "s3cret"
	r := newEngine(t, cfg)

	w := call(t, r, http.MethodGet, "/elements/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitPerMinute = 2
	r := newEngine(t, cfg)
	path := "/elements/" + uuid.NewString()

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, call(t, r, http.MethodGet, path, nil, nil).Code)
	}
	w := call(t, r, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
