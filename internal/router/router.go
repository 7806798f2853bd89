package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/profaxno/siproad-products-api/internal/config"
	"github.com/profaxno/siproad-products-api/internal/handler"
	"github.com/profaxno/siproad-products-api/internal/middleware"
	"github.com/profaxno/siproad-products-api/internal/replication"
	"github.com/profaxno/siproad-products-api/internal/repository"
	"github.com/profaxno/siproad-products-api/internal/service"
)

// BasePath prefixes every catalog route.
const BasePath = "/siproad-products"

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB, Service → Replicator → Publisher → Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, publisher *replication.Publisher, replicator *replication.Replicator) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute).Handler())

	// ── Repositories ─────────────────────────────────────────────────────────
	companyRepo := repository.NewCompanyRepository(db)
	productTypeRepo := repository.NewProductTypeRepository(db)
	elementTypeRepo := repository.NewElementTypeRepository(db)
	elementRepo := repository.NewElementRepository(db)
	formulaRepo := repository.NewFormulaRepository(db)
	productRepo := repository.NewProductRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	// A nil *Replicator must reach the services as a nil interface.
	var rep service.Replicator
	if replicator != nil {
		rep = replicator
	}
	companySvc := service.NewCompanyService(companyRepo)
	productTypeSvc := service.NewProductTypeService(productTypeRepo, companyRepo, rep, cfg.DBDefaultLimit)
	elementTypeSvc := service.NewElementTypeService(elementTypeRepo, companyRepo, cfg.DBDefaultLimit)
	elementSvc := service.NewElementService(elementRepo, elementTypeRepo, companyRepo, cfg.DBDefaultLimit)
	formulaSvc := service.NewFormulaService(formulaRepo, elementRepo, companyRepo, rep, cfg.DBDefaultLimit)
	productSvc := service.NewProductService(productRepo, elementRepo, formulaRepo, productTypeRepo, companyRepo, rep, cfg.DBDefaultLimit)

	// ── Routes ───────────────────────────────────────────────────────────────
	var breaker handler.BreakerStater
	if publisher != nil {
		breaker = publisher
	}
	r.GET("/health", handler.Health(db, rdb, breaker))

	Register(r.Group(BasePath, middleware.OptionalJWTAuth(cfg.JWTSecret)), Handlers{
		Companies:    handler.NewCompaniesHandler(companySvc),
		Elements:     handler.NewElementsHandler(elementSvc),
		ElementTypes: handler.NewElementTypesHandler(elementTypeSvc),
		Formulas:     handler.NewFormulasHandler(formulaSvc),
		Products:     handler.NewProductsHandler(productSvc),
		ProductTypes: handler.NewProductTypesHandler(productTypeSvc),
	})
	return r
}

// Handlers groups the route targets so tests can mount them over stubs.
type Handlers struct {
	Companies    *handler.CompaniesHandler
	Elements     *handler.ElementsHandler
	ElementTypes *handler.ElementTypesHandler
	Formulas     *handler.FormulasHandler
	Products     *handler.ProductsHandler
	ProductTypes *handler.ProductTypesHandler
}

// Register mounts the catalog routes on g.
func Register(g *gin.RouterGroup, h Handlers) {
	companies := g.Group("/companies")
	{
		companies.PATCH("/update", h.Companies.Update)
		companies.GET("/one/:id", h.Companies.FindOne)
		companies.DELETE("/:id", h.Companies.Remove)
	}

	elements := g.Group("/elements")
	{
		elements.POST("/updateBatch", h.Elements.UpdateBatch)
		elements.PATCH("/update", h.Elements.Update)
		elements.GET("/one/:id", h.Elements.FindOne)
		elements.GET("/:companyId", h.Elements.Find)
		elements.GET("/:companyId/:value", h.Elements.FindByValue)
		elements.DELETE("/:id", h.Elements.Remove)
	}

	elementTypes := g.Group("/elementTypes")
	{
		elementTypes.POST("/updateBatch", h.ElementTypes.UpdateBatch)
		elementTypes.PATCH("/update", h.ElementTypes.Update)
		elementTypes.GET("/one/:id", h.ElementTypes.FindOne)
		elementTypes.GET("/:companyId", h.ElementTypes.Find)
		elementTypes.GET("/:companyId/:value", h.ElementTypes.FindByValue)
		elementTypes.DELETE("/:id", h.ElementTypes.Remove)
	}

	formulas := g.Group("/formulas")
	{
		formulas.POST("/updateBatch", h.Formulas.UpdateBatch)
		formulas.PATCH("/update", h.Formulas.Update)
		formulas.GET("/one/:id", h.Formulas.FindOne)
		formulas.GET("/:companyId", h.Formulas.Find)
		formulas.GET("/:companyId/:value", h.Formulas.FindByValue)
		formulas.DELETE("/:id", h.Formulas.Remove)
		formulas.POST("/synchronize/:companyId", h.Formulas.Synchronize)
	}

	products := g.Group("/products")
	{
		products.POST("/updateBatch", h.Products.UpdateBatch)
		products.PATCH("/update", h.Products.Update)
		products.GET("/one/:id", h.Products.FindOne)
		products.GET("/:companyId", h.Products.Find)
		products.GET("/:companyId/:value", h.Products.FindByValue)
		products.POST("/searchByValues/:companyId", h.Products.SearchByValues)
		products.DELETE("/:id", h.Products.Remove)
		products.POST("/synchronize/:companyId", h.Products.Synchronize)
	}

	productTypes := g.Group("/productTypes")
	{
		productTypes.POST("/updateBatch", h.ProductTypes.UpdateBatch)
		productTypes.PATCH("/update", h.ProductTypes.Update)
		productTypes.GET("/one/:id", h.ProductTypes.FindOne)
		productTypes.GET("/:companyId", h.ProductTypes.Find)
		productTypes.DELETE("/:id", h.ProductTypes.Remove)
		productTypes.POST("/synchronize/:companyId", h.ProductTypes.Synchronize)
	}
}
