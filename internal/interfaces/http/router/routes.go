package router

import (
	"github.com/gin-gonic/gin"
	"github.com/pos/backend/internal/interfaces/http/handler"
)

// Handlers groups the handlers mounted under the versioned API
type Handlers struct {
	Category *handler.CategoryHandler
	Product  *handler.ProductHandler
	Service  *handler.ServiceHandler
	Sale     *handler.SaleHandler
	Debit    *handler.DebitHandler
	Expense  *handler.ExpenseHandler
	Report   *handler.ReportHandler
	System   *handler.SystemHandler
}

// DomainGroups builds the route groups of the POS API. idempotency guards
// the endpoints that record sales and may be nil.
func DomainGroups(h Handlers, idempotency gin.HandlerFunc) []*DomainGroup {
	catalog := NewDomainGroup("catalog", "/catalog")
	categories := catalog.Group("categories", "/categories")
	categories.POST("", h.Category.Create).
		GET("", h.Category.List).
		GET("/:id", h.Category.GetByID).
		PUT("/:id", h.Category.Update).
		DELETE("/:id", h.Category.Delete)

	products := catalog.Group("products", "/products")
	products.POST("", h.Product.Create).
		GET("", h.Product.List).
		POST("/import", h.Product.Import).
		GET("/:id", h.Product.GetByID).
		PUT("/:id", h.Product.Update).
		POST("/:id/restock", h.Product.Restock).
		DELETE("/:id", h.Product.Delete)

	services := catalog.Group("services", "/services")
	services.POST("", h.Service.Create).
		GET("", h.Service.List).
		GET("/:id", h.Service.GetByID).
		PUT("/:id", h.Service.Update).
		DELETE("/:id", h.Service.Delete)

	sales := NewDomainGroup("sales", "/sales")
	sales.POST("", guarded(idempotency, h.Sale.Sell)...).
		POST("/bulk", guarded(idempotency, h.Sale.BulkSell)...).
		GET("", h.Sale.List).
		GET("/transactions", h.Sale.ListTransactions).
		GET("/transactions/:id", h.Sale.GetTransaction).
		GET("/:id", h.Sale.GetByID).
		PUT("/:id", h.Sale.Amend).
		DELETE("/:id", h.Sale.Delete)

	debits := NewDomainGroup("debits", "/debits")
	debits.POST("", h.Debit.Create).
		GET("", h.Debit.List).
		DELETE("/items/:saleId", h.Debit.RemoveItem).
		GET("/:id", h.Debit.GetByID).
		PUT("/:id", h.Debit.Update).
		DELETE("/:id", h.Debit.Delete)

	expenses := NewDomainGroup("expenses", "/expenses")
	expenses.POST("", h.Expense.Create).
		GET("", h.Expense.List).
		GET("/:id", h.Expense.GetByID).
		PUT("/:id", h.Expense.Update).
		DELETE("/:id", h.Expense.Delete)

	reports := NewDomainGroup("reports", "/reports")
	reports.GET("/dashboard", h.Report.Dashboard).
		GET("/top-products", h.Report.TopProducts).
		GET("/daily-sales", h.Report.DailySales).
		POST("/exports", h.Report.Export)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)

	return []*DomainGroup{catalog, sales, debits, expenses, reports, system}
}

func guarded(idempotency gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if idempotency == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{idempotency, h}
}

// Mount registers the POS API on engine: /health outside versioning and
// every domain group under /api/v1. apiMiddleware runs on the versioned
// routes only, so probes never hit the rate limiter.
func Mount(engine *gin.Engine, h Handlers, idempotency gin.HandlerFunc, apiMiddleware ...gin.HandlerFunc) []*DomainGroup {
	engine.GET("/health", h.System.Health)

	r := NewRouter(engine, WithAPIVersion("v1")).Use(apiMiddleware...)
	groups := DomainGroups(h, idempotency)
	for _, g := range groups {
		r.Register(g)
	}
	r.Setup()
	return groups
}
