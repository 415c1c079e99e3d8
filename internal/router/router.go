package router

import (
	"time"

	"smartpos/internal/config"
	"smartpos/internal/handler"
	"smartpos/internal/infra"
	"smartpos/internal/middleware"
	"smartpos/internal/repository"
	"smartpos/internal/service"
	"smartpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine plus the
// bill service (the composition root also hands it to the hold janitor).
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher, mailCB *infra.CircuitBreaker) (*gin.Engine, service.BillService) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	billRepo := repository.NewBillRepository(db)
	itemRepo := repository.NewBillItemRepository(db)
	heldRepo := repository.NewHeldBillRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	pointRepo := repository.NewPointTransactionRepository(db)
	productRepo := repository.NewProductRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	holdTTL := time.Duration(cfg.HoldTTLHours) * time.Hour
	billSvc := service.NewBillService(billRepo, itemRepo, heldRepo, customerRepo, pointRepo, dispatcher, holdTTL)
	itemSvc := service.NewItemService(billRepo, itemRepo)
	customerSvc := service.NewCustomerService(customerRepo, pointRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	billsH := handler.NewBillsHandler(billSvc)
	itemsH := handler.NewItemsHandler(itemSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	productsH := handler.NewProductsHandler(productRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailCB))

	// Price check — customer-facing kiosk, no auth required
	r.GET("/v1/price/:barcode", productsH.PriceByBarcode)

	// Protected routes — seller identity comes from the JWT
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		bill := v1.Group("/bill")
		{
			bill.GET("", billsH.GetBill)
			bill.POST("/items", itemsH.AddItem)
			bill.PATCH("/items/:id", itemsH.UpdateQty)
			bill.DELETE("/items/:id", itemsH.RemoveItem)
			bill.DELETE("/:id/items", itemsH.ClearBill)
			bill.POST("/hold", billsH.HoldBill)
			bill.GET("/held", billsH.ListHeldBills)
			bill.POST("/held/:id/retrieve", billsH.RetrieveBill)
			bill.POST("/checkout", billsH.Checkout)
		}

		customers := v1.Group("/customers")
		{
			customers.POST("", customersH.Register)
			customers.GET("", customersH.List)
			customers.GET("/:id", customersH.Get)
			customers.POST("/:id/redeem", customersH.RedeemReward)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, billSvc
}
