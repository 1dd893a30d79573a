// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/farmcrate-storefront/internal/commerce"
	"github.com/your-org/farmcrate-storefront/internal/config"
	"github.com/your-org/farmcrate-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/farmcrate-storefront/internal/interfaces/http/middleware"
)

// Dependencies bundles the services the route handlers need
type Dependencies struct {
	Cart     *commerce.CartService
	Catalog  *commerce.CatalogService
	Stock    *commerce.StockLedger
	Accounts *commerce.AccountService
}

// SetupRoutes wires all API routes
func SetupRoutes(rg *gin.RouterGroup, deps Dependencies, cfg *config.Config) {
	setupAuthRoutes(rg, deps, cfg)
	setupCatalogRoutes(rg, deps)
	setupCartRoutes(rg, deps, cfg)
}

// setupAuthRoutes sets up authentication related routes
func setupAuthRoutes(rg *gin.RouterGroup, deps Dependencies, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(deps.Accounts, cfg)

	auth := rg.Group("/auth")
	{
		auth.POST("/send-otp", authHandler.SendOTP)
		auth.POST("/verify-otp", authHandler.VerifyOTP)
		auth.POST("/google", authHandler.GoogleLogin)
	}
}

// setupCatalogRoutes sets up product and delivery stock routes
func setupCatalogRoutes(rg *gin.RouterGroup, deps Dependencies) {
	productHandler := handlers.NewProductHandler(deps.Catalog)
	deliveryHandler := handlers.NewDeliveryHandler(deps.Stock)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
	}

	rg.GET("/delivery-stock", deliveryHandler.GetDeliveryStock)
}

// setupCartRoutes sets up cart routes. Cart routes use optional auth: an
// anonymous session cart is a normal state, but a presented-and-invalid
// credential is rejected so the client can clear it.
func setupCartRoutes(rg *gin.RouterGroup, deps Dependencies, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(deps.Cart)

	cartGroup := rg.Group("/cart")
	cartGroup.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.POST("/add", cartHandler.AddToCart)
		cartGroup.PUT("/items/:id", cartHandler.UpdateCartItem)
		cartGroup.DELETE("/items/:id", cartHandler.RemoveCartItem)
	}
}
