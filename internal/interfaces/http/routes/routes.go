// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/mercado-ia/storefront/internal/config"
	"github.com/mercado-ia/storefront/internal/interfaces/http/handlers"
	"github.com/mercado-ia/storefront/internal/interfaces/http/middleware"
)

// Handlers bundles the API handlers
type Handlers struct {
	Agent    *handlers.AgentHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Session  *handlers.SessionHandler
	Seller   *handlers.SellerHandler
	Profile  *handlers.ProfileHandler
	Favorite *handlers.FavoriteHandler
}

// SetupCatalogRoutes sets up the public catalog routes
func SetupCatalogRoutes(rg *gin.RouterGroup, h *handlers.AgentHandler) {
	agents := rg.Group("/agents")
	{
		agents.GET("", h.ListAgents)
		agents.GET("/featured", h.ListFeatured)
		agents.GET("/free", h.ListFree)
		agents.GET("/:id", h.GetAgent)
		agents.GET("/:id/download", h.Download)
	}

	rg.GET("/categories", h.ListCategories)
}

// SetupCartRoutes sets up cart routes
func SetupCartRoutes(rg *gin.RouterGroup, h *handlers.CartHandler, cfg *config.Config) {
	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(cfg))
	{
		cart.GET("", h.GetCart)
		cart.GET("/count", h.GetCartCount)
		cart.POST("/items", h.AddToCart)
		cart.DELETE("/items/:id", h.RemoveFromCart)
		cart.DELETE("", h.ClearCart)
	}
}

// SetupCheckoutRoutes sets up checkout routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, h *handlers.CheckoutHandler, cfg *config.Config) {
	checkout := rg.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(cfg))
	{
		checkout.GET("", h.GetCheckout)
		checkout.POST("/pix", h.CreatePixPayment)
	}
}

// SetupSessionRoutes sets up session lifecycle routes
func SetupSessionRoutes(rg *gin.RouterGroup, h *handlers.SessionHandler, cfg *config.Config) {
	session := rg.Group("/session")
	session.Use(middleware.AuthMiddleware(cfg))
	{
		session.POST("/logout", h.Logout)
	}
}

// SetupSellerRoutes sets up seller onboarding and dashboard routes
func SetupSellerRoutes(rg *gin.RouterGroup, h *handlers.SellerHandler, cfg *config.Config) {
	sellers := rg.Group("/sellers")
	sellers.Use(middleware.AuthMiddleware(cfg))
	{
		sellers.POST("/register", h.Register)
		sellers.GET("/me/dashboard", h.Dashboard)
		sellers.GET("/me/agents", h.ListAgents)
		sellers.POST("/me/agents", h.CreateAgent)
	}
}

// SetupProfileRoutes sets up the caller's profile and purchase history routes
func SetupProfileRoutes(rg *gin.RouterGroup, h *handlers.ProfileHandler, cfg *config.Config) {
	profile := rg.Group("/profile")
	profile.Use(middleware.AuthMiddleware(cfg))
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.GET("/purchases", h.ListPurchases)
	}
}

// SetupFavoriteRoutes sets up favorite agent routes
func SetupFavoriteRoutes(rg *gin.RouterGroup, h *handlers.FavoriteHandler, cfg *config.Config) {
	favorites := rg.Group("/favorites")
	favorites.Use(middleware.AuthMiddleware(cfg))
	{
		favorites.GET("", h.ListFavorites)
		favorites.POST("", h.AddFavorite)
		favorites.DELETE("/:agent_id", h.RemoveFavorite)
		favorites.POST("/:agent_id/move-to-cart", h.MoveToCart)
	}
}

// SetupRoutes sets up every /api/v1 route
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	SetupCatalogRoutes(rg, h.Agent)
	SetupCartRoutes(rg, h.Cart, cfg)
	SetupCheckoutRoutes(rg, h.Checkout, cfg)
	SetupSessionRoutes(rg, h.Session, cfg)
	SetupSellerRoutes(rg, h.Seller, cfg)
	SetupProfileRoutes(rg, h.Profile, cfg)
	SetupFavoriteRoutes(rg, h.Favorite, cfg)
}

// SetupFunctionRoutes sets up the payment function routes
func SetupFunctionRoutes(r *gin.Engine, h *handlers.PixFunctionHandler) {
	r.GET("/health", h.Health)

	fn := r.Group("/create-pix-payment")
	fn.Use(middleware.FunctionCORS())
	{
		fn.POST("", h.CreatePixPayment)
		fn.OPTIONS("", func(*gin.Context) {})
	}
}
