// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/owlcart/owlcart-go/internal/application/container"
	"github.com/owlcart/owlcart-go/internal/presentation/http/handlers"
	"github.com/owlcart/owlcart-go/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(c *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	cartHandlers := handlers.NewCartHandlers(c.CartService, c.Logger, c.PerfTracker)
	couponHandlers := handlers.NewCouponHandlers(c.CouponService, c.Logger, c.PerfTracker)
	pricingHandlers := handlers.NewPricingHandlers(c.PricingService, c.Logger, c.PerfTracker)
	checkoutHandlers := handlers.NewCheckoutHandlers(c.CheckoutService, c.Logger, c.PerfTracker)
	recHandlers := handlers.NewRecommendationHandlers(c.RecommendationService, c.Logger, c.PerfTracker)
	streamHandlers := handlers.NewStreamHandlers(c.PriceBroadcaster, c.Logger)
	opsHandlers := handlers.NewOpsHandlers(c.OpsService, c.Logger, c.PerfTracker)

	// Storefront API; every route is session-scoped.
	api := r.Group("/api/v1")
	api.Use(middleware.SessionMiddleware())
	{
		api.GET("/cart", cartHandlers.GetCart)
		api.POST("/cart/items", cartHandlers.PostItem)
		api.PUT("/cart/items/:id", cartHandlers.PutItem)
		api.DELETE("/cart/items/:id", cartHandlers.DeleteItem)
		api.DELETE("/cart", cartHandlers.DeleteCart)

		api.POST("/cart/coupon", couponHandlers.PostCoupon)
		api.DELETE("/cart/coupon", couponHandlers.DeleteCoupon)

		api.GET("/cart/price", pricingHandlers.GetPrice)
		api.GET("/cart/price/stream", streamHandlers.GetPriceStream)

		api.GET("/checkout/eligibility", checkoutHandlers.GetEligibility)
		api.POST("/checkout", checkoutHandlers.PostCheckout)

		api.POST("/recommendations", recHandlers.PostRecommendations)
	}

	// Ops surface
	ops := r.Group("/api/ops")
	{
		ops.POST("/login", opsHandlers.PostLogin)

		ops.Use(middleware.OpsAuthMiddleware())
		{
			ops.GET("/status", opsHandlers.GetStatus)
		}
	}

	return r
}
