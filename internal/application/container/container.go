// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/owlcart/owlcart-go/internal/application/services"
	"github.com/owlcart/owlcart-go/internal/domain/authorities"
	domainservices "github.com/owlcart/owlcart-go/internal/domain/services"
	"github.com/owlcart/owlcart-go/internal/infrastructure/caching/manager"
	"github.com/owlcart/owlcart-go/internal/infrastructure/email"
	"github.com/owlcart/owlcart-go/internal/infrastructure/messaging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/performance"
	"github.com/owlcart/owlcart-go/internal/infrastructure/throttle"
	"github.com/owlcart/owlcart-go/pkg/config"
)

// Authorities bundles the remote collaborator implementations selected at
// startup (local SQL-backed or remote HTTP).
type Authorities struct {
	Pricing  authorities.PricingAuthority
	Coupon   authorities.CouponAuthority
	Stock    authorities.StockAuthority
	Products authorities.ProductSource
}

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application services
	CartService           *services.CartService
	PricingService        *services.PricingService
	CouponService         *services.CouponService
	CheckoutService       *services.CheckoutService
	RecommendationService *services.RecommendationService
	OpsService            *services.OpsService

	// Infrastructure
	Logger           *logging.ChanneledLogger
	PerfTracker      *performance.Tracker
	CacheManager     *manager.Manager
	Throttles        *throttle.Registry
	PriceBroadcaster *messaging.PriceBroadcaster
}

// NewContainer creates and wires all singleton services. emailer may be nil
// when no email provider is configured.
func NewContainer(
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
	cacheManager *manager.Manager,
	auths Authorities,
	emailer email.Service,
) *Container {
	throttles := throttle.NewRegistry(logger)
	broadcaster := messaging.NewPriceBroadcaster(logger)

	pricingService := services.NewPricingService(cacheManager, auths.Pricing, throttles, broadcaster, logger, perfTracker)
	cartService := services.NewCartService(cacheManager, auths.Stock, pricingService, logger, perfTracker)
	couponService := services.NewCouponService(cacheManager, auths.Coupon, throttles, pricingService, logger, perfTracker)

	gate := domainservices.NewEligibilityGate(config.RequiredCategoriesCount, config.SpecialCategoryID)
	checkoutService := services.NewCheckoutService(cacheManager, gate, pricingService, throttles, emailer, logger, perfTracker)

	recommendationService := services.NewRecommendationService(auths.Products, services.ScoringWeights{
		Featured:        config.WeightFeatured,
		Category:        config.WeightCategory,
		PurchaseHistory: config.WeightPurchaseHistory,
		ViewHistory:     config.WeightViewHistory,
		Stock:           config.WeightStock,
		Price:           config.WeightPrice,
		Discount:        config.WeightDiscount,
	}, config.RecommendationLimit, logger, perfTracker)

	opsService := services.NewOpsService(cacheManager, throttles, logger, perfTracker)

	return &Container{
		CartService:           cartService,
		PricingService:        pricingService,
		CouponService:         couponService,
		CheckoutService:       checkoutService,
		RecommendationService: recommendationService,
		OpsService:            opsService,

		Logger:           logger,
		PerfTracker:      perfTracker,
		CacheManager:     cacheManager,
		Throttles:        throttles,
		PriceBroadcaster: broadcaster,
	}
}
