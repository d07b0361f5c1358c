// Package config provides centralized default values for OwlCart
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseFloat(valStr, 64); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%g (default: %g)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Authority Configuration
	AuthorityMode     string // "local" or "remote"
	AuthorityBaseURL  string
	RemoteCallTimeout time.Duration

	// Database (local authority mode)
	DBDriver string // "sqlite3" or "libsql"
	DBPath   string

	// Pricing defaults used by the local authority
	FreeDeliveryThreshold float64
	DeliveryFee           float64
	ConvenienceFee        float64

	// Throttle intervals
	CouponThrottleInterval    time.Duration
	CheckoutThrottleInterval  time.Duration
	ReconcileThrottleInterval time.Duration

	// Checkout eligibility
	RequiredCategoriesCount int
	SpecialCategoryID       string

	// Recommendation scoring
	RecommendationLimit   int
	WeightFeatured        float64
	WeightCategory        float64
	WeightPurchaseHistory float64
	WeightViewHistory     float64
	WeightStock           float64
	WeightPrice           float64
	WeightDiscount        float64

	// Checkout handoff
	HandoffTokenSecret   string
	HandoffTokenTTL      time.Duration
	ReceiptEmailFrom     string
	ReceiptEmailFromName string

	// Ops surface
	OpsPasswordHash string
	OpsTokenSecret  string
	OpsTokenTTL     time.Duration
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Authority Configuration
	AuthorityMode = getEnvString("AUTHORITY_MODE", "local")
	AuthorityBaseURL = getEnvString("AUTHORITY_BASE_URL", "http://localhost:9090")
	RemoteCallTimeout = getEnvDuration("REMOTE_CALL_TIMEOUT", 5*time.Second)

	// Database (local authority mode)
	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	DBPath = getEnvString("DB_PATH", "owlcart.db")

	// Pricing defaults used by the local authority
	FreeDeliveryThreshold = getEnvFloat("FREE_DELIVERY_THRESHOLD", 149)
	DeliveryFee = getEnvFloat("DELIVERY_FEE", 25)
	ConvenienceFee = getEnvFloat("CONVENIENCE_FEE", 5)

	// Throttle intervals
	CouponThrottleInterval = getEnvDuration("COUPON_THROTTLE_INTERVAL", 2*time.Second)
	CheckoutThrottleInterval = getEnvDuration("CHECKOUT_THROTTLE_INTERVAL", 2*time.Second)
	ReconcileThrottleInterval = getEnvDuration("RECONCILE_THROTTLE_INTERVAL", 200*time.Millisecond)

	// Checkout eligibility
	RequiredCategoriesCount = getEnvInt("REQUIRED_CATEGORIES_COUNT", 2)
	SpecialCategoryID = getEnvString("SPECIAL_CATEGORY_ID", "party-boxes")

	// Recommendation scoring
	RecommendationLimit = getEnvInt("RECOMMENDATION_LIMIT", 8)
	WeightFeatured = getEnvFloat("WEIGHT_FEATURED", 5)
	WeightCategory = getEnvFloat("WEIGHT_CATEGORY_PREFERENCE", 2)
	WeightPurchaseHistory = getEnvFloat("WEIGHT_PURCHASE_HISTORY", 3)
	WeightViewHistory = getEnvFloat("WEIGHT_VIEW_HISTORY", 2)
	WeightStock = getEnvFloat("WEIGHT_STOCK", 1)
	WeightPrice = getEnvFloat("WEIGHT_PRICE", 1)
	WeightDiscount = getEnvFloat("WEIGHT_DISCOUNT", 3)

	// Checkout handoff
	HandoffTokenSecret = getEnvString("HANDOFF_TOKEN_SECRET", "")
	HandoffTokenTTL = getEnvDuration("HANDOFF_TOKEN_TTL", 15*time.Minute)
	ReceiptEmailFrom = getEnvString("RECEIPT_EMAIL_FROM", "orders@owlcart.app")
	ReceiptEmailFromName = getEnvString("RECEIPT_EMAIL_FROM_NAME", "OwlCart")

	// Ops surface
	OpsPasswordHash = getEnvString("OPS_PASSWORD_HASH", "")
	OpsTokenSecret = getEnvString("OPS_TOKEN_SECRET", "")
	OpsTokenTTL = getEnvDuration("OPS_TOKEN_TTL", 12*time.Hour)
}
