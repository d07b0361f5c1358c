// Package services provides application-level orchestration services
package services

import (
	"github.com/owlcart/owlcart-go/internal/infrastructure/caching/manager"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/performance"
	"github.com/owlcart/owlcart-go/internal/infrastructure/security"
	"github.com/owlcart/owlcart-go/internal/infrastructure/throttle"
	"github.com/owlcart/owlcart-go/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

// OpsAuthResult holds authentication result data
type OpsAuthResult struct {
	Token   string `json:"token"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// OpsService backs the operations surface: login and a runtime status view
// over the caches, throttles and slow operations.
type OpsService struct {
	cacheManager *manager.Manager
	throttles    *throttle.Registry
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewOpsService creates a new ops service
func NewOpsService(
	cacheManager *manager.Manager,
	throttles *throttle.Registry,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *OpsService {
	return &OpsService{
		cacheManager: cacheManager,
		throttles:    throttles,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// Authenticate validates the ops password and mints a session token.
func (s *OpsService) Authenticate(password string) *OpsAuthResult {
	if config.OpsPasswordHash == "" {
		return &OpsAuthResult{Success: false, Error: "ops access is not configured"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(config.OpsPasswordHash), []byte(password)); err != nil {
		s.logger.System().Warn("Ops login rejected")
		return &OpsAuthResult{Success: false, Error: "invalid credentials"}
	}

	token, err := security.GenerateOpsToken(config.OpsTokenSecret, config.OpsTokenTTL)
	if err != nil {
		s.logger.System().Error("Failed to mint ops token", "error", err.Error())
		return &OpsAuthResult{Success: false, Error: "token generation failed"}
	}

	s.logger.System().Info("Ops login accepted")
	return &OpsAuthResult{Success: true, Token: token}
}

// Status assembles the runtime state view for the ops dashboard.
func (s *OpsService) Status() map[string]any {
	return map[string]any{
		"caches":      s.cacheManager.Summary(),
		"throttles":   len(s.throttles.Snapshot()),
		"performance": s.perfTracker.Summary(),
		"logLevels":   s.logger.ChannelLevels(),
	}
}
