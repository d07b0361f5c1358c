package startup

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/pkg/config"
)

func TestEnsureTokenSecretsMintsEphemeralSecrets(t *testing.T) {
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.LevelError,
	})
	require.NoError(t, err)

	config.HandoffTokenSecret = ""
	config.OpsTokenSecret = ""

	require.NoError(t, ensureTokenSecrets(logger))
	assert.NotEmpty(t, config.HandoffTokenSecret)
	assert.NotEmpty(t, config.OpsTokenSecret)

	// Configured secrets are left alone.
	config.HandoffTokenSecret = "configured"
	require.NoError(t, ensureTokenSecrets(logger))
	assert.Equal(t, "configured", config.HandoffTokenSecret)
}
