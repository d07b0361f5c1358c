package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandoffTokenRoundTrip(t *testing.T) {
	token, err := GenerateHandoffToken(HandoffClaims{
		OrderID:   "01J0000000000000000000ABCD",
		SessionID: "sess1",
		Total:     150,
		Subtotal:  120,
		Coupon:    "SAVE10",
	}, "secret", time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "sess1", claims["sessionId"])
	assert.Equal(t, 150.0, claims["total"])
	assert.Equal(t, "SAVE10", claims["coupon"])
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	_, err := GenerateHandoffToken(HandoffClaims{}, "", time.Minute)
	require.Error(t, err)

	_, err = GenerateOpsToken("", time.Minute)
	require.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateOpsToken("right", time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "wrong")
	require.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	token, err := GenerateOpsToken("secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	require.Error(t, err)
}

func TestGenerateSecureKeyHexLengthAndUniqueness(t *testing.T) {
	first, err := GenerateSecureKey(64)
	require.NoError(t, err)
	second, err := GenerateSecureKey(64)
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
}

func TestGenerateULIDIsUniqueAndSortable(t *testing.T) {
	first := GenerateULID()
	second := GenerateULID()

	assert.Len(t, first, 26)
	assert.NotEqual(t, first, second)
}
