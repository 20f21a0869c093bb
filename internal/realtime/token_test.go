package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenMintAndValidate(t *testing.T) {
	svc := NewTokenService("hirehub", "test-secret", time.Hour)

	token, err := svc.Mint("interview-abc", "candidate-1", "Ada Lovelace")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := svc.Validate(token, "interview-abc")
	require.NoError(t, err)
	assert.Equal(t, "candidate-1", identity)
}

func TestTokenRejectedForWrongRoom(t *testing.T) {
	svc := NewTokenService("hirehub", "test-secret", time.Hour)

	token, err := svc.Mint("interview-abc", "candidate-1", "")
	require.NoError(t, err)

	_, err = svc.Validate(token, "interview-other")
	assert.Error(t, err)
}

func TestTokenRejectedForWrongSecret(t *testing.T) {
	minter := NewTokenService("hirehub", "secret-a", time.Hour)
	checker := NewTokenService("hirehub", "secret-b", time.Hour)

	token, err := minter.Mint("interview-abc", "candidate-1", "")
	require.NoError(t, err)

	_, err = checker.Validate(token, "interview-abc")
	assert.Error(t, err)
}

func TestTokenRejectedWhenExpired(t *testing.T) {
	svc := NewTokenService("hirehub", "test-secret", -time.Minute)

	token, err := svc.Mint("interview-abc", "candidate-1", "")
	require.NoError(t, err)

	_, err = svc.Validate(token, "interview-abc")
	assert.Error(t, err)
}

func TestAgentTokenCarriesAgentIdentity(t *testing.T) {
	svc := NewTokenService("hirehub", "test-secret", time.Hour)

	token, err := svc.Mint("interview-abc", AgentIdentity, "Interview Agent")
	require.NoError(t, err)

	identity, err := svc.Validate(token, "interview-abc")
	require.NoError(t, err)
	assert.Equal(t, AgentIdentity, identity)
}
