package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewTokenService_RejectsShortSecret(t *testing.T) {
	_, err := NewTokenService("short", time.Hour)
	assert.Error(t, err)
}

func TestGenerateAndVerifyAccessToken(t *testing.T) {
	svc, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken("user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(token, ".")), "expected a JWT")

	userID, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	svc, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	other, err := NewTokenService("ffffffffffffffffffffffffffffffff", time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken("user-1")
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	svc, err := NewTokenService(testSecret, -time.Minute)
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken("user-1")
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	svc, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken("not.a.token")
	assert.Error(t, err)
}
