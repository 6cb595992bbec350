package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/clinic-portal-api/internal/config"
)

const testSecret = "test-signing-secret"

func testIdentityConfig() config.IdentityConfig {
	return config.IdentityConfig{
		Issuer:       "https://id.example.com",
		Audience:     "clinic-portal",
		Secret:       testSecret,
		PrincipalTTL: time.Minute,
	}
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestVerify(t *testing.T) {
	verifier := NewVerifier(testIdentityConfig())

	token := signToken(t, jwt.MapClaims{
		"iss":         "https://id.example.com",
		"aud":         "clinic-portal",
		"sub":         "kp_abc123",
		"email":       "owner@example.com",
		"given_name":  "Asha",
		"family_name": "Rao",
		"exp":         time.Now().Add(time.Hour).Unix(),
	})

	principal, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "kp_abc123", principal.AuthID)
	assert.Equal(t, "owner@example.com", principal.Email)
	assert.Equal(t, "Asha Rao", principal.DisplayName())

	// Second call is served from the cache.
	again, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Same(t, principal, again)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	verifier := NewVerifier(testIdentityConfig())

	token := signToken(t, jwt.MapClaims{
		"iss": "https://id.example.com",
		"aud": "clinic-portal",
		"sub": "kp_abc123",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := verifier.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	verifier := NewVerifier(testIdentityConfig())

	token := signToken(t, jwt.MapClaims{
		"iss": "https://evil.example.com",
		"aud": "clinic-portal",
		"sub": "kp_abc123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := verifier.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	verifier := NewVerifier(testIdentityConfig())

	token := signToken(t, jwt.MapClaims{
		"iss": "https://id.example.com",
		"aud": "other-app",
		"sub": "kp_abc123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := verifier.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	verifier := NewVerifier(testIdentityConfig())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "https://id.example.com",
		"aud": "clinic-portal",
		"sub": "kp_abc123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	verifier := NewVerifier(testIdentityConfig())

	token := signToken(t, jwt.MapClaims{
		"iss": "https://id.example.com",
		"aud": "clinic-portal",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := verifier.Verify(token)
	assert.Error(t, err)
}
