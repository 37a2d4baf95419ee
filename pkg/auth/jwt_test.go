package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func newTestGenerator(t *testing.T, expiry time.Duration) *JWTGenerator {
	t.Helper()
	generator, err := NewJWTGenerator(JWTGeneratorConfig{
		SecretKey:  testSecret,
		Issuer:     "linkup-backend",
		ExpiryTime: expiry,
	})
	require.NoError(t, err)
	return generator
}

func newTestValidator(t *testing.T) *JWTValidator {
	t.Helper()
	validator, err := NewJWTValidator(JWTConfig{
		SecretKey: testSecret,
		Issuer:    "linkup-backend",
	})
	require.NoError(t, err)
	return validator
}

func TestValidateToken_RoundTrip(t *testing.T) {
	generator := newTestGenerator(t, time.Hour)
	validator := newTestValidator(t)

	token, err := generator.GenerateToken("user-123", "alice@example.com", []string{"member"})
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)

	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, []string{"member"}, claims.Roles)
}

func TestValidateToken_Expired(t *testing.T) {
	generator := newTestGenerator(t, -time.Minute)
	validator := newTestValidator(t)

	token, err := generator.GenerateToken("user-123", "alice@example.com", nil)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	generator, err := NewJWTGenerator(JWTGeneratorConfig{
		SecretKey: "some-other-secret",
		Issuer:    "linkup-backend",
	})
	require.NoError(t, err)
	validator := newTestValidator(t)

	token, err := generator.GenerateToken("user-123", "", nil)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)

	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	generator, err := NewJWTGenerator(JWTGeneratorConfig{
		SecretKey: testSecret,
		Issuer:    "someone-else",
	})
	require.NoError(t, err)
	validator := newTestValidator(t)

	token, err := generator.GenerateToken("user-123", "", nil)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)

	assert.ErrorIs(t, err, ErrInvalidIssuer)
}

func TestValidateToken_Garbage(t *testing.T) {
	validator := newTestValidator(t)

	_, err := validator.ValidateToken("not-a-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_SubjectFallbackForUserID(t *testing.T) {
	// Tokens minted by external identity providers carry sub but not uid
	validator := newTestValidator(t)
	claims := jwt.RegisteredClaims{
		Subject:   "external-user",
		Issuer:    "linkup-backend",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	parsed, err := validator.ValidateToken(token)

	require.NoError(t, err)
	assert.Equal(t, "external-user", parsed.UserID)
}

func TestValidateToken_MissingIdentityRejected(t *testing.T) {
	validator := newTestValidator(t)
	claims := jwt.RegisteredClaims{
		Issuer:    "linkup-backend",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTValidator_RequiresSecret(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{})

	assert.Error(t, err)
}
