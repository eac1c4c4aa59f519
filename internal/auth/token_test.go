package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docparse/internal/auth"
	"docparse/internal/config"
	"docparse/internal/domain"
)

func newTokens(t *testing.T, secret, issuer string) *auth.Tokens {
	t.Helper()
	tokens, err := auth.NewTokens(&config.AuthConfig{Secret: secret, Issuer: issuer})
	require.NoError(t, err)
	return tokens
}

func TestNewTokens_EmptySecret(t *testing.T) {
	_, err := auth.NewTokens(&config.AuthConfig{Issuer: "docparse"})
	assert.Error(t, err)
}

func TestTokens_IssueAndValidate(t *testing.T) {
	tokens := newTokens(t, "s3cret", "docparse")

	signed, err := tokens.Issue("batch-client", time.Hour)
	require.NoError(t, err)

	claims, err := tokens.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "batch-client", claims.Subject)
	assert.Equal(t, "docparse", claims.Issuer)
	assert.Contains(t, []string(claims.Audience), auth.Audience)
	assert.NotEmpty(t, claims.ID)
}

func TestTokens_Validate_Expired(t *testing.T) {
	tokens := newTokens(t, "s3cret", "docparse")
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens.SetNow(func() time.Time { return issuedAt })

	signed, err := tokens.Issue("client", time.Minute)
	require.NoError(t, err)

	tokens.SetNow(func() time.Time { return issuedAt.Add(2 * time.Minute) })
	_, err = tokens.Validate(signed)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestTokens_Validate_WrongSecret(t *testing.T) {
	signed, err := newTokens(t, "one", "docparse").Issue("client", time.Hour)
	require.NoError(t, err)

	_, err = newTokens(t, "two", "docparse").Validate(signed)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestTokens_Validate_WrongIssuer(t *testing.T) {
	signed, err := newTokens(t, "s3cret", "elsewhere").Issue("client", time.Hour)
	require.NoError(t, err)

	_, err = newTokens(t, "s3cret", "docparse").Validate(signed)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestTokens_Validate_WrongAudience(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "client",
		Issuer:    "docparse",
		Audience:  jwt.ClaimStrings{"admin"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = newTokens(t, "s3cret", "docparse").Validate(signed)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestTokens_Validate_RejectsNoneAlgorithm(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "client",
		Issuer:    "docparse",
		Audience:  jwt.ClaimStrings{auth.Audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTokens(t, "s3cret", "docparse").Validate(signed)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestTokens_Validate_Garbage(t *testing.T) {
	_, err := newTokens(t, "s3cret", "docparse").Validate("not.a.token")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
