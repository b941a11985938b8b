// FILE: hookwisp/src/internal/auth/bearer_test.go
package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestNewBearerValidator_Disabled(t *testing.T) {
	v, err := NewBearerValidator("", nil, log.NewLogger())
	require.NoError(t, err)
	assert.Nil(t, v)

	subject, err := v.Validate("")
	assert.NoError(t, err)
	assert.Empty(t, subject)
	assert.Equal(t, false, v.GetStats()["enabled"])
}

func TestNewBearerValidator_BadHash(t *testing.T) {
	_, err := NewBearerValidator("", []string{"$2a$10$bcryptlooking"}, log.NewLogger())
	assert.ErrorContains(t, err, "token_hashes[0]")
}

func TestBearerValidator_JWT(t *testing.T) {
	v, err := NewBearerValidator(testSecret, nil, log.NewLogger())
	require.NoError(t, err)
	require.NotNil(t, v)

	valid := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": "shipper-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	t.Run("Valid", func(t *testing.T) {
		subject, err := v.Validate("Bearer " + valid)
		require.NoError(t, err)
		assert.Equal(t, "shipper-1", subject)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		_, err := v.Validate("")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("WrongScheme", func(t *testing.T) {
		_, err := v.Validate("Basic dXNlcjpwYXNz")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		_, err := v.Validate("Bearer " + token)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		_, err := v.Validate("Bearer " + token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("MissingExpiration", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "x"})
		_, err := v.Validate("Bearer " + token)
		assert.Error(t, err)
	})

	stats := v.GetStats()
	assert.Equal(t, uint64(1), stats["auth_successes"])
	assert.Equal(t, uint64(5), stats["auth_failures"])
}

func TestBearerValidator_StaticTokens(t *testing.T) {
	token, err := GenerateToken(32)
	require.NoError(t, err)
	hash, err := HashToken(token)
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$v=19$")

	v, err := NewBearerValidator("", []string{hash}, log.NewLogger())
	require.NoError(t, err)

	subject, err := v.Validate("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "static", subject)

	// Second check is served from the cache
	_, err = v.Validate("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, 1, v.GetStats()["cached_tokens"])

	_, err = v.Validate("Bearer " + token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A JWT is not accepted when only static tokens are configured
	jwtToken := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err = v.Validate("Bearer " + jwtToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenHelpers(t *testing.T) {
	_, err := GenerateToken(8)
	assert.Error(t, err)

	a, err := GenerateToken(16)
	require.NoError(t, err)
	b, err := GenerateToken(16)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	_, err = HashToken("")
	assert.Error(t, err)

	h1, err := HashToken("same")
	require.NoError(t, err)
	h2, err := HashToken("same")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "salts differ")

	parsed, err := parseTokenHash(h1)
	require.NoError(t, err)
	assert.True(t, parsed.matches("same"))
	assert.False(t, parsed.matches("other"))

	_, err = parseTokenHash("$argon2id$v=18$m=1,t=1,p=1$AAAA$AAAA")
	assert.Error(t, err)
}
