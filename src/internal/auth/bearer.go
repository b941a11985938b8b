// FILE: hookwisp/src/internal/auth/bearer.go
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lixenwraith/log"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// BearerValidator checks bearer tokens on ingest requests: static tokens
// stored as argon2id hashes, HS256/384/512 JWTs, or both.
// A nil *BearerValidator accepts every request.
type BearerValidator struct {
	staticHashes []*tokenHash
	verified     sync.Map // token fingerprint -> struct{}

	parser  *jwt.Parser
	keyFunc jwt.Keyfunc
	logger  *log.Logger

	authSuccesses atomic.Uint64
	authFailures  atomic.Uint64
}

// NewBearerValidator returns nil when neither a JWT secret nor token hashes
// are configured.
func NewBearerValidator(jwtSecret string, tokenHashes []string, logger *log.Logger) (*BearerValidator, error) {
	if jwtSecret == "" && len(tokenHashes) == 0 {
		return nil, nil
	}

	v := &BearerValidator{logger: logger}

	for i, phc := range tokenHashes {
		h, err := parseTokenHash(phc)
		if err != nil {
			return nil, fmt.Errorf("token_hashes[%d]: %w", i, err)
		}
		v.staticHashes = append(v.staticHashes, h)
	}

	if jwtSecret != "" {
		key := []byte(jwtSecret)
		v.parser = jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
			jwt.WithLeeway(5*time.Second),
			jwt.WithExpirationRequired(),
		)
		v.keyFunc = func(token *jwt.Token) (any, error) {
			return key, nil
		}
	}

	logger.Info("msg", "Bearer authentication enabled",
		"component", "auth",
		"static_tokens", len(v.staticHashes),
		"jwt", v.parser != nil)
	return v, nil
}

// Validate checks an Authorization header value and returns the token
// subject ("static" for static tokens).
func (v *BearerValidator) Validate(authHeader string) (string, error) {
	if v == nil {
		return "", nil
	}

	subject, err := v.validate(authHeader)
	if err != nil {
		v.authFailures.Add(1)
		return "", err
	}
	v.authSuccesses.Add(1)
	return subject, nil
}

func (v *BearerValidator) validate(authHeader string) (string, error) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(authHeader[7:])
	if token == "" {
		return "", ErrMissingToken
	}

	if v.matchStatic(token) {
		return "static", nil
	}

	if v.parser == nil {
		return "", ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, v.keyFunc)
	if err != nil {
		return "", fmt.Errorf("JWT validation failed: %w", err)
	}
	if !parsed.Valid {
		return "", ErrInvalidToken
	}

	subject, _ := claims.GetSubject()
	return subject, nil
}

// matchStatic checks static token hashes, caching successful matches so the
// argon2 cost is paid once per token
func (v *BearerValidator) matchStatic(token string) bool {
	if len(v.staticHashes) == 0 {
		return false
	}

	fp := tokenFingerprint(token)
	if _, ok := v.verified.Load(fp); ok {
		return true
	}

	for _, h := range v.staticHashes {
		if h.matches(token) {
			v.verified.Store(fp, struct{}{})
			return true
		}
	}
	return false
}

// GetStats returns authentication counters
func (v *BearerValidator) GetStats() map[string]any {
	if v == nil {
		return map[string]any{"enabled": false}
	}

	cached := 0
	v.verified.Range(func(_, _ any) bool {
		cached++
		return true
	})

	return map[string]any{
		"enabled":        true,
		"static_tokens":  len(v.staticHashes),
		"jwt":            v.parser != nil,
		"cached_tokens":  cached,
		"auth_successes": v.authSuccesses.Load(),
		"auth_failures":  v.authFailures.Load(),
	}
}
