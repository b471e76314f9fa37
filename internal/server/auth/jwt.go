// Package auth issues and verifies bearer tokens against the local and
// external trust roots.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/faithchat/relay/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenType tags the purpose a token was issued for.
type TokenType string

const (
	TokenTypeSession       TokenType = "session"
	TokenTypePasswordReset TokenType = "password_reset"
)

// DefaultLeeway is the clock skew tolerated on iat/exp checks.
const DefaultLeeway = 10 * time.Second

// Claims is the token payload: the registered claims plus an optional
// email claim and purpose tag.
type Claims struct {
	jwt.RegisteredClaims
	Email string    `json:"email,omitempty"`
	Type  TokenType `json:"type,omitempty"`
}

// Identity prefers the email claim and falls back to the subject.
func (c *Claims) Identity() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}

// DecodeOptions narrows what Decode accepts beyond signature and expiry.
type DecodeOptions struct {
	Leeway   time.Duration
	Audience string
	Issuer   string
	// Now overrides the clock used for time-based claims.
	Now func() time.Time
}

// Encode signs claims with key under method.
func Encode(claims *Claims, key any, method jwt.SigningMethod) (string, error) {
	token := jwt.NewWithClaims(method, claims)
	s, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Decode verifies a symmetric token under secret. Only tokens whose header
// names exactly method are accepted.
func Decode(tokenString string, secret []byte, method jwt.SigningMethod, leeway time.Duration) (*Claims, error) {
	return DecodeWithOptions(tokenString, func(*jwt.Token) (any, error) {
		return secret, nil
	}, []string{method.Alg()}, DecodeOptions{Leeway: leeway})
}

// DecodeWithOptions verifies tokenString using keyFunc, accepting only the
// listed algorithms. Failures map onto the common codec errors; key lookup
// errors from keyFunc are passed through.
func DecodeWithOptions(tokenString string, keyFunc jwt.Keyfunc, algs []string, opts DecodeOptions) (*Claims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(algs),
		jwt.WithLeeway(opts.Leeway),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Now != nil {
		parserOpts = append(parserOpts, jwt.WithTimeFunc(opts.Now))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc, parserOpts...)
	if err != nil {
		return nil, mapJWTError(err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	if claims.IssuedAt != nil && !claims.ExpiresAt.After(claims.IssuedAt.Time) {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, common.ErrUnknownKey), errors.Is(err, common.ErrKeySourceUnavailable):
		return err
	case errors.Is(err, jwt.ErrTokenMalformed):
		return common.ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return common.ErrInvalidSignature
	default:
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
}
