package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/faithchat/relay/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultSessionTTL = 30 * 24 * time.Hour
	DefaultResetTTL   = 60 * time.Minute
)

// IssuerConfig holds the local trust root. ResetSecret falls back to
// SessionSecret when empty.
type IssuerConfig struct {
	SessionSecret []byte
	ResetSecret   []byte
	SessionTTL    time.Duration
	ResetTTL      time.Duration
	Leeway        time.Duration
	Now           func() time.Time
}

// Issuer mints session and password-reset tokens.
type Issuer struct {
	sessionSecret []byte
	resetSecret   []byte
	sessionTTL    time.Duration
	resetTTL      time.Duration
	leeway        time.Duration
	now           func() time.Time
}

func NewIssuer(cfg IssuerConfig) *Issuer {
	i := &Issuer{
		sessionSecret: cfg.SessionSecret,
		resetSecret:   cfg.ResetSecret,
		sessionTTL:    cfg.SessionTTL,
		resetTTL:      cfg.ResetTTL,
		leeway:        cfg.Leeway,
		now:           cfg.Now,
	}
	if len(i.resetSecret) == 0 {
		i.resetSecret = i.sessionSecret
	}
	if i.sessionTTL <= 0 {
		i.sessionTTL = DefaultSessionTTL
	}
	if i.resetTTL <= 0 {
		i.resetTTL = DefaultResetTTL
	}
	if i.now == nil {
		i.now = time.Now
	}
	return i
}

func (i *Issuer) IssueSession(identity string) (string, error) {
	return i.issue(identity, TokenTypeSession, i.sessionSecret, i.sessionTTL)
}

func (i *Issuer) IssueReset(identity string) (string, error) {
	return i.issue(identity, TokenTypePasswordReset, i.resetSecret, i.resetTTL)
}

// ParseReset returns the identity a reset token was issued for. Any
// failure, including a token issued for another purpose, is
// common.ErrInvalidReset.
func (i *Issuer) ParseReset(token string) (string, error) {
	claims, err := DecodeWithOptions(token, staticKey(i.resetSecret),
		[]string{jwt.SigningMethodHS256.Alg()}, DecodeOptions{Leeway: i.leeway, Now: i.now})
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidReset, err)
	}
	if claims.Type != TokenTypePasswordReset {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidReset, common.ErrWrongTokenType)
	}
	identity := claims.Identity()
	if identity == "" {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidReset, common.ErrNoIdentity)
	}
	return identity, nil
}

func (i *Issuer) issue(identity string, typ TokenType, secret []byte, ttl time.Duration) (string, error) {
	if identity == "" {
		return "", errors.New("issue token: empty identity")
	}

	now := i.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Type: typ,
	}
	return Encode(claims, secret, jwt.SigningMethodHS256)
}
