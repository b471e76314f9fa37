package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Strategy verifies a raw token against one trust root.
type Strategy interface {
	Name() string
	Verify(ctx context.Context, token string) (*Claims, error)
}

// KeySource resolves the verification key named by a token's kid header.
type KeySource interface {
	Key(ctx context.Context, kid string) (any, error)
}

// LocalStrategy accepts HS256 tokens signed with the process's own secret.
type LocalStrategy struct {
	secret []byte
	opts   DecodeOptions
}

func NewLocalStrategy(secret []byte, opts DecodeOptions) *LocalStrategy {
	return &LocalStrategy{secret: secret, opts: opts}
}

func (s *LocalStrategy) Name() string { return "local" }

func (s *LocalStrategy) Verify(_ context.Context, token string) (*Claims, error) {
	return DecodeWithOptions(token, staticKey(s.secret), []string{jwt.SigningMethodHS256.Alg()}, s.opts)
}

// ExternalSecretStrategy accepts HS256 tokens from an external issuer that
// shares a symmetric secret with this service.
type ExternalSecretStrategy struct {
	secret []byte
	opts   DecodeOptions
}

func NewExternalSecretStrategy(secret []byte, opts DecodeOptions) *ExternalSecretStrategy {
	return &ExternalSecretStrategy{secret: secret, opts: opts}
}

func (s *ExternalSecretStrategy) Name() string { return "external-secret" }

func (s *ExternalSecretStrategy) Verify(_ context.Context, token string) (*Claims, error) {
	return DecodeWithOptions(token, staticKey(s.secret), []string{jwt.SigningMethodHS256.Alg()}, s.opts)
}

// ExternalJWKSStrategy accepts asymmetric tokens whose kid resolves in the
// external issuer's published key set.
type ExternalJWKSStrategy struct {
	keys KeySource
	algs []string
	opts DecodeOptions
}

func NewExternalJWKSStrategy(keys KeySource, algs []string, opts DecodeOptions) *ExternalJWKSStrategy {
	if len(algs) == 0 {
		algs = []string{jwt.SigningMethodRS256.Alg(), jwt.SigningMethodES256.Alg()}
	}
	return &ExternalJWKSStrategy{keys: keys, algs: algs, opts: opts}
}

func (s *ExternalJWKSStrategy) Name() string { return "external-jwks" }

func (s *ExternalJWKSStrategy) Verify(ctx context.Context, token string) (*Claims, error) {
	return DecodeWithOptions(token, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		key, err := s.keys.Key(ctx, kid)
		if err != nil {
			return nil, fmt.Errorf("resolve key: %w", err)
		}
		return key, nil
	}, s.algs, s.opts)
}

func staticKey(secret []byte) jwt.Keyfunc {
	return func(*jwt.Token) (any, error) { return secret, nil }
}
