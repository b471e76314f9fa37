package auth

import (
	"context"
	"strings"

	"github.com/faithchat/relay/internal/common"
	"github.com/faithchat/relay/internal/logging"
)

// Verifier tries each strategy in order and returns the identity from the
// first one that accepts the token. Every rejection looks the same to the
// caller.
type Verifier struct {
	strategies []Strategy
	logger     logging.Logger
}

func NewVerifier(logger logging.Logger, strategies ...Strategy) *Verifier {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Verifier{strategies: strategies, logger: logger}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, common.BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(common.BearerPrefix):])
	return token, token != ""
}

// RequireIdentity authenticates an Authorization header value.
func (v *Verifier) RequireIdentity(ctx context.Context, header string) (string, error) {
	token, ok := BearerToken(header)
	if !ok {
		v.logger.Debug(ctx, "missing bearer token")
		return "", common.ErrorUnauthorized
	}
	return v.Verify(ctx, token)
}

// Verify authenticates a raw token.
func (v *Verifier) Verify(ctx context.Context, token string) (string, error) {
	for _, s := range v.strategies {
		claims, err := s.Verify(ctx, token)
		if err != nil {
			v.logger.Debug(ctx, "token rejected", "root", s.Name(), "error", err)
			continue
		}

		if claims.Type != "" && claims.Type != TokenTypeSession {
			v.logger.Warn(ctx, "token type not accepted for sessions", "root", s.Name(), "type", claims.Type)
			return "", common.ErrorUnauthorized
		}

		identity := claims.Identity()
		if identity == "" {
			v.logger.Warn(ctx, "token carries no identity", "root", s.Name())
			return "", common.ErrorUnauthorized
		}

		return identity, nil
	}

	return "", common.ErrorUnauthorized
}
