package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/faithchat/relay/internal/common"
	"github.com/openai/openai-go"
)

var ErrNoChoices = errors.New("provider returned no choices")

// Classify maps a provider failure onto the upstream error kinds. Errors
// that are already classified, and cancellations, pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	for _, known := range []error{
		common.ErrUpstreamAuth,
		common.ErrUpstreamRateLimited,
		common.ErrUpstreamUnavailable,
		common.ErrUpstreamError,
	} {
		if errors.Is(err, known) {
			return err
		}
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch code := apiErr.StatusCode; {
		case code == http.StatusUnauthorized, code == http.StatusForbidden:
			return fmt.Errorf("%w: status %d", common.ErrUpstreamAuth, code)
		case code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: status %d", common.ErrUpstreamRateLimited, code)
		case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout:
			return fmt.Errorf("%w: status %d", common.ErrUpstreamUnavailable, code)
		default:
			return fmt.Errorf("%w: status %d", common.ErrUpstreamError, code)
		}
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
	}

	return err
}
