package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/faithchat/relay/internal/common"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// respondError writes the status and message for err. Unauthorized is
// always the same body whatever caused it.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	s.respondJSON(w, status, errorBody{Detail: detail})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "Not authenticated"
	case errors.Is(err, common.ErrorBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrUpstreamAuth):
		return http.StatusServiceUnavailable, "Completion provider rejected our credentials"
	case errors.Is(err, common.ErrUpstreamRateLimited):
		return http.StatusTooManyRequests, "Completion provider is rate limiting requests"
	case errors.Is(err, common.ErrUpstreamUnavailable):
		return http.StatusGatewayTimeout, "Completion provider is unreachable"
	case errors.Is(err, common.ErrUpstreamError):
		return http.StatusBadGateway, "Completion provider returned an error"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return errBadJSON
	}
	return nil
}

var errBadJSON = badRequestError("Invalid request body")

type badRequestError string

func (e badRequestError) Error() string { return string(e) }

func (e badRequestError) Unwrap() error { return common.ErrorBadRequest }
