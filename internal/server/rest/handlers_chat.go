package rest

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/faithchat/relay/internal/server/auth"
	"github.com/faithchat/relay/internal/server/llm"
)

const (
	sseDone      = "[DONE]"
	sseErrPrefix = "__ERROR__ "
)

type chatRequest struct {
	Message string        `json:"message"`
	History []llm.Message `json:"history"`
	Stream  *bool         `json:"stream,omitempty"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// wantsStream streams unless the body says "stream": false or the client
// accepts only JSON.
func wantsStream(r *http.Request, in chatRequest) bool {
	if in.Stream != nil {
		return *in.Stream
	}
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "text/event-stream") {
		return true
	}
	return !strings.Contains(accept, "application/json")
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var in chatRequest
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	if !wantsStream(r, in) {
		reply, err := s.chat.Reply(r.Context(), identity, in.Message, in.History)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, chatResponse{Reply: reply})
		return
	}

	events, err := s.chat.Stream(r.Context(), identity, in.Message, in.History)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// Hold the headers until the first event so a provider that fails
	// before producing anything still gets a proper status.
	first, ok := <-events
	if ok && first.Err != nil {
		s.respondError(w, r, first.Err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sse := newSSEWriter(w)
	if ok {
		if err := sse.data(first.Text); err != nil {
			return
		}
		for ev := range events {
			if ev.Err != nil {
				_, msg := statusFor(ev.Err)
				_ = sse.data(sseErrPrefix + msg)
				return
			}
			if err := sse.data(ev.Text); err != nil {
				return
			}
		}
	}
	_ = sse.data(sseDone)
}

type sseWriter struct {
	w  io.Writer
	rc *http.ResponseController
}

func newSSEWriter(w http.ResponseWriter) *sseWriter {
	return &sseWriter{w: w, rc: http.NewResponseController(w)}
}

// data writes one event. Multi-line payloads become one data: line per
// line, which clients join back with newlines.
func (s *sseWriter) data(payload string) error {
	var b strings.Builder
	for _, line := range strings.Split(payload, "\n") {
		b.WriteString("data:")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if _, err := io.WriteString(s.w, b.String()); err != nil {
		return err
	}
	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}
