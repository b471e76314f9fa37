package rest

import (
	"errors"
	"net/http"

	"github.com/faithchat/relay/internal/common"
	"github.com/faithchat/relay/internal/server/auth"
	"github.com/faithchat/relay/internal/server/services"
)

// credentials accepts "identity" and, for older clients, "email".
type credentials struct {
	Identity string `json:"identity"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c credentials) id() string {
	if c.Identity != "" {
		return c.Identity
	}
	return c.Email
}

type tokenResponse struct {
	Token string `json:"token"`
}

type ackResponse struct {
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
	ResetLink string `json:"reset_link,omitempty"`
	Token     string `json:"token,omitempty"`
}

type resetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	token, err := s.users.Register(r.Context(), in.id(), in.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	token, err := s.users.Login(r.Context(), in.id(), in.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			s.respondJSON(w, http.StatusUnauthorized, errorBody{Detail: "Invalid credentials"})
			return
		}
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleForgot(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	ticket, err := s.users.ForgotPassword(r.Context(), in.id())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	out := ackResponse{OK: true, Message: ticket.Message}
	if !s.production {
		out.ResetLink = ticket.Link
		out.Token = ticket.Token
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var in resetRequest
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.users.ResetPassword(r.Context(), in.Token, in.NewPassword); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ackResponse{OK: true, Message: services.ResetDone})
}

func (s *Server) handleWhoami(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	s.respondJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"identity":      identity,
	})
}
