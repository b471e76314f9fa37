package rest

import (
	"io"
	"net/http"

	"github.com/faithchat/relay/internal/server/services"
)

type createIntentRequest struct {
	AmountEUR float64 `json:"amount_eur"`
	Email     string  `json:"email"`
	Recurring bool    `json:"recurring"`
}

func (s *Server) handleCreateIntent(w http.ResponseWriter, r *http.Request) {
	var in createIntentRequest
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	secret, err := s.donations.CreateIntent(r.Context(), services.DonationRequest{
		AmountEUR: in.AmountEUR,
		Email:     in.Email,
		Recurring: in.Recurring,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"clientSecret": secret})
}

func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.respondError(w, r, errBadJSON)
		return
	}

	if _, err := s.donations.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
