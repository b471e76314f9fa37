package services

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/faithchat/relay/internal/common"
	"github.com/faithchat/relay/internal/logging"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
	"github.com/stripe/stripe-go/v72/webhook"
)

const maxDonationEUR = 10000

// PaymentIntents is the part of the Stripe client used for donations.
type PaymentIntents interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type DonationRequest struct {
	AmountEUR float64
	Email     string
	Recurring bool
}

// DonationService creates Stripe payment intents and checks webhook
// signatures.
type DonationService struct {
	intents       PaymentIntents
	webhookSecret string
	logger        logging.Logger
}

// NewStripeDonationService builds a DonationService backed by the Stripe API.
func NewStripeDonationService(secretKey, webhookSecret string, logger logging.Logger) *DonationService {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return NewDonationService(sc.PaymentIntents, webhookSecret, logger)
}

func NewDonationService(intents PaymentIntents, webhookSecret string, logger logging.Logger) *DonationService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &DonationService{intents: intents, webhookSecret: webhookSecret, logger: logger}
}

// CreateIntent returns the client secret of a new EUR payment intent.
func (s *DonationService) CreateIntent(ctx context.Context, req DonationRequest) (string, error) {
	if math.IsNaN(req.AmountEUR) || req.AmountEUR <= 0 || req.AmountEUR >= maxDonationEUR {
		return "", common.ErrInvalidAmount
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(math.Round(req.AmountEUR * 100))),
		Currency: stripe.String(string(stripe.CurrencyEUR)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	params.AddMetadata("purpose", "donation")
	params.AddMetadata("recurring", strconv.FormatBool(req.Recurring))
	params.Context = ctx

	pi, err := s.intents.New(params)
	if err != nil {
		s.logger.Warn(ctx, "create payment intent failed", "error", err)
		return "", fmt.Errorf("%w: %v", common.ErrorBadRequest, err)
	}

	s.logger.Info(ctx, "payment intent created", "id", pi.ID, "amount", pi.Amount)
	return pi.ClientSecret, nil
}

// HandleWebhook verifies the Stripe-Signature header and returns the event
// type.
func (s *DonationService) HandleWebhook(ctx context.Context, payload []byte, signature string) (string, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		s.logger.Warn(ctx, "webhook rejected", "error", err)
		return "", common.ErrInvalidWebhook
	}

	switch event.Type {
	case "payment_intent.succeeded", "charge.succeeded":
		s.logger.Info(ctx, "donation received", "event", event.ID, "type", event.Type)
	default:
		s.logger.Debug(ctx, "webhook event ignored", "event", event.ID, "type", event.Type)
	}
	return event.Type, nil
}
