package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	"streamhost/internal/booking"
	"streamhost/internal/domain/bookings"
	"streamhost/internal/domain/paymentsrepo"
	"streamhost/internal/payments"
)

const (
	OutcomePaid    = "paid"
	OutcomePending = "pending"
	OutcomeFailed  = "failed"
)

type CallbackOutcome struct {
	OrderID  string             `json:"order_id"`
	Outcome  string             `json:"outcome"`
	State    string             `json:"provider_status"`
	Bookings []bookings.Summary `json:"bookings,omitempty"`
}

// SettleOrder asks the provider for the order's real status and acts on it:
// paid orders are reconciled into bookings, final failures close the intent
// and anything else is left pending. source names the caller for the log
// trail ("webhook" or "confirm"); payload is stored verbatim when non-nil.
func (s *Service) SettleOrder(ctx context.Context, orderID, source string, payload json.RawMessage) (*CallbackOutcome, error) {
	intent, err := s.Intents.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if intent == nil {
		return nil, ErrIntentNotFound
	}
	if payload != nil {
		s.logPayment(ctx, orderID, source, payload)
	}

	log := s.Logger.With("order_id", orderID, "source", source)

	ver, err := s.Gateway.VerifyPayment(ctx, s.Provider, payments.PaymentVerifyRequest{OrderID: orderID})
	if err != nil {
		s.logPayment(ctx, orderID, "error", map[string]string{"error": err.Error()})
		log.Errorw("payment status lookup failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	s.logPayment(ctx, orderID, "verify", ver.Raw)

	out := &CallbackOutcome{OrderID: orderID, State: ver.State}
	switch {
	case ver.Success:
		env, err := booking.DecodeEnvelope(intent.Envelope)
		if err != nil {
			log.Errorw("stored envelope unreadable", "error", err)
			return nil, &PersistenceError{Step: "decode envelope", Err: err}
		}
		summaries, err := s.CreateBookingAfterPayment(ctx, ProviderResult{
			OrderID:       orderID,
			TransactionID: ver.TransactionID,
			Status:        ver.State,
			Token:         intent.Token,
			Raw:           ver.Raw,
		}, env)
		if err != nil {
			return nil, err
		}
		txID := ver.TransactionID
		if err := s.Intents.SetStatus(ctx, orderID, paymentsrepo.IntentPaid, &txID); err != nil {
			log.Warnw("failed to mark intent paid", "error", err)
		}
		out.Outcome = OutcomePaid
		out.Bookings = summaries

	case ver.Terminal:
		if err := s.Intents.SetStatus(ctx, orderID, paymentsrepo.IntentFailed, nil); err != nil {
			return nil, err
		}
		log.Infow("payment ended without settlement", "provider_status", ver.State)
		out.Outcome = OutcomeFailed

	default:
		log.Infow("payment still pending", "provider_status", ver.State)
		out.Outcome = OutcomePending
	}
	return out, nil
}
