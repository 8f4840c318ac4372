package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"streamhost/internal/booking"
	"streamhost/internal/domain/paymentsrepo"
	"streamhost/internal/domain/streamers"
	"streamhost/internal/payments"

	"github.com/google/uuid"
)

// PaymentSession is what the client needs to open the provider's payment page.
type PaymentSession struct {
	Token       string           `json:"token"`
	RedirectURL string           `json:"redirect_url"`
	OrderID     string           `json:"order_id"`
	Envelope    booking.Envelope `json:"metadata"`
}

// CreatePayment validates and prices a draft, rechecks availability, opens a
// provider transaction and stores the envelope under the new order id.
func (s *Service) CreatePayment(ctx context.Context, userID uuid.UUID, d booking.Draft) (*PaymentSession, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	streamer, err := s.Streamers.GetByID(ctx, d.StreamerID)
	if err != nil {
		return nil, err
	}
	if !streamer.IsActive {
		return nil, streamers.ErrNotFound
	}
	if streamer.UserID == userID {
		return nil, &booking.ValidationError{Field: "streamer_id", Message: "you cannot book yourself"}
	}

	if err := s.ensureAvailable(ctx, d.StreamerID, d.Days, d.Timezone); err != nil {
		return nil, err
	}

	q, err := s.quote(ctx, d, streamer)
	if err != nil {
		return nil, err
	}
	if q.FinalPrice <= 0 {
		return nil, ErrZeroAmount
	}

	profile, err := s.Profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load customer profile: %w", err)
	}

	env := booking.NewEnvelope(userID, d, streamer.Price, q.Breakdown, q.Voucher, q.FinalPrice)
	envJSON, err := env.Encode()
	if err != nil {
		return nil, err
	}

	orderID := s.OrderIDs.Generate()
	log := s.Logger.With("order_id", orderID, "user_id", userID, "streamer_id", d.StreamerID)

	req := payments.PaymentRequest{
		OrderID:           orderID,
		Amount:            q.FinalPrice,
		ItemName:          fmt.Sprintf("%d hour live session with %s", q.Breakdown.Hours, streamer.DisplayName),
		CustomerFirstName: profile.FirstName,
		CustomerLastName:  profile.LastName,
		CustomerEmail:     profile.Email,
		CustomerPhone:     profile.Phone,
		FinishURL:         s.FinishURL,
	}
	s.logPayment(ctx, orderID, "request", req)

	resp, err := s.Gateway.InitiatePayment(ctx, s.Provider, req)
	if err != nil {
		s.logPayment(ctx, orderID, "error", map[string]string{"error": err.Error()})
		log.Errorw("payment provider rejected order", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}
	s.logPayment(ctx, orderID, "response", resp.Raw)
	if strings.TrimSpace(resp.Token) == "" {
		log.Errorw("payment provider returned no token")
		return nil, ErrProviderRejected
	}

	intent := &paymentsrepo.Intent{
		OrderID:     orderID,
		UserID:      userID,
		StreamerID:  d.StreamerID,
		Envelope:    envJSON,
		Amount:      q.FinalPrice,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
		Status:      paymentsrepo.IntentPending,
	}
	if err := s.Intents.Create(ctx, intent); err != nil {
		return nil, err
	}

	log.Infow("payment session created", "amount", q.FinalPrice, "hours", q.Breakdown.Hours, "ranges", booking.RangeCount(d.Days))
	return &PaymentSession{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
		OrderID:     orderID,
		Envelope:    env,
	}, nil
}

// logPayment keeps a raw trail of provider traffic. Failures are only logged.
func (s *Service) logPayment(ctx context.Context, orderID, logType string, payload any) {
	if s.PayLogs == nil {
		return
	}
	if err := s.PayLogs.InsertPaymentLog(ctx, orderID, logType, payload); err != nil && !errors.Is(err, context.Canceled) {
		s.Logger.Warnw("failed to store payment log", "order_id", orderID, "log_type", logType, "error", err)
	}
}
