package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"streamhost/internal/booking"
	"streamhost/internal/domain/bookings"
	"streamhost/internal/domain/paymentsrepo"
	"streamhost/internal/domain/vouchers"
	"streamhost/internal/notifications"

	"github.com/google/uuid"
)

// ProviderResult is a confirmed provider transaction.
type ProviderResult struct {
	OrderID       string
	TransactionID string
	Status        string
	Token         string
	Raw           json.RawMessage
}

// CreateBookingAfterPayment turns a paid envelope into bookings, one payment
// record and an optional voucher redemption, all in one transaction. Calling
// it again for the same transaction id returns the bookings created the
// first time.
func (s *Service) CreateBookingAfterPayment(ctx context.Context, res ProviderResult, env booking.Envelope) ([]bookings.Summary, error) {
	started := time.Now()
	log := s.Logger.With("order_id", res.OrderID, "transaction_id", res.TransactionID)
	step := func(name string) {
		log.Infow("reconcile step", "step", name, "elapsed_ms", time.Since(started).Milliseconds())
	}

	if strings.TrimSpace(res.TransactionID) == "" {
		return nil, ErrMissingTransaction
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	step("validated")

	rows, err := s.buildRows(env)
	if err != nil {
		return nil, err
	}
	step("rows built")

	var (
		stage     string
		duplicate bool
	)
	err = s.Tx.WithCheckoutTx(ctx, func(r TxRepos) error {
		stage = "lock transaction"
		if err := r.Payments.LockTransaction(ctx, res.TransactionID); err != nil {
			return err
		}

		stage = "idempotency check"
		existing, err := r.Payments.GetByTransactionID(ctx, res.TransactionID)
		if err != nil {
			return err
		}
		if existing != nil {
			duplicate = true
			return nil
		}

		stage = "availability check"
		for _, b := range rows {
			taken, err := r.Bookings.HasOverlap(ctx, b.StreamerID, b.StartTime, b.EndTime)
			if err != nil {
				return err
			}
			if taken {
				return booking.ErrAvailabilityConflict
			}
		}

		stage = "insert bookings"
		for _, chunk := range booking.Chunk(rows, booking.ChunkSize) {
			if err := r.Bookings.InsertBatch(ctx, chunk); err != nil {
				return err
			}
		}
		step(stage)

		stage = "insert payment"
		payment := &paymentsrepo.Payment{
			BookingID:        rows[0].ID,
			Amount:           env.FinalPrice,
			Status:           res.Status,
			TransactionID:    res.TransactionID,
			OrderID:          res.OrderID,
			ProviderResponse: res.Raw,
		}
		if res.Token != "" {
			payment.PaymentToken = &res.Token
		}
		if err := r.Payments.Create(ctx, payment); err != nil {
			return err
		}
		if err := r.Payments.InsertStatusChange(ctx, payment.ID, res.Status, "payment confirmed by provider"); err != nil {
			return err
		}
		step(stage)

		stage = "link payment group"
		ids := make([]uuid.UUID, len(rows))
		for i, b := range rows {
			ids[i] = b.ID
		}
		for _, chunk := range booking.Chunk(ids, booking.ChunkSize) {
			if err := r.Bookings.SetPaymentGroup(ctx, chunk, payment.ID); err != nil {
				return err
			}
		}
		step(stage)

		if env.Voucher != nil {
			stage = "redeem voucher"
			usage := &vouchers.Usage{
				VoucherID:       env.Voucher.ID,
				BookingID:       rows[0].ID,
				UserID:          env.UserID,
				DiscountApplied: env.Voucher.DiscountAmount,
				OriginalPrice:   env.Breakdown.Total,
				FinalPrice:      env.FinalPrice,
			}
			if err := r.Vouchers.InsertUsage(ctx, usage); err != nil {
				return err
			}
			if err := r.Vouchers.Decrement(ctx, env.Voucher.ID); err != nil {
				return err
			}
			step(stage)
		}
		return nil
	})

	switch {
	case errors.Is(err, paymentsrepo.ErrDuplicateTransaction):
		duplicate = true
	case errors.Is(err, booking.ErrAvailabilityConflict) && s.alreadyReconciled(ctx, res.TransactionID):
		duplicate = true
	case errors.Is(err, booking.ErrAvailabilityConflict):
		log.Errorw("paid order conflicts with an existing booking", "stage", stage, "error", err)
		return nil, err
	case err != nil:
		log.Errorw("booking reconciliation failed", "stage", stage, "error", err, "elapsed_ms", time.Since(started).Milliseconds())
		return nil, &PersistenceError{Step: stage, Err: err}
	}

	if duplicate {
		log.Infow("transaction already reconciled, returning existing bookings")
		summaries, err := s.Bookings.ListSummariesByTransactionID(ctx, res.TransactionID)
		if err != nil {
			return nil, &PersistenceError{Step: "load existing bookings", Err: err}
		}
		return summaries, nil
	}

	client := s.lookupClient(ctx, env.UserID)
	s.notify(ctx, res, env, rows, client)

	summaries := make([]bookings.Summary, len(rows))
	for i, b := range rows {
		summaries[i] = bookings.Summary{
			ID:              b.ID,
			ClientID:        b.ClientID,
			ClientFirstName: client.first,
			ClientLastName:  client.last,
		}
	}
	step("done")
	return summaries, nil
}

// alreadyReconciled reports whether a conflicting write was this same
// transaction committed by a concurrent call.
func (s *Service) alreadyReconciled(ctx context.Context, transactionID string) bool {
	existing, err := s.Bookings.ListSummariesByTransactionID(ctx, transactionID)
	if err != nil {
		s.Logger.Warnw("duplicate lookup after conflict failed", "transaction_id", transactionID, "error", err)
		return false
	}
	return len(existing) > 0
}

// buildRows converts every range to UTC and splits the final price evenly,
// first per day and then per range. Remainders go to the first row of each
// split so the rows always add up to the final price.
func (s *Service) buildRows(env booking.Envelope) ([]*bookings.Booking, error) {
	var (
		username *string
		secret   *string
		special  *string
	)
	if env.SubAccount.Username != "" {
		u := env.SubAccount.Username
		username = &u
	}
	if env.SubAccount.Password != "" {
		if s.Sealer == nil {
			return nil, errors.New("sub-account sealing is not configured")
		}
		sealed, err := s.Sealer.Seal(env.SubAccount.Password)
		if err != nil {
			return nil, fmt.Errorf("seal sub-account credentials: %w", err)
		}
		secret = &sealed
	}
	if env.SpecialRequest != "" {
		sr := env.SpecialRequest
		special = &sr
	}

	dayShares := splitEven(env.FinalPrice, len(env.Bookings))
	rows := make([]*bookings.Booking, 0, booking.RangeCount(env.Bookings))
	for i, day := range env.Bookings {
		rangeShares := splitEven(dayShares[i], len(day.TimeRanges))
		for j, r := range day.TimeRanges {
			start, err := s.Timezones.ToUTC(day.Date, r.Start, env.Timezone)
			if err != nil {
				return nil, &booking.ValidationError{Field: "bookings", Message: err.Error()}
			}
			end, err := s.Timezones.ToUTC(day.Date, r.End, env.Timezone)
			if err != nil {
				return nil, &booking.ValidationError{Field: "bookings", Message: err.Error()}
			}
			rows = append(rows, &bookings.Booking{
				StreamerID:         env.StreamerID,
				ClientID:           env.UserID,
				StartTime:          start,
				EndTime:            end,
				Platform:           env.Platform,
				Price:              rangeShares[j],
				Status:             bookings.StatusPending,
				SpecialRequest:     special,
				SubAccountUsername: username,
				SubAccountSecret:   secret,
			})
		}
	}
	return rows, nil
}

func splitEven(total int64, n int) []int64 {
	if n <= 0 {
		return nil
	}
	shares := make([]int64, n)
	each := total / int64(n)
	for i := range shares {
		shares[i] = each
	}
	shares[0] += total - each*int64(n)
	return shares
}

type clientInfo struct {
	first, last, email string
}

func (s *Service) lookupClient(ctx context.Context, userID uuid.UUID) clientInfo {
	p, err := s.Profiles.GetProfile(ctx, userID)
	if err != nil {
		s.Logger.Warnw("client profile unavailable for booking summary", "user_id", userID, "error", err)
		return clientInfo{}
	}
	return clientInfo{first: p.FirstName, last: p.LastName, email: p.Email}
}

// notify never fails the reconciliation; the bookings are already committed.
func (s *Service) notify(ctx context.Context, res ProviderResult, env booking.Envelope, rows []*bookings.Booking, client clientInfo) {
	if s.Notifier == nil {
		return
	}
	ev := notifications.BookingCreated{
		OrderID:       res.OrderID,
		TransactionID: res.TransactionID,
		StreamerID:    env.StreamerID,
		ClientID:      env.UserID,
		ClientName:    strings.TrimSpace(client.first + " " + client.last),
		ClientEmail:   client.email,
		Timezone:      env.Timezone,
		Platform:      env.Platform,
		Amount:        env.FinalPrice,
		OccurredAt:    s.Now().UTC(),
	}
	if streamer, err := s.Streamers.GetByID(ctx, env.StreamerID); err == nil {
		ev.StreamerUserID = streamer.UserID
		ev.StreamerName = streamer.DisplayName
	} else {
		s.Logger.Warnw("streamer lookup failed for notifications", "streamer_id", env.StreamerID, "error", err)
	}
	for _, b := range rows {
		ev.Bookings = append(ev.Bookings, notifications.BookedSlot{ID: b.ID, Start: b.StartTime, End: b.EndTime})
	}

	if err := s.Notifier.BookingsCreated(ctx, ev); err != nil {
		s.Logger.Warnw("booking notifications failed", "order_id", res.OrderID, "error", err)
	}
}
