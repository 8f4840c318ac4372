package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"streamhost/internal/booking"
	"streamhost/internal/domain/bookings"
	"streamhost/internal/domain/paymentsrepo"
	"streamhost/internal/domain/streamers"
	"streamhost/internal/domain/users"
	"streamhost/internal/domain/vouchers"
	"streamhost/internal/payments"

	"github.com/google/uuid"
)

const jakarta = "Asia/Jakarta"

type fixture struct {
	db       *memDB
	svc      *Service
	gw       *fakeGateway
	notifier *recordingNotifier
	streamer *streamers.Streamer
	client   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newMemDB()
	streamer := &streamers.Streamer{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		DisplayName: "Nadia Live",
		Price:       100000,
		Timezone:    jakarta,
		IsActive:    true,
	}
	db.streamers[streamer.ID] = streamer

	client := uuid.New()
	db.profiles[client] = &users.Profile{ID: client, FirstName: "Budi", LastName: "Santoso", Email: "budi@example.com", Phone: "+628123"}

	db.schedule = booking.ActiveSchedule{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		db.schedule[d] = []booking.SlotRange{{Start: "08:00", End: "22:00"}}
	}

	gw := &fakeGateway{token: "snap-token-1"}
	notifier := &recordingNotifier{}
	svc := NewService(Deps{
		Streamers: directory{db},
		Profiles:  directory{db},
		Schedules: db,
		Bookings:  db,
		Vouchers:  db,
		Intents:   intentStore{db},
		PayLogs:   db,
		Gateway:   gw,
		Tx:        db,
		Sealer:    maskSealer{},
		Notifier:  notifier,
		OrderIDs:  &fixedOrderIDs{},
		FinishURL: "https://app.example.com/bookings/finish",
		Now:       func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) },
	})

	return &fixture{db: db, svc: svc, gw: gw, notifier: notifier, streamer: streamer, client: client}
}

func (f *fixture) draft() booking.Draft {
	return booking.Draft{
		StreamerID: f.streamer.ID,
		Days: []booking.DaySelection{
			{Date: "2024-06-10", TimeRanges: []booking.TimeRange{{Start: "10:00", End: "13:00"}}},
		},
		Timezone:   jakarta,
		Platform:   "tiktok",
		SubAccount: booking.SubAccount{Username: "shop_live", Password: "hunter2"},
	}
}

func (f *fixture) addVoucher(code string, discount int64, remaining int) *vouchers.Voucher {
	v := &vouchers.Voucher{
		ID:                uuid.New(),
		Code:              code,
		DiscountAmount:    discount,
		TotalQuantity:     remaining,
		RemainingQuantity: remaining,
		IsActive:          true,
	}
	f.db.vouchers[code] = v
	return v
}

func (f *fixture) envelope(d booking.Draft, voucher *booking.VoucherRef) booking.Envelope {
	b := booking.Aggregate(d.Days, f.streamer.Price)
	final := b.Total
	if voucher != nil {
		voucher.DiscountAmount, final = booking.ApplyVoucher(voucher.DiscountAmount, b.Total)
	}
	return booking.NewEnvelope(f.client, d, f.streamer.Price, b, voucher, final)
}

func TestCreatePayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.CreatePayment(ctx, f.client, f.draft())
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if sess.Token != "snap-token-1" || sess.OrderID == "" {
		t.Fatalf("unexpected session %+v", sess)
	}
	if sess.Envelope.FinalPrice != 432900 {
		t.Fatalf("expected final price 432900, got %d", sess.Envelope.FinalPrice)
	}

	if len(f.gw.requests) != 1 {
		t.Fatalf("expected one provider request, got %d", len(f.gw.requests))
	}
	req := f.gw.requests[0]
	if req.Amount != 432900 || req.OrderID != sess.OrderID || req.CustomerEmail != "budi@example.com" {
		t.Fatalf("unexpected provider request %+v", req)
	}

	intent := f.db.intents[sess.OrderID]
	if intent == nil || intent.Status != paymentsrepo.IntentPending {
		t.Fatalf("expected a pending intent, got %+v", intent)
	}
	env, err := booking.DecodeEnvelope(intent.Envelope)
	if err != nil {
		t.Fatalf("decode stored envelope: %v", err)
	}
	if env.UserID != f.client || env.Hours != 3 {
		t.Fatalf("stored envelope mismatch: %+v", env)
	}

	if got := strings.Join(f.db.logTypes(sess.OrderID), ","); got != "request,response" {
		t.Fatalf("expected request and response logs, got %q", got)
	}
}

func TestCreatePayment_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(f *fixture, d *booking.Draft)
		user   func(f *fixture) uuid.UUID
		target error
	}{
		{
			name:   "provider returns no token",
			setup:  func(f *fixture, _ *booking.Draft) { f.gw.token = "" },
			target: ErrProviderRejected,
		},
		{
			name:   "provider error",
			setup:  func(f *fixture, _ *booking.Draft) { f.gw.initErr = errors.New("401 unauthorized") },
			target: ErrProviderRejected,
		},
		{
			name: "hour already booked",
			setup: func(f *fixture, _ *booking.Draft) {
				f.db.bookings = append(f.db.bookings, &bookings.Booking{
					ID:         uuid.New(),
					StreamerID: f.streamer.ID,
					StartTime:  time.Date(2024, 6, 10, 4, 0, 0, 0, time.UTC),
					EndTime:    time.Date(2024, 6, 10, 5, 0, 0, 0, time.UTC),
					Status:     bookings.StatusAccepted,
				})
			},
			target: booking.ErrAvailabilityConflict,
		},
		{
			name:   "outside schedule",
			setup:  func(_ *fixture, d *booking.Draft) { d.Days[0].TimeRanges[0] = booking.TimeRange{Start: "05:00", End: "07:00"} },
			target: booking.ErrAvailabilityConflict,
		},
		{
			name:   "day off",
			setup:  func(f *fixture, _ *booking.Draft) { f.db.dayOffs = []string{"2024-06-10"} },
			target: booking.ErrAvailabilityConflict,
		},
		{
			name: "voucher covers everything",
			setup: func(f *fixture, d *booking.Draft) {
				f.addVoucher("FREE99", 1000000, 5)
				d.VoucherCode = "free99"
			},
			target: ErrZeroAmount,
		},
		{
			name:   "unknown voucher",
			setup:  func(_ *fixture, d *booking.Draft) { d.VoucherCode = "NOPE00" },
			target: ErrVoucherNotFound,
		},
		{
			name:   "inactive streamer",
			setup:  func(f *fixture, _ *booking.Draft) { f.streamer.IsActive = false },
			target: streamers.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			d := f.draft()
			tt.setup(f, &d)

			_, err := f.svc.CreatePayment(context.Background(), f.client, d)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
			if len(f.db.intents) != 0 {
				t.Fatalf("no intent should be stored on failure")
			}
		})
	}
}

func TestCreatePayment_ValidationAndSelfBooking(t *testing.T) {
	f := newFixture(t)

	d := f.draft()
	d.Days[0].TimeRanges[0] = booking.TimeRange{Start: "13:00", End: "10:00"}
	var verr *booking.ValidationError
	if _, err := f.svc.CreatePayment(context.Background(), f.client, d); !errors.As(err, &verr) {
		t.Fatalf("expected a validation error, got %v", err)
	}

	if _, err := f.svc.CreatePayment(context.Background(), f.streamer.UserID, f.draft()); !errors.As(err, &verr) || verr.Field != "streamer_id" {
		t.Fatalf("expected self booking to be rejected, got %v", err)
	}
	if len(f.gw.requests) != 0 {
		t.Fatalf("provider must not be called for rejected drafts")
	}
}

func TestValidateVoucher(t *testing.T) {
	f := newFixture(t)
	f.addVoucher("SAVE50", 50000, 3)
	expired := f.addVoucher("OLD123", 50000, 3)
	past := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	expired.ExpiresAt = &past
	f.addVoucher("GONE00", 50000, 0)

	res, err := f.svc.ValidateVoucher(context.Background(), " save50 ", 30000)
	if err != nil {
		t.Fatalf("ValidateVoucher: %v", err)
	}
	if !res.IsValid || res.DiscountAmount != 30000 || res.FinalPrice != 0 {
		t.Fatalf("expected the discount to clamp to the total, got %+v", res)
	}

	for _, code := range []string{"OLD123", "GONE00", "MISSING", "SAVE-5", ""} {
		if _, err := f.svc.ValidateVoucher(context.Background(), code, 30000); !errors.Is(err, ErrVoucherNotFound) {
			t.Fatalf("%q: expected ErrVoucherNotFound, got %v", code, err)
		}
	}
}

func TestQuote(t *testing.T) {
	f := newFixture(t)
	f.addVoucher("SAVE10", 10000, 1)

	d := f.draft()
	d.VoucherCode = "SAVE10"
	q, err := f.svc.Quote(context.Background(), d)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.Breakdown.Total != 432900 || q.DiscountAmount != 10000 || q.FinalPrice != 422900 {
		t.Fatalf("unexpected quote %+v", q)
	}
	if q.Voucher == nil || q.Voucher.Code != "SAVE10" {
		t.Fatalf("expected the voucher to be attached, got %+v", q.Voucher)
	}
}

func TestCreateBookingAfterPayment(t *testing.T) {
	f := newFixture(t)
	v := f.addVoucher("SAVE10", 10000, 2)

	d := f.draft()
	d.Days = []booking.DaySelection{
		{Date: "2024-06-10", TimeRanges: []booking.TimeRange{{Start: "10:00", End: "13:00"}}},
		{Date: "2024-06-11", TimeRanges: []booking.TimeRange{{Start: "08:00", End: "09:00"}, {Start: "20:00", End: "22:00"}}},
	}
	env := f.envelope(d, &booking.VoucherRef{ID: v.ID, Code: v.Code, DiscountAmount: v.DiscountAmount})

	res := ProviderResult{OrderID: "BOOKING-1-ABC", TransactionID: "tx-1", Status: "settlement", Raw: json.RawMessage(`{"transaction_status":"settlement"}`)}
	summaries, err := f.svc.CreateBookingAfterPayment(context.Background(), res, env)
	if err != nil {
		t.Fatalf("CreateBookingAfterPayment: %v", err)
	}

	if len(summaries) != 3 || len(f.db.bookings) != 3 {
		t.Fatalf("expected 3 bookings, got %d summaries and %d rows", len(summaries), len(f.db.bookings))
	}
	if summaries[0].ClientFirstName != "Budi" || summaries[0].ClientLastName != "Santoso" {
		t.Fatalf("expected client names in the summary, got %+v", summaries[0])
	}
	if len(f.db.payments) != 1 {
		t.Fatalf("expected exactly one payment, got %d", len(f.db.payments))
	}
	p := f.db.payments[0]
	if p.Amount != env.FinalPrice || p.TransactionID != "tx-1" || p.BookingID != f.db.bookings[0].ID {
		t.Fatalf("unexpected payment %+v", p)
	}
	if len(f.db.statuses) != 1 || f.db.statuses[0].Status != "settlement" {
		t.Fatalf("expected one status history row, got %+v", f.db.statuses)
	}

	var sum int64
	for _, b := range f.db.bookings {
		sum += b.Price
		if b.PaymentGroupID == nil || *b.PaymentGroupID != p.ID {
			t.Fatalf("booking %s not linked to the payment", b.ID)
		}
		if b.Status != bookings.StatusPending {
			t.Fatalf("new bookings must start pending, got %s", b.Status)
		}
		if b.SubAccountSecret == nil || strings.Contains(*b.SubAccountSecret, "hunter2") {
			t.Fatalf("sub-account secret must be sealed")
		}
	}
	if sum != env.FinalPrice {
		t.Fatalf("booking prices sum to %d, want %d", sum, env.FinalPrice)
	}

	first := f.db.bookings[0]
	if want := time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC); !first.StartTime.Equal(want) {
		t.Fatalf("first booking starts at %s, want %s", first.StartTime, want)
	}

	if len(f.db.usages) != 1 || f.db.vouchers["SAVE10"].RemainingQuantity != 1 {
		t.Fatalf("expected one voucher redemption, got %d usages, %d remaining", len(f.db.usages), f.db.vouchers["SAVE10"].RemainingQuantity)
	}
	if len(f.notifier.events) != 1 || len(f.notifier.events[0].Bookings) != 3 {
		t.Fatalf("expected one notification event covering 3 bookings, got %+v", f.notifier.events)
	}
	if f.notifier.events[0].StreamerUserID != f.streamer.UserID {
		t.Fatalf("notification should address the streamer's user")
	}
}

func TestCreateBookingAfterPayment_Idempotent(t *testing.T) {
	f := newFixture(t)
	env := f.envelope(f.draft(), nil)
	res := ProviderResult{OrderID: "BOOKING-1-ABC", TransactionID: "tx-dup", Status: "settlement"}

	first, err := f.svc.CreateBookingAfterPayment(context.Background(), res, env)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := f.svc.CreateBookingAfterPayment(context.Background(), res, env)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if len(f.db.bookings) != 1 || len(f.db.payments) != 1 {
		t.Fatalf("retry must not create rows: %d bookings, %d payments", len(f.db.bookings), len(f.db.payments))
	}
	if len(second) != len(first) || second[0].ID != first[0].ID {
		t.Fatalf("retry returned %+v, want %+v", second, first)
	}
	if len(f.notifier.events) != 1 {
		t.Fatalf("retry must not notify again, got %d events", len(f.notifier.events))
	}
}

func TestCreateBookingAfterPayment_DuplicateRace(t *testing.T) {
	f := newFixture(t)
	env := f.envelope(f.draft(), nil)
	res := ProviderResult{OrderID: "BOOKING-1-ABC", TransactionID: "tx-race", Status: "settlement"}

	if _, err := f.svc.CreateBookingAfterPayment(context.Background(), res, env); err != nil {
		t.Fatalf("first call: %v", err)
	}
	// A concurrent writer commits between the pre-check and the insert.
	f.db.hidePrecheck = true
	f.db.failPaymentCreate = paymentsrepo.ErrDuplicateTransaction

	other := f.draft()
	other.Days[0].Date = "2024-06-12"
	got, err := f.svc.CreateBookingAfterPayment(context.Background(), res, f.envelope(other, nil))
	if err != nil {
		t.Fatalf("expected the duplicate to resolve to existing bookings, got %v", err)
	}
	if len(f.db.bookings) != 1 {
		t.Fatalf("rolled back rows leaked: %d bookings", len(f.db.bookings))
	}
	if len(got) != 1 {
		t.Fatalf("expected the existing booking back, got %+v", got)
	}
}

func TestCreateBookingAfterPayment_SameEnvelopeTwice(t *testing.T) {
	f := newFixture(t)
	env := f.envelope(f.draft(), nil)
	res := ProviderResult{OrderID: "BOOKING-1-ABC", TransactionID: "tx-webhook-and-finish", Status: "settlement"}

	first, err := f.svc.CreateBookingAfterPayment(context.Background(), res, env)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	// The second caller ran its pre-check before the first one committed, so
	// it collides with its own rows at the overlap check.
	f.db.hidePrecheck = true

	second, err := f.svc.CreateBookingAfterPayment(context.Background(), res, env)
	if err != nil {
		t.Fatalf("expected the existing bookings back, got %v", err)
	}
	if len(second) != len(first) || second[0].ID != first[0].ID {
		t.Fatalf("got %+v, want %+v", second, first)
	}
	if len(f.db.bookings) != len(first) || len(f.db.payments) != 1 {
		t.Fatalf("duplicate rows written: %d bookings, %d payments", len(f.db.bookings), len(f.db.payments))
	}
	if len(f.notifier.events) != 1 {
		t.Fatalf("expected a single notification, got %d", len(f.notifier.events))
	}
	if len(f.db.locked) != 2 || f.db.locked[0] != res.TransactionID {
		t.Fatalf("expected each call to lock the transaction, got %v", f.db.locked)
	}
}

func TestCreateBookingAfterPayment_RealConflictStillFails(t *testing.T) {
	f := newFixture(t)
	env := f.envelope(f.draft(), nil)

	if _, err := f.svc.CreateBookingAfterPayment(context.Background(), ProviderResult{OrderID: "o-1", TransactionID: "tx-1", Status: "settlement"}, env); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, err := f.svc.CreateBookingAfterPayment(context.Background(), ProviderResult{OrderID: "o-2", TransactionID: "tx-2", Status: "settlement"}, env)
	if !errors.Is(err, booking.ErrAvailabilityConflict) {
		t.Fatalf("expected ErrAvailabilityConflict, got %v", err)
	}
}

func TestCreateBookingAfterPayment_Chunking(t *testing.T) {
	f := newFixture(t)

	d := f.draft()
	d.Days = nil
	for i := 0; i < 12; i++ {
		d.Days = append(d.Days, booking.DaySelection{
			Date:       time.Date(2024, 6, 10+i, 0, 0, 0, 0, time.UTC).Format(booking.DateLayout),
			TimeRanges: []booking.TimeRange{{Start: "10:00", End: "11:00"}},
		})
	}
	env := f.envelope(d, nil)

	if _, err := f.svc.CreateBookingAfterPayment(context.Background(), ProviderResult{OrderID: "o", TransactionID: "tx-many", Status: "capture"}, env); err != nil {
		t.Fatalf("CreateBookingAfterPayment: %v", err)
	}
	if f.db.insertCall != 2 || f.db.groupCall != 2 {
		t.Fatalf("expected 2 insert and 2 link batches, got %d and %d", f.db.insertCall, f.db.groupCall)
	}
	if len(f.db.bookings) != 12 {
		t.Fatalf("expected 12 bookings, got %d", len(f.db.bookings))
	}
}

func TestCreateBookingAfterPayment_Failures(t *testing.T) {
	t.Run("missing transaction id", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateBookingAfterPayment(context.Background(), ProviderResult{OrderID: "o"}, f.envelope(f.draft(), nil))
		if !errors.Is(err, ErrMissingTransaction) {
			t.Fatalf("expected ErrMissingTransaction, got %v", err)
		}
	})

	t.Run("slot taken since payment opened", func(t *testing.T) {
		f := newFixture(t)
		f.db.bookings = append(f.db.bookings, &bookings.Booking{
			ID:         uuid.New(),
			StreamerID: f.streamer.ID,
			StartTime:  time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2024, 6, 10, 4, 0, 0, 0, time.UTC),
			Status:     bookings.StatusPending,
		})
		_, err := f.svc.CreateBookingAfterPayment(context.Background(), ProviderResult{OrderID: "o", TransactionID: "tx"}, f.envelope(f.draft(), nil))
		if !errors.Is(err, booking.ErrAvailabilityConflict) {
			t.Fatalf("expected ErrAvailabilityConflict, got %v", err)
		}
		if len(f.db.bookings) != 1 || len(f.db.payments) != 0 {
			t.Fatalf("nothing may be written on conflict")
		}
	})

	t.Run("voucher exhausted rolls back", func(t *testing.T) {
		f := newFixture(t)
		v := f.addVoucher("LAST01", 10000, 0)
		env := f.envelope(f.draft(), &booking.VoucherRef{ID: v.ID, Code: v.Code, DiscountAmount: v.DiscountAmount})

		_, err := f.svc.CreateBookingAfterPayment(context.Background(), ProviderResult{OrderID: "o", TransactionID: "tx"}, env)
		var perr *PersistenceError
		if !errors.As(err, &perr) || perr.Step != "redeem voucher" || !errors.Is(err, vouchers.ErrExhausted) {
			t.Fatalf("expected a redeem voucher persistence error, got %v", err)
		}
		if len(f.db.bookings) != 0 || len(f.db.payments) != 0 || len(f.db.usages) != 0 {
			t.Fatalf("failed transaction left rows behind")
		}
	})

	t.Run("notification failure is swallowed", func(t *testing.T) {
		f := newFixture(t)
		f.notifier.err = errors.New("broker down")
		got, err := f.svc.CreateBookingAfterPayment(context.Background(), ProviderResult{OrderID: "o", TransactionID: "tx"}, f.envelope(f.draft(), nil))
		if err != nil || len(got) != 1 {
			t.Fatalf("expected success despite notifier error, got %v", err)
		}
	})
}

func TestSplitEven(t *testing.T) {
	tests := []struct {
		total int64
		n     int
		want  []int64
	}{
		{432900, 2, []int64{216450, 216450}},
		{100, 3, []int64{34, 33, 33}},
		{0, 2, []int64{0, 0}},
		{5, 0, nil},
	}
	for _, tt := range tests {
		got := splitEven(tt.total, tt.n)
		if fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Fatalf("splitEven(%d, %d) = %v, want %v", tt.total, tt.n, got, tt.want)
		}
	}
}

func TestSettleOrder(t *testing.T) {
	open := func(t *testing.T) (*fixture, string) {
		f := newFixture(t)
		sess, err := f.svc.CreatePayment(context.Background(), f.client, f.draft())
		if err != nil {
			t.Fatalf("CreatePayment: %v", err)
		}
		return f, sess.OrderID
	}

	t.Run("paid", func(t *testing.T) {
		f, orderID := open(t)
		f.gw.verify = payments.PaymentVerifyResponse{Success: true, State: "settlement", Terminal: true, TransactionID: "mt-1"}

		out, err := f.svc.SettleOrder(context.Background(), orderID, "webhook", json.RawMessage(`{"order_id":"`+orderID+`"}`))
		if err != nil {
			t.Fatalf("SettleOrder: %v", err)
		}
		if out.Outcome != OutcomePaid || len(out.Bookings) != 1 {
			t.Fatalf("unexpected outcome %+v", out)
		}
		intent := f.db.intents[orderID]
		if intent.Status != paymentsrepo.IntentPaid || intent.TransactionID == nil || *intent.TransactionID != "mt-1" {
			t.Fatalf("intent not marked paid: %+v", intent)
		}
		if f.db.payments[0].PaymentToken == nil || *f.db.payments[0].PaymentToken != "snap-token-1" {
			t.Fatalf("payment should carry the snap token")
		}

		again, err := f.svc.SettleOrder(context.Background(), orderID, "confirm", nil)
		if err != nil || again.Outcome != OutcomePaid || again.Bookings[0].ID != out.Bookings[0].ID {
			t.Fatalf("second settlement should return the same bookings, got %+v, %v", again, err)
		}
		if len(f.db.bookings) != 1 {
			t.Fatalf("second settlement created more bookings")
		}
	})

	t.Run("pending", func(t *testing.T) {
		f, orderID := open(t)
		f.gw.verify = payments.PaymentVerifyResponse{State: "pending"}

		out, err := f.svc.SettleOrder(context.Background(), orderID, "webhook", nil)
		if err != nil || out.Outcome != OutcomePending {
			t.Fatalf("expected pending, got %+v, %v", out, err)
		}
		if len(f.db.bookings) != 0 || f.db.intents[orderID].Status != paymentsrepo.IntentPending {
			t.Fatalf("pending settlement must not change state")
		}
	})

	t.Run("failed", func(t *testing.T) {
		f, orderID := open(t)
		f.gw.verify = payments.PaymentVerifyResponse{State: "expire", Terminal: true}

		out, err := f.svc.SettleOrder(context.Background(), orderID, "webhook", nil)
		if err != nil || out.Outcome != OutcomeFailed {
			t.Fatalf("expected failed, got %+v, %v", out, err)
		}
		if f.db.intents[orderID].Status != paymentsrepo.IntentFailed {
			t.Fatalf("intent should be failed")
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.SettleOrder(context.Background(), "BOOKING-0-NONE", "webhook", nil); !errors.Is(err, ErrIntentNotFound) {
			t.Fatalf("expected ErrIntentNotFound, got %v", err)
		}
	})

	t.Run("provider unavailable", func(t *testing.T) {
		f, orderID := open(t)
		f.gw.verifyErr = errors.New("timeout")
		if _, err := f.svc.SettleOrder(context.Background(), orderID, "confirm", nil); !errors.Is(err, ErrProviderUnavailable) {
			t.Fatalf("expected ErrProviderUnavailable, got %v", err)
		}
	})
}

func TestAvailability_UsesCache(t *testing.T) {
	f := newFixture(t)
	cache := newMapCache()
	f.svc.Cache = cache
	f.db.bookings = append(f.db.bookings, &bookings.Booking{
		ID:         uuid.New(),
		StreamerID: f.streamer.ID,
		StartTime:  time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2024, 6, 10, 5, 0, 0, 0, time.UTC),
		Status:     bookings.StatusAccepted,
	})

	grid, err := f.svc.Availability(context.Background(), f.streamer.ID, "2024-06-10", jakarta)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if len(grid) != 24 {
		t.Fatalf("expected 24 hour cells, got %d", len(grid))
	}
	for _, h := range []int{10, 11, 12} {
		if grid[h].Available {
			t.Fatalf("hour %d should be booked", h)
		}
	}
	if !grid[9].Available || !grid[13].Available || grid[7].Available {
		t.Fatalf("unexpected grid around the booking: 7=%v 9=%v 13=%v", grid[7].Available, grid[9].Available, grid[13].Available)
	}

	if _, err := f.svc.Availability(context.Background(), f.streamer.ID, "2024-06-10", jakarta); err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if cache.hits != 1 {
		t.Fatalf("expected the second call to hit the cache, got %d hits", cache.hits)
	}
}

func TestAvailability_BumpDuringComputeIsNotServed(t *testing.T) {
	f := newFixture(t)
	cache := newMapCache()
	f.svc.Cache = cache

	// A booking commits and the listener bumps the generation after the
	// first lookup missed but before its grid is stored.
	cache.onMiss = func(id uuid.UUID) {
		cache.onMiss = nil
		cache.bump(id)
		f.db.bookings = append(f.db.bookings, &bookings.Booking{
			ID:         uuid.New(),
			StreamerID: f.streamer.ID,
			StartTime:  time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2024, 6, 10, 4, 0, 0, 0, time.UTC),
			Status:     bookings.StatusPending,
		})
	}

	if _, err := f.svc.Availability(context.Background(), f.streamer.ID, "2024-06-10", jakarta); err != nil {
		t.Fatalf("Availability: %v", err)
	}
	grid, err := f.svc.Availability(context.Background(), f.streamer.ID, "2024-06-10", jakarta)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if cache.hits != 0 {
		t.Fatalf("grid from the old generation was served")
	}
	if grid[10].Available {
		t.Fatalf("hour 10 should reflect the new booking")
	}
}
