package main

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"streamhost/internal/booking"
	"streamhost/internal/domain/bookings"
	"streamhost/internal/domain/paymentsrepo"
	"streamhost/internal/domain/schedules"
	"streamhost/internal/domain/streamers"
	"streamhost/internal/payments"

	"github.com/9ssi7/exponent"
	"github.com/google/uuid"
)

type fakeStreamers map[uuid.UUID]*streamers.Streamer

func (f fakeStreamers) GetByID(_ context.Context, id uuid.UUID) (*streamers.Streamer, error) {
	s, ok := f[id]
	if !ok {
		return nil, streamers.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

type fakeSchedules struct {
	mu       sync.Mutex
	compiled map[uuid.UUID]booking.ActiveSchedule
	dayOffs  map[uuid.UUID][]string
	replaced int
}

func newFakeSchedules() *fakeSchedules {
	return &fakeSchedules{
		compiled: make(map[uuid.UUID]booking.ActiveSchedule),
		dayOffs:  make(map[uuid.UUID][]string),
	}
}

func (f *fakeSchedules) ListSlots(context.Context, uuid.UUID) ([]schedules.Slot, error) {
	return nil, nil
}

func (f *fakeSchedules) ReplaceSlots(_ context.Context, streamerID uuid.UUID, slots []booking.ScheduleSlot) (booking.ActiveSchedule, error) {
	compiled, err := booking.CompileSchedule(slots)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.compiled[streamerID] = compiled
	f.replaced++
	return compiled, nil
}

func (f *fakeSchedules) ActiveSchedule(_ context.Context, streamerID uuid.UUID) (booking.ActiveSchedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.compiled[streamerID], nil
}

func (f *fakeSchedules) DayOffs(_ context.Context, streamerID uuid.UUID, from, to string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, d := range f.dayOffs[streamerID] {
		if d >= from && d <= to {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeSchedules) AddDayOff(_ context.Context, d schedules.DayOff) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dayOffs[d.StreamerID] = append(f.dayOffs[d.StreamerID], d.Date)
	return nil
}

func (f *fakeSchedules) DeleteDayOff(_ context.Context, streamerID uuid.UUID, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	days := f.dayOffs[streamerID]
	for i, d := range days {
		if d == date {
			f.dayOffs[streamerID] = append(days[:i], days[i+1:]...)
			return nil
		}
	}
	return schedules.ErrDayOffNotFound
}

type fakeBookings struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*bookings.Booking
}

func newFakeBookings(rows ...*bookings.Booking) *fakeBookings {
	f := &fakeBookings{rows: make(map[uuid.UUID]*bookings.Booking)}
	for _, b := range rows {
		f.rows[b.ID] = b
	}
	return f
}

func (f *fakeBookings) ListActiveBetween(_ context.Context, streamerID uuid.UUID, from, to time.Time) ([]booking.Interval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []booking.Interval
	for _, b := range f.rows {
		if b.StreamerID != streamerID {
			continue
		}
		if b.Status != bookings.StatusPending && b.Status != bookings.StatusAccepted {
			continue
		}
		if b.StartTime.Before(to) && b.EndTime.After(from) {
			out = append(out, booking.Interval{Start: b.StartTime, End: b.EndTime})
		}
	}
	return out, nil
}

func (f *fakeBookings) HasOverlap(context.Context, uuid.UUID, time.Time, time.Time) (bool, error) {
	return false, nil
}

func (f *fakeBookings) InsertBatch(context.Context, []*bookings.Booking) error { return nil }

func (f *fakeBookings) SetPaymentGroup(context.Context, []uuid.UUID, uuid.UUID) error { return nil }

func (f *fakeBookings) ListSummariesByTransactionID(context.Context, string) ([]bookings.Summary, error) {
	return nil, nil
}

func (f *fakeBookings) GetByID(_ context.Context, id uuid.UUID) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return nil, bookings.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) ListByClient(_ context.Context, clientID uuid.UUID, filter bookings.ClientFilter) ([]bookings.ClientBooking, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []bookings.ClientBooking
	for _, b := range f.rows {
		if b.ClientID != clientID || (filter.Status != "" && b.Status != filter.Status) {
			continue
		}
		out = append(out, bookings.ClientBooking{ID: b.ID, StreamerID: b.StreamerID, StartTime: b.StartTime, EndTime: b.EndTime, Status: b.Status})
	}
	total := len(out)
	if filter.Offset >= len(out) {
		return nil, total, nil
	}
	out = out[filter.Offset:]
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (f *fakeBookings) UpdateStatus(_ context.Context, id uuid.UUID, from, to string) error {
	if !bookings.CanTransition(from, to) {
		return bookings.ErrInvalidStatus
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok || b.Status != from {
		return bookings.ErrStatusConflict
	}
	b.Status = to
	return nil
}

type fakePushTokens struct {
	mu     sync.Mutex
	tokens map[uuid.UUID][]string
	pruned []time.Duration
}

func newFakePushTokens() *fakePushTokens {
	return &fakePushTokens{tokens: make(map[uuid.UUID][]string)}
}

func (f *fakePushTokens) AddOrUpdatePushToken(_ context.Context, userID uuid.UUID, token string, _ json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[userID] = append(f.tokens[userID], token)
	return nil
}

func (f *fakePushTokens) RemovePushToken(_ context.Context, userID uuid.UUID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.tokens[userID][:0]
	for _, t := range f.tokens[userID] {
		if t != token {
			kept = append(kept, t)
		}
	}
	f.tokens[userID] = kept
	return nil
}

func (f *fakePushTokens) RemoveTokensByTokenList(context.Context, []string) error { return nil }

func (f *fakePushTokens) GetTokensByUserIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID][]string)
	for _, id := range ids {
		out[id] = append([]string(nil), f.tokens[id]...)
	}
	return out, nil
}

func (f *fakePushTokens) PruneStaleTokens(_ context.Context, olderThan time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruned = append(f.pruned, olderThan)
	return nil
}

type fakePush struct {
	mu   sync.Mutex
	msgs []*exponent.Message
}

func (f *fakePush) Publish(_ context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msgs...)
	return nil, nil
}

type fakeIntents struct {
	mu      sync.Mutex
	intents map[string]*paymentsrepo.Intent
}

func (f *fakeIntents) Create(_ context.Context, in *paymentsrepo.Intent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intents[in.OrderID] = in
	return nil
}

func (f *fakeIntents) GetByOrderID(_ context.Context, orderID string) (*paymentsrepo.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.intents[orderID]
	if !ok {
		return nil, nil
	}
	cp := *in
	return &cp, nil
}

func (f *fakeIntents) SetStatus(_ context.Context, orderID, status string, _ *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in, ok := f.intents[orderID]; ok {
		in.Status = status
	}
	return nil
}

type fakeLogs struct {
	mu    sync.Mutex
	types []string
}

func (f *fakeLogs) InsertPaymentLog(_ context.Context, _ string, logType string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.types = append(f.types, logType)
	return nil
}

// fakeGateway reports every order as still pending.
type fakeGateway struct{}

func (fakeGateway) InitiatePayment(_ context.Context, _ string, req payments.PaymentRequest) (payments.PaymentResponse, error) {
	return payments.PaymentResponse{Token: "snap-token", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token"}, nil
}

func (fakeGateway) VerifyPayment(context.Context, string, payments.PaymentVerifyRequest) (payments.PaymentVerifyResponse, error) {
	return payments.PaymentVerifyResponse{State: "pending", Raw: json.RawMessage(`{"transaction_status":"pending"}`)}, nil
}
