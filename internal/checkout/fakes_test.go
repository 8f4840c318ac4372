package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"streamhost/internal/booking"
	"streamhost/internal/domain/bookings"
	"streamhost/internal/domain/paymentsrepo"
	"streamhost/internal/domain/streamers"
	"streamhost/internal/domain/users"
	"streamhost/internal/domain/vouchers"
	"streamhost/internal/notifications"
	"streamhost/internal/payments"

	"github.com/google/uuid"
)

// memDB is an in-memory stand-in for the Postgres tables the checkout
// service touches. WithCheckoutTx snapshots it and restores the snapshot when
// the unit of work fails.
type memDB struct {
	mu sync.Mutex

	bookings   []*bookings.Booking
	payments   []*paymentsrepo.Payment
	statuses   []paymentsrepo.StatusChange
	usages     []*vouchers.Usage
	vouchers   map[string]*vouchers.Voucher
	intents    map[string]*paymentsrepo.Intent
	logs       []paymentsrepo.PaymentLog
	profiles   map[uuid.UUID]*users.Profile
	streamers  map[uuid.UUID]*streamers.Streamer
	schedule   booking.ActiveSchedule
	dayOffs    []string
	insertCall int
	groupCall  int
	txCount    int

	failPaymentCreate error
	hidePrecheck      bool
	locked            []string
}

func newMemDB() *memDB {
	return &memDB{
		vouchers:  make(map[string]*vouchers.Voucher),
		intents:   make(map[string]*paymentsrepo.Intent),
		profiles:  make(map[uuid.UUID]*users.Profile),
		streamers: make(map[uuid.UUID]*streamers.Streamer),
	}
}

type snapshot struct {
	bookings []*bookings.Booking
	payments []*paymentsrepo.Payment
	statuses []paymentsrepo.StatusChange
	usages   []*vouchers.Usage
	vouchers map[string]vouchers.Voucher
}

func (m *memDB) snapshot() snapshot {
	s := snapshot{
		bookings: append([]*bookings.Booking(nil), m.bookings...),
		payments: append([]*paymentsrepo.Payment(nil), m.payments...),
		statuses: append([]paymentsrepo.StatusChange(nil), m.statuses...),
		usages:   append([]*vouchers.Usage(nil), m.usages...),
		vouchers: make(map[string]vouchers.Voucher, len(m.vouchers)),
	}
	for k, v := range m.vouchers {
		s.vouchers[k] = *v
	}
	return s
}

func (m *memDB) restore(s snapshot) {
	m.bookings = s.bookings
	m.payments = s.payments
	m.statuses = s.statuses
	m.usages = s.usages
	for k, v := range s.vouchers {
		v := v
		m.vouchers[k] = &v
	}
}

func (m *memDB) WithCheckoutTx(ctx context.Context, fn func(r TxRepos) error) error {
	m.txCount++
	snap := m.snapshot()
	if err := fn(TxRepos{Bookings: m, Payments: m, Vouchers: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

// bookings

func active(status string) bool {
	return status == bookings.StatusPending || status == bookings.StatusAccepted
}

func (m *memDB) ListActiveBetween(_ context.Context, streamerID uuid.UUID, from, to time.Time) ([]booking.Interval, error) {
	var out []booking.Interval
	for _, b := range m.bookings {
		if b.StreamerID == streamerID && active(b.Status) && b.StartTime.Before(to) && b.EndTime.After(from) {
			out = append(out, booking.Interval{Start: b.StartTime, End: b.EndTime})
		}
	}
	return out, nil
}

func (m *memDB) HasOverlap(_ context.Context, streamerID uuid.UUID, start, end time.Time) (bool, error) {
	for _, b := range m.bookings {
		if b.StreamerID == streamerID && active(b.Status) && b.StartTime.Before(end) && b.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memDB) InsertBatch(_ context.Context, rows []*bookings.Booking) error {
	m.insertCall++
	if len(rows) > booking.ChunkSize {
		return errors.New("batch larger than chunk size")
	}
	for _, b := range rows {
		b.ID = uuid.New()
		b.CreatedAt = time.Now()
		cp := *b
		m.bookings = append(m.bookings, &cp)
	}
	return nil
}

func (m *memDB) SetPaymentGroup(_ context.Context, ids []uuid.UUID, paymentID uuid.UUID) error {
	m.groupCall++
	if len(ids) > booking.ChunkSize {
		return errors.New("update larger than chunk size")
	}
	for _, id := range ids {
		found := false
		for _, b := range m.bookings {
			if b.ID == id {
				pid := paymentID
				b.PaymentGroupID = &pid
				found = true
			}
		}
		if !found {
			return errors.New("booking not found")
		}
	}
	return nil
}

func (m *memDB) ListSummariesByTransactionID(_ context.Context, txID string) ([]bookings.Summary, error) {
	var pid uuid.UUID
	for _, p := range m.payments {
		if p.TransactionID == txID {
			pid = p.ID
		}
	}
	var out []bookings.Summary
	for _, b := range m.bookings {
		if b.PaymentGroupID != nil && *b.PaymentGroupID == pid {
			s := bookings.Summary{ID: b.ID, ClientID: b.ClientID}
			if p := m.profiles[b.ClientID]; p != nil {
				s.ClientFirstName, s.ClientLastName = p.FirstName, p.LastName
			}
			out = append(out, s)
		}
	}
	return out, nil
}

// payments

func (m *memDB) LockTransaction(_ context.Context, txID string) error {
	m.locked = append(m.locked, txID)
	return nil
}

func (m *memDB) GetByTransactionID(_ context.Context, txID string) (*paymentsrepo.Payment, error) {
	if m.hidePrecheck {
		return nil, nil
	}
	for _, p := range m.payments {
		if p.TransactionID == txID {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memDB) Create(_ context.Context, p *paymentsrepo.Payment) error {
	if m.failPaymentCreate != nil {
		return m.failPaymentCreate
	}
	for _, existing := range m.payments {
		if existing.TransactionID == p.TransactionID {
			return paymentsrepo.ErrDuplicateTransaction
		}
	}
	p.ID = uuid.New()
	cp := *p
	m.payments = append(m.payments, &cp)
	return nil
}

func (m *memDB) InsertStatusChange(_ context.Context, paymentID uuid.UUID, status, note string) error {
	m.statuses = append(m.statuses, paymentsrepo.StatusChange{PaymentID: paymentID, Status: status, Note: note})
	return nil
}

// vouchers

func (m *memDB) GetRedeemableByCode(_ context.Context, code string, now time.Time) (*vouchers.Voucher, error) {
	v, ok := m.vouchers[code]
	if !ok || !v.Redeemable(now) {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (m *memDB) InsertUsage(_ context.Context, u *vouchers.Usage) error {
	u.ID = uuid.New()
	m.usages = append(m.usages, u)
	return nil
}

func (m *memDB) Decrement(_ context.Context, id uuid.UUID) error {
	for _, v := range m.vouchers {
		if v.ID == id {
			if v.RemainingQuantity <= 0 {
				return vouchers.ErrExhausted
			}
			v.RemainingQuantity--
			return nil
		}
	}
	return vouchers.ErrExhausted
}

// directory, schedules, intents, logs

type intentStore struct{ db *memDB }

func (s intentStore) Create(_ context.Context, in *paymentsrepo.Intent) error {
	cp := *in
	s.db.intents[in.OrderID] = &cp
	return nil
}

func (s intentStore) GetByOrderID(_ context.Context, orderID string) (*paymentsrepo.Intent, error) {
	return s.db.intents[orderID], nil
}

func (s intentStore) SetStatus(_ context.Context, orderID, status string, txID *string) error {
	in, ok := s.db.intents[orderID]
	if !ok {
		return nil
	}
	in.Status = status
	if txID != nil {
		in.TransactionID = txID
	}
	return nil
}

func (m *memDB) InsertPaymentLog(_ context.Context, orderID, logType string, payload any) error {
	m.logs = append(m.logs, paymentsrepo.PaymentLog{OrderID: orderID, LogType: logType, Payload: payload})
	return nil
}

func (m *memDB) logTypes(orderID string) []string {
	var out []string
	for _, l := range m.logs {
		if l.OrderID == orderID {
			out = append(out, l.LogType)
		}
	}
	return out
}

type directory struct{ db *memDB }

func (d directory) GetByID(_ context.Context, id uuid.UUID) (*streamers.Streamer, error) {
	s, ok := d.db.streamers[id]
	if !ok {
		return nil, streamers.ErrNotFound
	}
	return s, nil
}

func (d directory) GetProfile(_ context.Context, id uuid.UUID) (*users.Profile, error) {
	p, ok := d.db.profiles[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return p, nil
}

func (m *memDB) ActiveSchedule(context.Context, uuid.UUID) (booking.ActiveSchedule, error) {
	return m.schedule, nil
}

func (m *memDB) DayOffs(_ context.Context, _ uuid.UUID, from, to string) ([]string, error) {
	var out []string
	for _, d := range m.dayOffs {
		if d >= from && d <= to {
			out = append(out, d)
		}
	}
	return out, nil
}

// provider

type fakeGateway struct {
	token     string
	initErr   error
	verify    payments.PaymentVerifyResponse
	verifyErr error
	requests  []payments.PaymentRequest
}

func (g *fakeGateway) InitiatePayment(_ context.Context, _ string, req payments.PaymentRequest) (payments.PaymentResponse, error) {
	g.requests = append(g.requests, req)
	if g.initErr != nil {
		return payments.PaymentResponse{}, g.initErr
	}
	return payments.PaymentResponse{Token: g.token, RedirectURL: "https://app.sandbox.midtrans.com/snap/v4/redirection/" + g.token}, nil
}

func (g *fakeGateway) VerifyPayment(context.Context, string, payments.PaymentVerifyRequest) (payments.PaymentVerifyResponse, error) {
	return g.verify, g.verifyErr
}

type fixedOrderIDs struct{ n int }

func (f *fixedOrderIDs) Generate() string {
	f.n++
	return "BOOKING-1718000000000-ORDER" + strings.Repeat("X", f.n)
}

type maskSealer struct{}

func (maskSealer) Seal(plain string) (string, error) {
	return "sealed:" + strings.Repeat("*", len(plain)), nil
}

type recordingNotifier struct {
	events []notifications.BookingCreated
	err    error
}

func (n *recordingNotifier) BookingsCreated(_ context.Context, ev notifications.BookingCreated) error {
	n.events = append(n.events, ev)
	return n.err
}

type mapCache struct {
	grids   map[string][]booking.HourSlot
	version map[uuid.UUID]int
	hits    int
	// onMiss runs after a miss is reported, before the caller computes the grid.
	onMiss func(id uuid.UUID)
}

func newMapCache() *mapCache {
	return &mapCache{grids: map[string][]booking.HourSlot{}, version: map[uuid.UUID]int{}}
}

func (c *mapCache) key(id uuid.UUID, ver, date, zone string) string {
	return id.String() + "|" + ver + "|" + date + "|" + zone
}

func (c *mapCache) GetAvailability(_ context.Context, id uuid.UUID, date, zone string) ([]booking.HourSlot, string, bool) {
	ver := fmt.Sprintf("v%d", c.version[id])
	g, ok := c.grids[c.key(id, ver, date, zone)]
	if ok {
		c.hits++
		return g, ver, true
	}
	if c.onMiss != nil {
		c.onMiss(id)
	}
	return nil, ver, false
}

func (c *mapCache) SetAvailability(_ context.Context, id uuid.UUID, ver, date, zone string, grid []booking.HourSlot) {
	c.grids[c.key(id, ver, date, zone)] = grid
}

func (c *mapCache) bump(id uuid.UUID) { c.version[id]++ }
