package checkout

import (
	"context"
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

type StreamerDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*streamers.Streamer, error)
}

type ProfileDirectory interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*users.Profile, error)
}

type ScheduleSource interface {
	ActiveSchedule(ctx context.Context, streamerID uuid.UUID) (booking.ActiveSchedule, error)
	DayOffs(ctx context.Context, streamerID uuid.UUID, from, to string) ([]string, error)
}

type BookingReader interface {
	ListActiveBetween(ctx context.Context, streamerID uuid.UUID, from, to time.Time) ([]booking.Interval, error)
	ListSummariesByTransactionID(ctx context.Context, transactionID string) ([]bookings.Summary, error)
}

type VoucherLookup interface {
	GetRedeemableByCode(ctx context.Context, code string, now time.Time) (*vouchers.Voucher, error)
}

// Gateway is satisfied by *payments.PaymentManager.
type Gateway interface {
	InitiatePayment(ctx context.Context, method string, req payments.PaymentRequest) (payments.PaymentResponse, error)
	VerifyPayment(ctx context.Context, method string, req payments.PaymentVerifyRequest) (payments.PaymentVerifyResponse, error)
}

type OrderIDSource interface {
	Generate() string
}

type Sealer interface {
	Seal(plain string) (string, error)
}

type Notifier interface {
	BookingsCreated(ctx context.Context, ev notifications.BookingCreated) error
}

// AvailabilityCache stores rendered hour grids per cache generation.
// Implementations must treat a miss and a backend failure the same way. The
// version returned by GetAvailability, hit or miss, is the one a freshly
// computed grid is stored under.
type AvailabilityCache interface {
	GetAvailability(ctx context.Context, streamerID uuid.UUID, date, zone string) ([]booking.HourSlot, string, bool)
	SetAvailability(ctx context.Context, streamerID uuid.UUID, version, date, zone string, grid []booking.HourSlot)
}

// TxBookings, TxPayments and TxVouchers are the repositories available
// inside the checkout transaction.
type TxBookings interface {
	HasOverlap(ctx context.Context, streamerID uuid.UUID, start, end time.Time) (bool, error)
	InsertBatch(ctx context.Context, rows []*bookings.Booking) error
	SetPaymentGroup(ctx context.Context, bookingIDs []uuid.UUID, paymentID uuid.UUID) error
}

type TxPayments interface {
	// LockTransaction serialises reconciliations of one provider transaction
	// until the surrounding unit of work ends.
	LockTransaction(ctx context.Context, transactionID string) error
	GetByTransactionID(ctx context.Context, transactionID string) (*paymentsrepo.Payment, error)
	Create(ctx context.Context, p *paymentsrepo.Payment) error
	InsertStatusChange(ctx context.Context, paymentID uuid.UUID, status, note string) error
}

type TxVouchers interface {
	InsertUsage(ctx context.Context, u *vouchers.Usage) error
	Decrement(ctx context.Context, voucherID uuid.UUID) error
}

type TxRepos struct {
	Bookings TxBookings
	Payments TxPayments
	Vouchers TxVouchers
}

// TxRunner runs fn atomically; any error rolls everything back.
type TxRunner interface {
	WithCheckoutTx(ctx context.Context, fn func(r TxRepos) error) error
}
