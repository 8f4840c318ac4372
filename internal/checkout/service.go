package checkout

import (
	"time"

	"streamhost/internal/booking"
	"streamhost/internal/domain/paymentsrepo"
	"streamhost/internal/payments"

	"go.uber.org/zap"
)

type Deps struct {
	Streamers StreamerDirectory
	Profiles  ProfileDirectory
	Schedules ScheduleSource
	Bookings  BookingReader
	Vouchers  VoucherLookup
	Intents   paymentsrepo.IntentStore
	PayLogs   paymentsrepo.LogsStore
	Gateway   Gateway
	Tx        TxRunner
	Sealer    Sealer
	Notifier  Notifier
	OrderIDs  OrderIDSource
	Cache     AvailabilityCache
	Timezones *booking.TimezoneResolver
	Logger    *zap.SugaredLogger

	Provider  string
	FinishURL string
	Now       func() time.Time
}

// Service prices selections, opens provider payments and turns confirmed
// payments into bookings.
type Service struct {
	Deps
}

func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = zap.NewNop().Sugar()
	}
	if d.Timezones == nil {
		d.Timezones = booking.NewTimezoneResolver(d.Logger)
	}
	if d.Provider == "" {
		d.Provider = payments.ProviderMidtrans
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Service{Deps: d}
}
