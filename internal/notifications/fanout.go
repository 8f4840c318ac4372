package notifications

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"streamhost/internal/booking"
	"streamhost/internal/domain/users"
	"streamhost/internal/mailer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProfileLookup interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*users.Profile, error)
}

// Fanout delivers the parts of a BookingCreated event that live outside the
// database: the streamer's push plus the receipt and request mails. Every
// dependency is optional.
type Fanout struct {
	pusher    *Pusher
	mail      mailer.Client
	profiles  ProfileLookup
	timezones *booking.TimezoneResolver
	logger    *zap.SugaredLogger
}

func NewFanout(pusher *Pusher, mail mailer.Client, profiles ProfileLookup, tz *booking.TimezoneResolver, logger *zap.SugaredLogger) *Fanout {
	if tz == nil {
		tz = booking.NewTimezoneResolver(logger)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Fanout{pusher: pusher, mail: mail, profiles: profiles, timezones: tz, logger: logger}
}

func (f *Fanout) Handle(ctx context.Context, ev BookingCreated) error {
	var errs []error

	if f.pusher != nil {
		if err := f.pusher.BookingCreated(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("push booking created: %w", err))
		}
	}

	if f.mail != nil {
		data := BookingMailData(ev, f.timezones)
		if ev.ClientEmail != "" {
			if _, err := f.mail.Send(mailer.BookingReceiptTemplate, ev.ClientName, ev.ClientEmail, data); err != nil {
				errs = append(errs, fmt.Errorf("send receipt: %w", err))
			}
		}
		if err := f.mailStreamer(ctx, ev, data); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		f.logger.Warnw("booking fanout incomplete", "order_id", ev.OrderID, "error", err)
		return err
	}
	return nil
}

func (f *Fanout) mailStreamer(ctx context.Context, ev BookingCreated, data mailer.BookingMail) error {
	if f.profiles == nil || ev.StreamerUserID == uuid.Nil {
		return nil
	}
	p, err := f.profiles.GetProfile(ctx, ev.StreamerUserID)
	if err != nil {
		return fmt.Errorf("streamer profile: %w", err)
	}
	if p.Email == "" {
		return nil
	}
	if _, err := f.mail.Send(mailer.BookingRequestTemplate, ev.StreamerName, p.Email, data); err != nil {
		return fmt.Errorf("send booking request: %w", err)
	}
	return nil
}

// BookingMailData renders session times in the booking's timezone.
func BookingMailData(ev BookingCreated, tz *booking.TimezoneResolver) mailer.BookingMail {
	m := mailer.BookingMail{
		OrderID:      ev.OrderID,
		ClientName:   ev.ClientName,
		StreamerName: ev.StreamerName,
		Platform:     ev.Platform,
		Timezone:     ev.Timezone,
		Amount:       FormatRupiah(ev.Amount),
	}
	for _, b := range ev.Bookings {
		m.Sessions = append(m.Sessions, fmt.Sprintf("%s - %s",
			tz.FormatLocal(b.Start, ev.Timezone, notificationTimeLayout),
			tz.FormatLocal(b.End, ev.Timezone, "15:04"),
		))
	}
	return m
}

// FormatRupiah groups thousands with dots: 432900 -> "432.900".
func FormatRupiah(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := strconv.FormatInt(amount, 10)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "." + s[i:]
	}
	return sign + s
}
