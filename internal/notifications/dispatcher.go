package notifications

import (
	"context"
	"errors"
	"fmt"

	"streamhost/internal/booking"
	"streamhost/internal/domain/inbox"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const notificationTimeLayout = "Mon, 02 Jan 2006 15:04"

type InboxWriter interface {
	InsertBatch(ctx context.Context, rows []inbox.Notification) error
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Dispatcher fans a BookingCreated event out to in-app notification rows and
// the message bus. Either sink may be nil.
type Dispatcher struct {
	inbox     InboxWriter
	publisher EventPublisher
	timezones *booking.TimezoneResolver
	logger    *zap.SugaredLogger
}

func NewDispatcher(inbox InboxWriter, publisher EventPublisher, tz *booking.TimezoneResolver, logger *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{inbox: inbox, publisher: publisher, timezones: tz, logger: logger}
}

// BookingsCreated writes one row per booking for the client and one for the
// streamer, in batches of booking.ChunkSize, then publishes the event.
func (d *Dispatcher) BookingsCreated(ctx context.Context, ev BookingCreated) error {
	var errs []error

	if d.inbox != nil {
		rows := BookingRows(ev, d.timezones)
		for _, chunk := range booking.Chunk(rows, booking.ChunkSize) {
			if err := d.inbox.InsertBatch(ctx, chunk); err != nil {
				errs = append(errs, fmt.Errorf("insert notifications: %w", err))
				break
			}
		}
	}

	if d.publisher != nil {
		if err := d.publisher.PublishJSON(ctx, BookingCreatedKey, ev); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", BookingCreatedKey, err))
		}
	}

	return errors.Join(errs...)
}

// BookingRows renders notification rows with times shown in the booking's
// timezone.
func BookingRows(ev BookingCreated, tz *booking.TimezoneResolver) []inbox.Notification {
	rows := make([]inbox.Notification, 0, 2*len(ev.Bookings))
	for _, b := range ev.Bookings {
		when := fmt.Sprintf("%s - %s",
			tz.FormatLocal(b.Start, ev.Timezone, notificationTimeLayout),
			tz.FormatLocal(b.End, ev.Timezone, "15:04"),
		)
		data := map[string]string{
			"booking_id": b.ID.String(),
			"order_id":   ev.OrderID,
		}
		rows = append(rows, inbox.Notification{
			UserID: ev.ClientID,
			Title:  "Booking confirmed",
			Body:   fmt.Sprintf("Your %s session with %s on %s is paid and waiting for confirmation.", ev.Platform, ev.StreamerName, when),
			Type:   "booking_paid",
			Data:   data,
		})
		// Without a resolved streamer account there is no user to address.
		if ev.StreamerUserID == uuid.Nil {
			continue
		}
		rows = append(rows, inbox.Notification{
			UserID: ev.StreamerUserID,
			Title:  "New booking",
			Body:   fmt.Sprintf("%s booked a %s session on %s.", ev.ClientName, ev.Platform, when),
			Type:   "booking_request",
			Data:   data,
		})
	}
	return rows
}
