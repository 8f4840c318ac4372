package notifications

import (
	"context"
	"errors"

	"github.com/9ssi7/exponent"
	"github.com/google/uuid"
)

// PushSender is tied directly to the exponent SDK types.
type PushSender interface {
	Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error)
}

// Pusher sends booking pushes to the devices registered for a user.
type Pusher struct {
	push   PushSender
	tokens TokenSource
}

func NewPusher(push PushSender, tokens TokenSource) *Pusher {
	return &Pusher{push: push, tokens: tokens}
}

// BookingCreated tells the streamer about a new paid booking request.
// Missing devices are not an error.
func (p *Pusher) BookingCreated(ctx context.Context, ev BookingCreated) error {
	if len(ev.Bookings) == 0 || ev.StreamerUserID == uuid.Nil {
		return nil
	}
	err := SendBookingNotification(ctx, p.push, p.tokens, ev.StreamerUserID, EventCreated, ev.Bookings[0].ID.String())
	if errors.Is(err, ErrNoTokens) {
		return nil
	}
	return err
}

// StatusChanged tells the client their booking moved to status.
func (p *Pusher) StatusChanged(ctx context.Context, clientID, bookingID uuid.UUID, status string) error {
	err := SendBookingNotification(ctx, p.push, p.tokens, clientID, EventForStatus(status), bookingID.String())
	if errors.Is(err, ErrNoTokens) {
		return nil
	}
	return err
}
