package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/9ssi7/exponent"
	"github.com/google/uuid"
)

type BookingEvent string

const (
	EventCreated   BookingEvent = "CREATED"
	EventAccepted  BookingEvent = "ACCEPTED"
	EventRejected  BookingEvent = "REJECTED"
	EventCancelled BookingEvent = "CANCELLED"
	EventLive      BookingEvent = "LIVE"
	EventCompleted BookingEvent = "COMPLETED"
)

// EventForStatus maps a booking status to the push event announcing it.
func EventForStatus(status string) BookingEvent {
	switch status {
	case "accepted":
		return EventAccepted
	case "rejected":
		return EventRejected
	case "cancelled":
		return EventCancelled
	case "live":
		return EventLive
	case "completed":
		return EventCompleted
	}
	return EventCreated
}

var ErrNoTokens = errors.New("no push tokens")

type TokenSource interface {
	GetTokensByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]string, error)
}

// SendBookingNotification pushes a booking event to every device of userID.
func SendBookingNotification(ctx context.Context, push PushSender, tokens TokenSource, userID uuid.UUID, event BookingEvent, bookingID string) error {
	tokensMap, err := tokens.GetTokensByUserIDs(ctx, []uuid.UUID{userID})
	if err != nil {
		return err
	}
	userTokens := dedupe(tokensMap[userID])
	if len(userTokens) == 0 {
		return ErrNoTokens
	}

	title, body, screen := bookingCopy(event, bookingID)

	msgs := make([]*exponent.Message, 0, len(userTokens))
	for _, t := range userTokens {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			// the app routes with router.push(`/${data.screen}`)
			Data: map[string]string{
				"type":      "booking",
				"event":     string(event),
				"bookingId": bookingID,
				"screen":    screen,
			},
		})
	}

	_, err = push.Publish(ctx, msgs)
	return err
}

func bookingCopy(event BookingEvent, bookingID string) (title, body, screen string) {
	screen = "bookings"
	switch event {
	case EventCreated:
		return "New Booking", "You have a new paid booking request", "streamer/bookings"
	case EventAccepted:
		return "Booking Accepted", fmt.Sprintf("Your booking (ID: %s) has been confirmed!", bookingID), screen
	case EventRejected:
		return "Booking Rejected", fmt.Sprintf("Your booking (ID: %s) has been rejected.", bookingID), screen
	case EventCancelled:
		return "Booking Cancelled", fmt.Sprintf("Your booking (ID: %s) has been cancelled", bookingID), screen
	case EventLive:
		return "You're Live", fmt.Sprintf("The stream for booking %s has started", bookingID), screen
	case EventCompleted:
		return "Stream Completed", fmt.Sprintf("Booking %s is complete. Thanks for streaming with us!", bookingID), screen
	}
	return "Booking Update", fmt.Sprintf("Your booking (ID: %s) has an update.", bookingID), screen
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
