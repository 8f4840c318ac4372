package notifications

import (
	"time"

	"github.com/google/uuid"
)

// BookingCreatedKey is the routing key of BookingCreated events.
const BookingCreatedKey = "booking.created"

type BookedSlot struct {
	ID    uuid.UUID `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BookingCreated is emitted once a paid order has been turned into bookings.
type BookingCreated struct {
	OrderID        string       `json:"order_id"`
	TransactionID  string       `json:"transaction_id"`
	StreamerID     uuid.UUID    `json:"streamer_id"`
	StreamerUserID uuid.UUID    `json:"streamer_user_id"`
	StreamerName   string       `json:"streamer_name"`
	ClientID       uuid.UUID    `json:"client_id"`
	ClientName     string       `json:"client_name"`
	ClientEmail    string       `json:"client_email"`
	Timezone       string       `json:"timezone"`
	Platform       string       `json:"platform"`
	Amount         int64        `json:"amount"`
	Bookings       []BookedSlot `json:"bookings"`
	OccurredAt     time.Time    `json:"occurred_at"`
}
