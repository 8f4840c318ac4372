package bookings

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("booking not found")
	ErrInvalidStatus  = errors.New("booking status transition not allowed")
	ErrStatusConflict = errors.New("booking status changed concurrently")
)

const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusLive      = "live"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ActiveStatuses hold a streamer's time.
var ActiveStatuses = []string{StatusPending, StatusAccepted}

var transitions = map[string][]string{
	StatusPending:  {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted: {StatusLive, StatusCancelled},
	StatusLive:     {StatusCompleted},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Booking is one continuous hour range sold to a client.
type Booking struct {
	ID                 uuid.UUID  `json:"id"`
	StreamerID         uuid.UUID  `json:"streamer_id"`
	ClientID           uuid.UUID  `json:"client_id"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            time.Time  `json:"end_time"`
	Platform           string     `json:"platform"`
	Price              int64      `json:"price"`
	Status             string     `json:"status"`
	SpecialRequest     *string    `json:"special_request,omitempty" swaggertype:"string"`
	SubAccountUsername *string    `json:"sub_account_username,omitempty" swaggertype:"string"`
	SubAccountSecret   *string    `json:"-"`
	PaymentGroupID     *uuid.UUID `json:"payment_group_id,omitempty" swaggertype:"string"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Summary is returned to the client once payment has been reconciled.
type Summary struct {
	ID              uuid.UUID `json:"id"`
	ClientID        uuid.UUID `json:"client_id"`
	ClientFirstName string    `json:"client_first_name"`
	ClientLastName  string    `json:"client_last_name"`
}

// ClientBooking is the list view for a client's own bookings.
type ClientBooking struct {
	ID           uuid.UUID `json:"id"`
	StreamerID   uuid.UUID `json:"streamer_id"`
	StreamerName string    `json:"streamer_name"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Platform     string    `json:"platform"`
	Price        int64     `json:"price"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type ClientFilter struct {
	Status string
	Limit  int
	Offset int
}
