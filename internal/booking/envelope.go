package booking

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// EnvelopeVersion is the layout written by this build.
const EnvelopeVersion = 1

type VoucherRef struct {
	ID             uuid.UUID `json:"id"`
	Code           string    `json:"code"`
	DiscountAmount int64     `json:"discount_amount"`
}

// Envelope carries everything the reconciler needs to create bookings once
// the provider confirms payment. It is stored with the payment intent.
type Envelope struct {
	Version        int            `json:"v"`
	StreamerID     uuid.UUID      `json:"streamer_id"`
	UserID         uuid.UUID      `json:"user_id"`
	Bookings       []DaySelection `json:"bookings"`
	Timezone       string         `json:"timezone"`
	Platform       string         `json:"platform"`
	SpecialRequest string         `json:"special_request,omitempty"`
	SubAccount     SubAccount     `json:"sub_account"`
	Price          int64          `json:"price"`
	Hours          int            `json:"hours"`
	Breakdown      Breakdown      `json:"breakdown"`
	FinalPrice     int64          `json:"final_price"`
	Voucher        *VoucherRef    `json:"voucher,omitempty"`
}

func NewEnvelope(userID uuid.UUID, d Draft, price int64, b Breakdown, voucher *VoucherRef, finalPrice int64) Envelope {
	return Envelope{
		Version:        EnvelopeVersion,
		StreamerID:     d.StreamerID,
		UserID:         userID,
		Bookings:       d.Days,
		Timezone:       d.Timezone,
		Platform:       d.Platform,
		SpecialRequest: d.SpecialRequest,
		SubAccount:     d.SubAccount,
		Price:          price,
		Hours:          b.Hours,
		Breakdown:      b,
		FinalPrice:     finalPrice,
		Voucher:        voucher,
	}
}

func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEnvelope parses a stored envelope. Untagged (version 0) envelopes are
// upgraded in place; versions newer than EnvelopeVersion are rejected.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode booking envelope: %w", err)
	}
	switch {
	case e.Version > EnvelopeVersion:
		return Envelope{}, fmt.Errorf("%w: %d", ErrEnvelopeVersion, e.Version)
	case e.Version == 0:
		if e.FinalPrice == 0 && e.Voucher == nil {
			e.FinalPrice = e.Breakdown.Total
		}
		if e.Hours == 0 {
			e.Hours = e.Breakdown.Hours
		}
		e.Version = EnvelopeVersion
	}
	return e, nil
}

// Validate checks an envelope before it is turned into booking rows.
func (e Envelope) Validate() error {
	if e.StreamerID == uuid.Nil {
		return invalid("streamer_id", "is required")
	}
	if e.UserID == uuid.Nil {
		return invalid("user_id", "is required")
	}
	if e.FinalPrice < 0 {
		return invalid("final_price", "must not be negative")
	}
	return validateDays(e.Bookings)
}
