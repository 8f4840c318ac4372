package vouchers

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrExhausted = errors.New("voucher has no remaining uses")

type Voucher struct {
	ID                uuid.UUID  `json:"id"`
	Code              string     `json:"code"`
	DiscountAmount    int64      `json:"discount_amount"`
	TotalQuantity     int        `json:"total_quantity"`
	RemainingQuantity int        `json:"remaining_quantity"`
	IsActive          bool       `json:"is_active"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Redeemable reports whether v can still be applied at now.
func (v *Voucher) Redeemable(now time.Time) bool {
	if v == nil || !v.IsActive || v.RemainingQuantity <= 0 {
		return false
	}
	return v.ExpiresAt == nil || v.ExpiresAt.After(now)
}

// Usage records one redemption. Rows are never updated.
type Usage struct {
	ID              uuid.UUID `json:"id"`
	VoucherID       uuid.UUID `json:"voucher_id"`
	BookingID       uuid.UUID `json:"booking_id"`
	UserID          uuid.UUID `json:"user_id"`
	DiscountApplied int64     `json:"discount_applied"`
	OriginalPrice   int64     `json:"original_price"`
	FinalPrice      int64     `json:"final_price"`
	UsedAt          time.Time `json:"used_at"`
}
