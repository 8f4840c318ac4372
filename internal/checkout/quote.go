package checkout

import (
	"context"
	"fmt"

	"streamhost/internal/booking"
	"streamhost/internal/domain/streamers"

	"github.com/google/uuid"
)

type Quote struct {
	StreamerID     uuid.UUID           `json:"streamer_id"`
	Breakdown      booking.Breakdown   `json:"breakdown"`
	Voucher        *booking.VoucherRef `json:"voucher,omitempty"`
	DiscountAmount int64               `json:"discount_amount"`
	FinalPrice     int64               `json:"final_price"`
}

// Quote prices a draft with the streamer's current hourly rate and applies
// the draft's voucher code, if any.
func (s *Service) Quote(ctx context.Context, d booking.Draft) (*Quote, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	streamer, err := s.Streamers.GetByID(ctx, d.StreamerID)
	if err != nil {
		return nil, err
	}
	if !streamer.IsActive {
		return nil, streamers.ErrNotFound
	}
	return s.quote(ctx, d, streamer)
}

func (s *Service) quote(ctx context.Context, d booking.Draft, streamer *streamers.Streamer) (*Quote, error) {
	b := booking.Aggregate(d.Days, streamer.Price)
	q := &Quote{
		StreamerID: streamer.ID,
		Breakdown:  b,
		FinalPrice: b.Total,
	}
	if normalizeCode(d.VoucherCode) == "" {
		return q, nil
	}

	vr, err := s.ValidateVoucher(ctx, d.VoucherCode, b.Total)
	if err != nil {
		return nil, fmt.Errorf("voucher %q: %w", normalizeCode(d.VoucherCode), err)
	}
	q.Voucher = &booking.VoucherRef{
		ID:             vr.Voucher.ID,
		Code:           vr.Voucher.Code,
		DiscountAmount: vr.DiscountAmount,
	}
	q.DiscountAmount = vr.DiscountAmount
	q.FinalPrice = vr.FinalPrice
	return q, nil
}
