package checkout

import (
	"context"
	"strings"

	"streamhost/internal/booking"
	"streamhost/internal/domain/vouchers"
)

type VoucherResult struct {
	IsValid        bool              `json:"is_valid"`
	Voucher        *vouchers.Voucher `json:"voucher"`
	DiscountAmount int64             `json:"discount_amount"`
	FinalPrice     int64             `json:"final_price"`
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateVoucher checks code against total without redeeming it. Malformed,
// unknown, inactive, expired and used-up codes all yield ErrVoucherNotFound.
func (s *Service) ValidateVoucher(ctx context.Context, code string, total int64) (*VoucherResult, error) {
	code = normalizeCode(code)
	if !booking.ValidVoucherCode(code) {
		return nil, ErrVoucherNotFound
	}

	now := s.Now()
	v, err := s.Vouchers.GetRedeemableByCode(ctx, code, now)
	if err != nil {
		return nil, err
	}
	if !v.Redeemable(now) {
		return nil, ErrVoucherNotFound
	}

	applied, final := booking.ApplyVoucher(v.DiscountAmount, total)
	return &VoucherResult{
		IsValid:        true,
		Voucher:        v,
		DiscountAmount: applied,
		FinalPrice:     final,
	}, nil
}
