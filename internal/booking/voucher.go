package booking

import "regexp"

var voucherCodeRx = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// ValidVoucherCode reports whether code is six uppercase letters or digits.
func ValidVoucherCode(code string) bool {
	return voucherCodeRx.MatchString(code)
}

// ApplyVoucher clamps a fixed discount against total. The applied discount
// never exceeds total and the final price never drops below zero.
func ApplyVoucher(discount, total int64) (applied, final int64) {
	if total < 0 {
		total = 0
	}
	if discount < 0 {
		discount = 0
	}
	applied = min(discount, total)
	return applied, total - applied
}
