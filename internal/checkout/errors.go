package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrVoucherNotFound     = errors.New("voucher not found or no longer valid")
	ErrProviderRejected    = errors.New("payment provider did not return a payment token")
	ErrMissingTransaction  = errors.New("provider result has no transaction id")
	ErrIntentNotFound      = errors.New("no payment intent for this order")
	ErrZeroAmount          = errors.New("orders fully covered by a voucher cannot be paid online")
	ErrProviderUnavailable = errors.New("payment provider status is unavailable")
)

// PersistenceError wraps a store failure after the customer has already
// paid. The order needs manual follow-up.
type PersistenceError struct {
	Step string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("booking persistence failed at %s: %v", e.Step, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
