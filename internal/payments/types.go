package payments

import "encoding/json"

type PaymentRequest struct {
	OrderID           string
	Amount            int64
	ItemName          string
	CustomerFirstName string
	CustomerLastName  string
	CustomerEmail     string
	CustomerPhone     string
	FinishURL         string
}

type PaymentResponse struct {
	Token       string
	RedirectURL string
	Raw         json.RawMessage
}

type PaymentVerifyRequest struct {
	OrderID string
	Data    map[string]string
}

// PaymentVerifyResponse is the provider's authoritative view of a transaction.
type PaymentVerifyResponse struct {
	Success       bool
	State         string // provider status, e.g. settlement, pending, expire
	Terminal      bool   // no further status change expected
	TransactionID string
	StatusCode    string
	GrossAmount   string
	Raw           json.RawMessage
}
