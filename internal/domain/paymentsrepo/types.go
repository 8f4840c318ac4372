package paymentsrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrDuplicateTransaction = errors.New("payment for this transaction already recorded")

const (
	IntentPending = "pending"
	IntentPaid    = "paid"
	IntentFailed  = "failed"
)

// Payment is the single record covering every booking created from one
// provider transaction.
type Payment struct {
	ID               uuid.UUID       `json:"id"`
	BookingID        uuid.UUID       `json:"booking_id"`
	Amount           int64           `json:"amount"`
	Status           string          `json:"status"`
	TransactionID    string          `json:"transaction_id"`
	OrderID          string          `json:"order_id"`
	PaymentToken     *string         `json:"payment_token,omitempty" swaggertype:"string"`
	ProviderResponse json.RawMessage `json:"midtrans_response,omitempty" swaggertype:"object"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Intent is the stored build-phase envelope, looked up by order id when the
// provider calls back.
type Intent struct {
	OrderID       string          `json:"order_id"`
	UserID        uuid.UUID       `json:"user_id"`
	StreamerID    uuid.UUID       `json:"streamer_id"`
	Envelope      json.RawMessage `json:"envelope" swaggertype:"object"`
	Amount        int64           `json:"amount"`
	Token         string          `json:"token"`
	RedirectURL   string          `json:"redirect_url"`
	Status        string          `json:"status"`
	TransactionID *string         `json:"transaction_id,omitempty" swaggertype:"string"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type StatusChange struct {
	PaymentID uuid.UUID `json:"payment_id"`
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

type PaymentLog struct {
	ID        int64     `json:"id"`
	OrderID   string    `json:"order_id"`
	LogType   string    `json:"log_type"` // request, response, webhook, error
	Payload   any       `json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Store interface {
	Create(ctx context.Context, p *Payment) error
	GetByTransactionID(ctx context.Context, transactionID string) (*Payment, error)
	LockTransaction(ctx context.Context, transactionID string) error
	InsertStatusChange(ctx context.Context, paymentID uuid.UUID, status, note string) error
}

type IntentStore interface {
	Create(ctx context.Context, in *Intent) error
	GetByOrderID(ctx context.Context, orderID string) (*Intent, error)
	SetStatus(ctx context.Context, orderID, status string, transactionID *string) error
}

type LogsStore interface {
	InsertPaymentLog(ctx context.Context, orderID string, logType string, payload any) error
}
