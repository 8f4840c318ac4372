package paymentsrepo

import (
	"context"
	"errors"
	"fmt"

	"streamhost/internal/infra/dbx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionIDConstraint = "payments_transaction_id_key"

type Repository struct{ q dbx.Querier }

func NewRepository(q dbx.Querier) *Repository { return &Repository{q: q} }

// Create inserts p. A second payment for the same provider transaction fails
// with ErrDuplicateTransaction.
func (r *Repository) Create(ctx context.Context, p *Payment) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO payments (
			booking_id, amount, status, transaction_id, order_id, payment_token, midtrans_response
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, p.BookingID, p.Amount, p.Status, p.TransactionID, p.OrderID, p.PaymentToken, []byte(p.ProviderResponse)).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, transactionIDConstraint) {
			return ErrDuplicateTransaction
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// LockTransaction holds a transaction-scoped advisory lock keyed by the
// provider transaction id. Must run inside a transaction; the lock is released
// on commit or rollback.
func (r *Repository) LockTransaction(ctx context.Context, transactionID string) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, transactionID); err != nil {
		return fmt.Errorf("lock transaction %s: %w", transactionID, err)
	}
	return nil
}

// GetByTransactionID returns nil, nil when no payment exists for the transaction.
func (r *Repository) GetByTransactionID(ctx context.Context, transactionID string) (*Payment, error) {
	var p Payment
	err := r.q.QueryRow(ctx, `
		SELECT id, booking_id, amount, status, transaction_id, order_id, payment_token,
		       midtrans_response, created_at, updated_at
		FROM payments
		WHERE transaction_id = $1
	`, transactionID).Scan(
		&p.ID, &p.BookingID, &p.Amount, &p.Status, &p.TransactionID, &p.OrderID, &p.PaymentToken,
		&p.ProviderResponse, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by transaction_id: %w", err)
	}
	return &p, nil
}

func (r *Repository) InsertStatusChange(ctx context.Context, paymentID uuid.UUID, status, note string) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO payment_status_history (payment_id, status, note)
		VALUES ($1, $2, $3)
	`, paymentID, status, note)
	if err != nil {
		return fmt.Errorf("insert payment status: %w", err)
	}
	return nil
}
