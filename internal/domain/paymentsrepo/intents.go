package paymentsrepo

import (
	"context"
	"errors"
	"fmt"

	"streamhost/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type IntentRepository struct{ q dbx.Querier }

func NewIntentRepository(q dbx.Querier) *IntentRepository {
	return &IntentRepository{q: q}
}

func (r *IntentRepository) Create(ctx context.Context, in *Intent) error {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeout)
	defer cancel()

	err := r.q.QueryRow(ctx, `
		INSERT INTO payment_intents (order_id, user_id, streamer_id, envelope, amount, token, redirect_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, in.OrderID, in.UserID, in.StreamerID, []byte(in.Envelope), in.Amount, in.Token, in.RedirectURL, in.Status).
		Scan(&in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create payment intent: %w", err)
	}
	return nil
}

// GetByOrderID returns nil, nil when the order id is unknown.
func (r *IntentRepository) GetByOrderID(ctx context.Context, orderID string) (*Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeout)
	defer cancel()

	var in Intent
	err := r.q.QueryRow(ctx, `
		SELECT order_id, user_id, streamer_id, envelope, amount, token, redirect_url, status,
		       transaction_id, created_at, updated_at
		FROM payment_intents
		WHERE order_id = $1
	`, orderID).Scan(
		&in.OrderID, &in.UserID, &in.StreamerID, &in.Envelope, &in.Amount, &in.Token, &in.RedirectURL, &in.Status,
		&in.TransactionID, &in.CreatedAt, &in.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment intent: %w", err)
	}
	return &in, nil
}

// SetStatus never moves a paid intent back to another status.
func (r *IntentRepository) SetStatus(ctx context.Context, orderID, status string, transactionID *string) error {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeout)
	defer cancel()

	_, err := r.q.Exec(ctx, `
		UPDATE payment_intents
		   SET status = $2,
		       transaction_id = COALESCE($3, transaction_id),
		       updated_at = now()
		 WHERE order_id = $1 AND (status <> 'paid' OR $2 = 'paid')
	`, orderID, status, transactionID)
	if err != nil {
		return fmt.Errorf("update payment intent: %w", err)
	}
	return nil
}
