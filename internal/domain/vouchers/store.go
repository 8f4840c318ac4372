package vouchers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"streamhost/internal/infra/dbx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Store interface {
	GetRedeemableByCode(ctx context.Context, code string, now time.Time) (*Voucher, error)
	InsertUsage(ctx context.Context, u *Usage) error
	Decrement(ctx context.Context, voucherID uuid.UUID) error
}

type Repository struct{ q dbx.Querier }

func NewRepository(q dbx.Querier) *Repository { return &Repository{q: q} }

// GetRedeemableByCode returns nil, nil when no active, unexpired voucher with
// remaining uses has this code.
func (r *Repository) GetRedeemableByCode(ctx context.Context, code string, now time.Time) (*Voucher, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeout)
	defer cancel()

	var v Voucher
	err := r.q.QueryRow(ctx, `
		SELECT id, code, discount_amount, total_quantity, remaining_quantity, is_active, expires_at, created_at
		FROM vouchers
		WHERE code = $1
		  AND is_active
		  AND remaining_quantity > 0
		  AND (expires_at IS NULL OR expires_at > $2)
	`, code, now).Scan(
		&v.ID, &v.Code, &v.DiscountAmount, &v.TotalQuantity, &v.RemainingQuantity, &v.IsActive, &v.ExpiresAt, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get voucher: %w", err)
	}
	return &v, nil
}

func (r *Repository) InsertUsage(ctx context.Context, u *Usage) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO voucher_usage (voucher_id, booking_id, user_id, discount_applied, original_price, final_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, used_at
	`, u.VoucherID, u.BookingID, u.UserID, u.DiscountApplied, u.OriginalPrice, u.FinalPrice).
		Scan(&u.ID, &u.UsedAt)
	if err != nil {
		return fmt.Errorf("insert voucher usage: %w", err)
	}
	return nil
}

// Decrement takes one use off the voucher in a single statement so concurrent
// redemptions cannot drive the count below zero.
func (r *Repository) Decrement(ctx context.Context, voucherID uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE vouchers
		   SET remaining_quantity = remaining_quantity - 1
		 WHERE id = $1 AND remaining_quantity > 0
	`, voucherID)
	if err != nil {
		return fmt.Errorf("decrement voucher: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExhausted
	}
	return nil
}
