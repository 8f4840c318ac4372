package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"streamhost/internal/booking"
	"streamhost/internal/infra/dbx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Store interface {
	ListActiveBetween(ctx context.Context, streamerID uuid.UUID, from, to time.Time) ([]booking.Interval, error)
	HasOverlap(ctx context.Context, streamerID uuid.UUID, start, end time.Time) (bool, error)
	InsertBatch(ctx context.Context, rows []*Booking) error
	SetPaymentGroup(ctx context.Context, bookingIDs []uuid.UUID, paymentID uuid.UUID) error
	ListSummariesByTransactionID(ctx context.Context, transactionID string) ([]Summary, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, filter ClientFilter) ([]ClientBooking, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error
}

type Repository struct {
	q dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{q: q}
}

// ListActiveBetween returns pending and accepted bookings of a streamer that
// intersect [from, to).
func (r *Repository) ListActiveBetween(ctx context.Context, streamerID uuid.UUID, from, to time.Time) ([]booking.Interval, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeout)
	defer cancel()

	rows, err := r.q.Query(ctx, `
		SELECT start_time, end_time
		FROM bookings
		WHERE streamer_id = $1
		  AND status = ANY($2)
		  AND start_time < $4
		  AND end_time > $3
		ORDER BY start_time
	`, streamerID, ActiveStatuses, from, to)
	if err != nil {
		return nil, fmt.Errorf("list active bookings: %w", err)
	}
	defer rows.Close()

	var out []booking.Interval
	for rows.Next() {
		var iv booking.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, fmt.Errorf("scan booking interval: %w", err)
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

// HasOverlap is meant to run inside the checkout transaction; the exclusion
// constraint on bookings remains the final arbiter.
func (r *Repository) HasOverlap(ctx context.Context, streamerID uuid.UUID, start, end time.Time) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE streamer_id = $1
			  AND status = ANY($2)
			  AND start_time < $4
			  AND end_time > $3
		)
	`, streamerID, ActiveStatuses, start, end).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check booking overlap: %w", err)
	}
	return exists, nil
}

// InsertBatch inserts rows in one round trip and fills in their ids and
// timestamps.
func (r *Repository) InsertBatch(ctx context.Context, rows []*Booking) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, b := range rows {
		batch.Queue(`
			INSERT INTO bookings (
				streamer_id, client_id, start_time, end_time, platform, price, status,
				special_request, sub_account_username, sub_account_secret
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at, updated_at
		`, b.StreamerID, b.ClientID, b.StartTime, b.EndTime, b.Platform, b.Price, b.Status,
			b.SpecialRequest, b.SubAccountUsername, b.SubAccountSecret)
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()

	for _, b := range rows {
		if err := br.QueryRow().Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			if dbx.IsExclusionViolation(err) {
				return booking.ErrAvailabilityConflict
			}
			return fmt.Errorf("insert booking: %w", err)
		}
	}
	return nil
}

func (r *Repository) SetPaymentGroup(ctx context.Context, bookingIDs []uuid.UUID, paymentID uuid.UUID) error {
	if len(bookingIDs) == 0 {
		return nil
	}
	ids := make([]string, len(bookingIDs))
	for i, id := range bookingIDs {
		ids[i] = id.String()
	}

	tag, err := r.q.Exec(ctx, `
		UPDATE bookings
		   SET payment_group_id = $1, updated_at = now()
		 WHERE id = ANY($2::uuid[])
	`, paymentID, ids)
	if err != nil {
		return fmt.Errorf("set payment group: %w", err)
	}
	if tag.RowsAffected() != int64(len(bookingIDs)) {
		return fmt.Errorf("set payment group: updated %d of %d bookings", tag.RowsAffected(), len(bookingIDs))
	}
	return nil
}

// ListSummariesByTransactionID returns the bookings already created for a
// provider transaction, in insertion order.
func (r *Repository) ListSummariesByTransactionID(ctx context.Context, transactionID string) ([]Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeout)
	defer cancel()

	rows, err := r.q.Query(ctx, `
		SELECT b.id, b.client_id, COALESCE(pr.first_name, ''), COALESCE(pr.last_name, '')
		FROM payments p
		JOIN bookings b ON b.payment_group_id = p.id
		LEFT JOIN profiles pr ON pr.id = b.client_id
		WHERE p.transaction_id = $1
		ORDER BY b.start_time, b.created_at
	`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list booking summaries: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.ClientID, &s.ClientFirstName, &s.ClientLastName); err != nil {
			return nil, fmt.Errorf("scan booking summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeout)
	defer cancel()

	var (
		b     Booking
		group uuid.NullUUID
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, streamer_id, client_id, start_time, end_time, platform, price, status,
		       special_request, sub_account_username, sub_account_secret, payment_group_id,
		       created_at, updated_at
		FROM bookings WHERE id = $1
	`, id).Scan(
		&b.ID, &b.StreamerID, &b.ClientID, &b.StartTime, &b.EndTime, &b.Platform, &b.Price, &b.Status,
		&b.SpecialRequest, &b.SubAccountUsername, &b.SubAccountSecret, &group,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if group.Valid {
		b.PaymentGroupID = &group.UUID
	}
	return &b, nil
}

func (r *Repository) ListByClient(ctx context.Context, clientID uuid.UUID, filter ClientFilter) ([]ClientBooking, int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeout)
	defer cancel()

	rows, err := r.q.Query(ctx, `
		SELECT b.id, b.streamer_id, s.display_name, b.start_time, b.end_time,
		       b.platform, b.price, b.status, b.created_at,
		       COUNT(*) OVER() AS total
		FROM bookings b
		JOIN streamers s ON s.id = b.streamer_id
		WHERE b.client_id = $1
		  AND ($2 = '' OR b.status = $2)
		ORDER BY b.start_time DESC
		LIMIT $3 OFFSET $4
	`, clientID, filter.Status, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list client bookings: %w", err)
	}
	defer rows.Close()

	var (
		out   []ClientBooking
		total int
	)
	for rows.Next() {
		var cb ClientBooking
		if err := rows.Scan(
			&cb.ID, &cb.StreamerID, &cb.StreamerName, &cb.StartTime, &cb.EndTime,
			&cb.Platform, &cb.Price, &cb.Status, &cb.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan client booking: %w", err)
		}
		out = append(out, cb)
	}
	return out, total, rows.Err()
}

// UpdateStatus moves a booking from one status to another. It fails with
// ErrStatusConflict when the stored status is no longer from.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	if !CanTransition(from, to) {
		return ErrInvalidStatus
	}

	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeout)
	defer cancel()

	tag, err := r.q.Exec(ctx, `
		UPDATE bookings
		   SET status = $3, updated_at = now()
		 WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}
