package schedules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"streamhost/internal/booking"
	"streamhost/internal/db"
	"streamhost/internal/infra/dbx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	ListSlots(ctx context.Context, streamerID uuid.UUID) ([]Slot, error)
	ReplaceSlots(ctx context.Context, streamerID uuid.UUID, slots []booking.ScheduleSlot) (booking.ActiveSchedule, error)
	ActiveSchedule(ctx context.Context, streamerID uuid.UUID) (booking.ActiveSchedule, error)
	DayOffs(ctx context.Context, streamerID uuid.UUID, from, to string) ([]string, error)
	AddDayOff(ctx context.Context, d DayOff) error
	DeleteDayOff(ctx context.Context, streamerID uuid.UUID, date string) error
}

var ErrDayOffNotFound = errors.New("day off not found")

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListSlots(ctx context.Context, streamerID uuid.UUID) ([]Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, streamer_id, day_of_week,
		       to_char(start_time, 'HH24:MI'),
		       CASE WHEN end_time = '24:00'::time THEN '24:00' ELSE to_char(end_time, 'HH24:MI') END,
		       is_available
		FROM streamer_schedule
		WHERE streamer_id = $1
		ORDER BY day_of_week, start_time
	`, streamerID)
	if err != nil {
		return nil, fmt.Errorf("list schedule slots: %w", err)
	}
	defer rows.Close()

	var out []Slot
	for rows.Next() {
		var (
			s   Slot
			dow int
		)
		if err := rows.Scan(&s.ID, &s.StreamerID, &dow, &s.StartTime, &s.EndTime, &s.IsAvailable); err != nil {
			return nil, fmt.Errorf("scan schedule slot: %w", err)
		}
		s.DayOfWeek = time.Weekday(dow)
		out = append(out, s)
	}
	return out, rows.Err()
}

// ReplaceSlots swaps the weekly schedule of a streamer and stores the compiled
// result in streamer_active_schedules within one transaction.
func (r *Repository) ReplaceSlots(ctx context.Context, streamerID uuid.UUID, slots []booking.ScheduleSlot) (booking.ActiveSchedule, error) {
	compiled, err := booking.CompileSchedule(slots)
	if err != nil {
		return nil, err
	}
	doc, err := json.Marshal(compiled)
	if err != nil {
		return nil, fmt.Errorf("encode active schedule: %w", err)
	}

	err = db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM streamer_schedule WHERE streamer_id = $1`, streamerID); err != nil {
			return fmt.Errorf("clear schedule: %w", err)
		}

		if len(slots) > 0 {
			batch := &pgx.Batch{}
			for _, s := range slots {
				batch.Queue(`
					INSERT INTO streamer_schedule (streamer_id, day_of_week, start_time, end_time, is_available)
					VALUES ($1, $2, $3::time, $4::time, $5)
				`, streamerID, int(s.DayOfWeek), s.StartTime, s.EndTime, s.IsAvailable)
			}
			br := tx.SendBatch(ctx, batch)
			for range slots {
				if _, err := br.Exec(); err != nil {
					br.Close()
					return fmt.Errorf("insert schedule slot: %w", err)
				}
			}
			if err := br.Close(); err != nil {
				return err
			}
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO streamer_active_schedules (streamer_id, schedule, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (streamer_id)
			DO UPDATE SET schedule = EXCLUDED.schedule, updated_at = now()
		`, streamerID, doc)
		if err != nil {
			return fmt.Errorf("store active schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return compiled, nil
}

// ActiveSchedule reads the compiled schedule, compiling it from the raw slots
// when no compiled copy exists yet.
func (r *Repository) ActiveSchedule(ctx context.Context, streamerID uuid.UUID) (booking.ActiveSchedule, error) {
	qctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeout)
	defer cancel()

	var doc []byte
	err := r.pool.QueryRow(qctx, `
		SELECT schedule FROM streamer_active_schedules WHERE streamer_id = $1
	`, streamerID).Scan(&doc)
	switch {
	case err == nil:
		var s booking.ActiveSchedule
		if err := json.Unmarshal(doc, &s); err != nil {
			return nil, fmt.Errorf("decode active schedule: %w", err)
		}
		return s, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("get active schedule: %w", err)
	}

	slots, err := r.ListSlots(ctx, streamerID)
	if err != nil {
		return nil, err
	}
	raw := make([]booking.ScheduleSlot, 0, len(slots))
	for _, s := range slots {
		raw = append(raw, booking.ScheduleSlot{
			DayOfWeek:   s.DayOfWeek,
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			IsAvailable: s.IsAvailable,
		})
	}
	return booking.CompileSchedule(raw)
}

// DayOffs lists day-off dates (yyyy-MM-dd) between from and to inclusive.
func (r *Repository) DayOffs(ctx context.Context, streamerID uuid.UUID, from, to string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT to_char(off_date, 'YYYY-MM-DD')
		FROM streamer_day_offs
		WHERE streamer_id = $1 AND off_date BETWEEN $2::date AND $3::date
		ORDER BY off_date
	`, streamerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list day offs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan day off: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repository) AddDayOff(ctx context.Context, d DayOff) error {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO streamer_day_offs (streamer_id, off_date, reason)
		VALUES ($1, $2::date, $3)
		ON CONFLICT (streamer_id, off_date) DO UPDATE SET reason = EXCLUDED.reason
	`, d.StreamerID, d.Date, d.Reason)
	if err != nil {
		return fmt.Errorf("add day off: %w", err)
	}
	return nil
}

func (r *Repository) DeleteDayOff(ctx context.Context, streamerID uuid.UUID, date string) error {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
		DELETE FROM streamer_day_offs WHERE streamer_id = $1 AND off_date = $2::date
	`, streamerID, date)
	if err != nil {
		return fmt.Errorf("delete day off: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDayOffNotFound
	}
	return nil
}
