package streamers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"streamhost/internal/infra/dbx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("streamer not found")

// Streamer is a bookable host. Price is the hourly rate before markup and tax.
type Streamer struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Price       int64     `json:"price"`
	Timezone    string    `json:"timezone"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Streamer, error)
}

type Repository struct{ q dbx.Querier }

func NewRepository(q dbx.Querier) *Repository { return &Repository{q: q} }

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Streamer, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeout)
	defer cancel()

	var s Streamer
	err := r.q.QueryRow(ctx, `
		SELECT id, user_id, display_name, price, COALESCE(timezone, 'Asia/Jakarta'), is_active, created_at
		FROM streamers WHERE id = $1
	`, id).Scan(&s.ID, &s.UserID, &s.DisplayName, &s.Price, &s.Timezone, &s.IsActive, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get streamer: %w", err)
	}
	return &s, nil
}
