package inbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"streamhost/internal/infra/dbx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Notification is an in-app notification row.
type Notification struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Type      string            `json:"type"`
	Data      map[string]string `json:"data,omitempty"`
	IsRead    bool              `json:"is_read"`
	CreatedAt time.Time         `json:"created_at"`
}

type Store interface {
	InsertBatch(ctx context.Context, rows []Notification) error
}

type Repository struct{ q dbx.Querier }

func NewRepository(q dbx.Querier) *Repository { return &Repository{q: q} }

func (r *Repository) InsertBatch(ctx context.Context, rows []Notification) error {
	if len(rows) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeout)
	defer cancel()

	batch := &pgx.Batch{}
	for _, n := range rows {
		data, err := json.Marshal(n.Data)
		if err != nil {
			return fmt.Errorf("encode notification data: %w", err)
		}
		batch.Queue(`
			INSERT INTO notifications (user_id, title, body, type, data)
			VALUES ($1, $2, $3, $4, $5)
		`, n.UserID, n.Title, n.Body, n.Type, data)
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range rows {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
	}
	return nil
}
