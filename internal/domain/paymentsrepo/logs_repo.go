package paymentsrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"streamhost/internal/infra/dbx"
)

type LogsRepository struct{ q dbx.Querier }

func NewLogsRepository(q dbx.Querier) *LogsRepository {
	return &LogsRepository{q: q}
}

func (r *LogsRepository) InsertPaymentLog(ctx context.Context, orderID string, logType string, payload any) error {
	var jb []byte
	switch p := payload.(type) {
	case nil:
	case json.RawMessage:
		jb = p
	case []byte:
		jb = p
	default:
		if b, err := json.Marshal(payload); err == nil {
			jb = b
		}
	}

	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeout)
	defer cancel()

	_, err := r.q.Exec(ctx, `
		INSERT INTO payment_logs (order_id, log_type, payload)
		VALUES ($1, $2, $3)
	`, orderID, logType, jb)
	if err != nil {
		return fmt.Errorf("insert payment_log: %w", err)
	}
	return nil
}
