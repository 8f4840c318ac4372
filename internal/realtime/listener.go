package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// BookingsChannel is raised by the bookings trigger on every insert, status
// change and delete.
const BookingsChannel = "bookings_changed"

// BookingChange is the trigger's JSON payload.
type BookingChange struct {
	Op         string    `json:"op"`
	BookingID  uuid.UUID `json:"booking_id"`
	StreamerID uuid.UUID `json:"streamer_id"`
	Status     string    `json:"status"`
}

func ParseBookingChange(payload string) (BookingChange, error) {
	var c BookingChange
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return c, fmt.Errorf("decode %s payload: %w", BookingsChannel, err)
	}
	if c.StreamerID == uuid.Nil {
		return c, fmt.Errorf("%s payload has no streamer_id", BookingsChannel)
	}
	return c, nil
}

type Handler func(ctx context.Context, c BookingChange)

// Listener keeps a dedicated LISTEN connection and fans booking changes out
// to handlers.
type Listener struct {
	dsn      string
	logger   *zap.SugaredLogger
	handlers []Handler
}

func NewListener(dsn string, logger *zap.SugaredLogger) *Listener {
	return &Listener{dsn: dsn, logger: logger}
}

func (l *Listener) OnChange(h Handler) {
	l.handlers = append(l.handlers, h)
}

func (l *Listener) dispatch(ctx context.Context, payload string) {
	c, err := ParseBookingChange(payload)
	if err != nil {
		l.logger.Warnw("ignoring booking notification", "error", err)
		return
	}
	for _, h := range l.handlers {
		h(ctx, c)
	}
}

// Run blocks until ctx is done. pq reconnects on its own; a nil notification
// marks a reconnect, after which handlers cannot assume they saw every change.
func (l *Listener) Run(ctx context.Context, onReconnect func(ctx context.Context)) error {
	report := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			l.logger.Warnw("bookings listener event", "event", ev, "error", err)
		}
	}
	pl := pq.NewListener(l.dsn, 2*time.Second, time.Minute, report)
	defer pl.Close()

	if err := pl.Listen(BookingsChannel); err != nil {
		return fmt.Errorf("listen %s: %w", BookingsChannel, err)
	}
	l.logger.Infow("listening for booking changes", "channel", BookingsChannel)

	keepalive := time.NewTicker(90 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-pl.Notify:
			if n == nil {
				if onReconnect != nil {
					onReconnect(ctx)
				}
				continue
			}
			l.dispatch(ctx, n.Extra)
		case <-keepalive.C:
			if err := pl.Ping(); err != nil {
				l.logger.Warnw("bookings listener ping failed", "error", err)
			}
		}
	}
}
