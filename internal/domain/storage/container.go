package storage

import (
	"context"
	"errors"

	"streamhost/internal/checkout"
	"streamhost/internal/db"
	"streamhost/internal/domain/bookings"
	"streamhost/internal/domain/inbox"
	"streamhost/internal/domain/paymentsrepo"
	"streamhost/internal/domain/pushtokens"
	"streamhost/internal/domain/schedules"
	"streamhost/internal/domain/streamers"
	"streamhost/internal/domain/users"
	"streamhost/internal/domain/vouchers"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Payments struct {
	Payments paymentsrepo.Store
	Intents  paymentsrepo.IntentStore
	Logs     paymentsrepo.LogsStore
}

type Container struct {
	pool       *pgxpool.Pool // required by WithCheckoutTx
	Users      users.Store
	Streamers  streamers.Store
	Schedules  schedules.Store
	Bookings   bookings.Store
	Vouchers   vouchers.Store
	PushTokens pushtokens.Store
	Inbox      inbox.Store
	Payments   Payments
}

func NewContainer(pool *pgxpool.Pool) *Container {
	return &Container{
		pool:       pool,
		Users:      users.NewRepository(pool),
		Streamers:  streamers.NewRepository(pool),
		Schedules:  schedules.NewRepository(pool),
		Bookings:   bookings.NewRepository(pool),
		Vouchers:   vouchers.NewRepository(pool),
		PushTokens: pushtokens.NewRepository(pool),
		Inbox:      inbox.NewRepository(pool),
		Payments: Payments{
			Payments: paymentsrepo.NewRepository(pool),
			Intents:  paymentsrepo.NewIntentRepository(pool),
			Logs:     paymentsrepo.NewLogsRepository(pool),
		},
	}
}

// WithCheckoutTx runs a booking reconciliation atomically with tx-scoped
// repositories.
func (c *Container) WithCheckoutTx(ctx context.Context, fn func(r checkout.TxRepos) error) error {
	if c.pool == nil {
		return errors.New("storage container has no pool")
	}
	return db.WithTx(ctx, c.pool, func(tx pgx.Tx) error {
		return fn(checkout.TxRepos{
			Bookings: bookings.NewRepository(tx),
			Payments: paymentsrepo.NewRepository(tx),
			Vouchers: vouchers.NewRepository(tx),
		})
	})
}

func (c *Container) Ping(ctx context.Context) error {
	if c.pool == nil {
		return errors.New("storage container has no pool")
	}
	return c.pool.Ping(ctx)
}
