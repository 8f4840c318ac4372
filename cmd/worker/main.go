// Command worker consumes booking events and sends the pushes and mails that
// follow a paid booking.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"streamhost/internal/booking"
	"streamhost/internal/config"
	"streamhost/internal/db"
	"streamhost/internal/domain/pushtokens"
	"streamhost/internal/domain/users"
	applog "streamhost/internal/logger"
	"streamhost/internal/mailer"
	"streamhost/internal/mq"
	"streamhost/internal/notifications"

	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading configuration:", err)
		os.Exit(1)
	}

	base, err := applog.New()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		os.Exit(1)
	}
	logger := base.With("service", "worker")
	defer logger.Sync()

	if cfg.RabbitMQ.URL == "" {
		logger.Fatal("RABBITMQ_URL is required by the worker")
	}

	pool, err := db.New(cfg.DB.Addr, cfg.DB.MaxConns, cfg.DB.MaxIdleTime)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()

	var mail mailer.Client
	m, err := mailer.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.FromEmail)
	switch {
	case err == nil:
		mail = m
	case errors.Is(err, mailer.ErrNotConfigured):
		logger.Warn("SMTP_HOST not set, booking mails are disabled")
	default:
		logger.Fatal(err)
	}

	pusher := notifications.NewPusher(notifications.NewExpoAdapter(cfg.ExpoToken), pushtokens.NewRepository(pool))
	fanout := notifications.NewFanout(pusher, mail, users.NewRepository(pool), booking.NewTimezoneResolver(logger), logger)

	consumer, err := mq.NewConsumer(mq.ConsumerConfig{
		URL:      cfg.RabbitMQ.URL,
		Exchange: cfg.RabbitMQ.Exchange,
		Queue:    cfg.RabbitMQ.Queue,
		Keys:     []string{notifications.BookingCreatedKey},
		Prefetch: 10,
	})
	if err != nil {
		logger.Fatal(err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infow("worker started", "queue", cfg.RabbitMQ.Queue, "exchange", cfg.RabbitMQ.Exchange)

	err = consumer.Run(ctx, logger, func(ctx context.Context, d amqp.Delivery) error {
		ev, err := mq.DecodeJSON[notifications.BookingCreated](d)
		if err != nil {
			return err
		}
		logger.Infow("booking created", "order_id", ev.OrderID, "bookings", len(ev.Bookings))
		return fanout.Handle(ctx, ev)
	})
	if err != nil {
		logger.Fatal(err)
	}
	logger.Info("worker stopped")
}
