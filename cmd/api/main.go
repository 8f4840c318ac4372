package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"streamhost/internal/auth"
	"streamhost/internal/booking"
	"streamhost/internal/cache"
	"streamhost/internal/checkout"
	"streamhost/internal/config"
	"streamhost/internal/db"
	"streamhost/internal/domain/storage"
	applog "streamhost/internal/logger"
	"streamhost/internal/mailer"
	"streamhost/internal/mq"
	"streamhost/internal/notifications"
	"streamhost/internal/payments"
	"streamhost/internal/ratelimiter"
	"streamhost/internal/realtime"
	"streamhost/internal/sealer"

	"go.uber.org/zap"
)

var version = "1.0.0"

//	@title			StreamHost API
//	@description	Booking and payment API for hiring live-stream hosts by the hour.

//	@contact.name	API Support
//	@contact.email	support@streamhost.id

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description
//	@securityDefinitions.basic	BasicAuth

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading configuration:", err)
		os.Exit(1)
	}

	logger, err := applog.New()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	// Database
	pool, err := db.New(cfg.DB.Addr, cfg.DB.MaxConns, cfg.DB.MaxIdleTime)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	store := storage.NewContainer(pool)

	// Redis is optional; without it every cache lookup misses.
	rdb := cache.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
		logger.Infow("redis cache enabled", "addr", cfg.Redis.Addr)
	}
	appCache := cache.New(rdb, cfg.Redis.TTL, logger)

	seal, err := sealer.New(cfg.CredentialsKey)
	if err != nil {
		logger.Fatal(err)
	}

	orderIDs, err := payments.NewOrderIDGenerator(cfg.OrderIDSalt)
	if err != nil {
		logger.Fatal(err)
	}

	paymentManager := payments.NewPaymentManager()
	paymentManager.RegisterGateway(payments.ProviderMidtrans, payments.NewMidtransAdapter(cfg.Midtrans.ServerKey, cfg.Midtrans.Production))

	timezones := booking.NewTimezoneResolver(logger)
	pusher := notifications.NewPusher(notifications.NewExpoAdapter(cfg.ExpoToken), store.PushTokens)

	notifier, closeNotifier := newNotifier(cfg, store, pusher, timezones, logger)
	defer closeNotifier()

	schedules := cache.NewCachedSchedules(store.Schedules, appCache)

	svc := checkout.NewService(checkout.Deps{
		Streamers: store.Streamers,
		Profiles:  store.Users,
		Schedules: schedules,
		Bookings:  store.Bookings,
		Vouchers:  store.Vouchers,
		Intents:   store.Payments.Intents,
		PayLogs:   store.Payments.Logs,
		Gateway:   paymentManager,
		Tx:        store,
		Sealer:    seal,
		Notifier:  notifier,
		OrderIDs:  orderIDs,
		Cache:     appCache,
		Timezones: timezones,
		Logger:    logger,
		FinishURL: cfg.Midtrans.FinishURL,
	})

	rateLimiter := ratelimiter.New(ratelimiter.Config{
		RequestsPerTimeFrame: cfg.RateLimiter.RequestsPerTimeFrame,
		TimeFrame:            cfg.RateLimiter.TimeFrame,
		Enabled:              cfg.RateLimiter.Enabled,
	}, rdb)

	app := &application{
		config:        cfg,
		store:         store,
		checkout:      svc,
		cache:         appCache,
		schedules:     schedules,
		sealer:        seal,
		pusher:        pusher,
		rateLimiter:   rateLimiter,
		authenticator: auth.NewJWTAuthenticator(cfg.Auth.SupabaseJWTSecret, cfg.Auth.Audience, cfg.Auth.Issuer),
		logger:        logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.startBackground(ctx)

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		s := pool.Stat()
		return map[string]int64{
			"total_conns":    int64(s.TotalConns()),
			"idle_conns":     int64(s.IdleConns()),
			"acquired_conns": int64(s.AcquiredConns()),
			"acquire_count":  s.AcquireCount(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}

// startBackground launches the booking change listener, the push token
// pruner and the in-memory limiter sweep. They stop with ctx.
func (app *application) startBackground(ctx context.Context) {
	listener := realtime.NewListener(app.config.DB.Addr, app.logger)
	listener.OnChange(func(ctx context.Context, c realtime.BookingChange) {
		app.cache.BumpAvailability(ctx, c.StreamerID)
	})
	go func() {
		if err := listener.Run(ctx, app.resyncAvailability); err != nil {
			app.logger.Errorw("booking change listener stopped", "error", err)
		}
	}()

	if mem, ok := app.rateLimiter.(*ratelimiter.FixedWindowRateLimiter); ok {
		go mem.Run(ctx)
	}

	app.prunePushTokensDaily(ctx)
}

// resyncAvailability runs after the change listener reconnects. Changes raised
// during the gap were never delivered, so every stored grid is retired.
func (app *application) resyncAvailability(ctx context.Context) {
	app.logger.Warnw("booking change listener reconnected, retiring cached availability")
	app.cache.BumpAllAvailability(ctx)
}

// newNotifier publishes booking events to RabbitMQ when configured, leaving
// pushes and mail to the worker. Without a broker they are sent in-process.
func newNotifier(cfg config.Config, store *storage.Container, pusher *notifications.Pusher, tz *booking.TimezoneResolver, logger *zap.SugaredLogger) (checkout.Notifier, func()) {
	if cfg.RabbitMQ.URL != "" {
		pub, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err == nil {
			logger.Infow("publishing booking events", "exchange", cfg.RabbitMQ.Exchange)
			return notifications.NewDispatcher(store.Inbox, pub, tz, logger), func() { _ = pub.Close() }
		}
		logger.Warnw("rabbitmq unavailable, notifying in-process", "error", err)
	}

	var mail mailer.Client
	if m, err := mailer.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.FromEmail); err == nil {
		mail = m
	} else if !errors.Is(err, mailer.ErrNotConfigured) {
		logger.Warnw("smtp mailer disabled", "error", err)
	}

	return &inlineNotifier{
		dispatcher: notifications.NewDispatcher(store.Inbox, nil, tz, logger),
		fanout:     notifications.NewFanout(pusher, mail, store.Users, tz, logger),
	}, func() {}
}

// inlineNotifier writes inbox rows and then runs the fanout directly.
type inlineNotifier struct {
	dispatcher *notifications.Dispatcher
	fanout     *notifications.Fanout
}

func (n *inlineNotifier) BookingsCreated(ctx context.Context, ev notifications.BookingCreated) error {
	err := n.dispatcher.BookingsCreated(ctx, ev)
	// The request context may end as soon as the response is written.
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	return errors.Join(err, n.fanout.Handle(fctx, ev))
}
