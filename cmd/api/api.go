package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streamhost/docs" //this is required to generate swagger docs
	"streamhost/internal/auth"
	"streamhost/internal/cache"
	"streamhost/internal/checkout"
	"streamhost/internal/config"
	"streamhost/internal/domain/storage"
	"streamhost/internal/notifications"
	"streamhost/internal/ratelimiter"
	"streamhost/internal/sealer"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config.Config
	store         *storage.Container
	checkout      *checkout.Service
	cache         *cache.Cache
	schedules     *cache.CachedSchedules
	sealer        *sealer.Sealer
	pusher        *notifications.Pusher
	rateLimiter   ratelimiter.Limiter
	logger        *zap.SugaredLogger
	authenticator auth.Authenticator
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	r.Use(app.RateLimiterMiddleware)

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.Addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)
		r.With(app.BasicAuthMiddleware()).Post("/admin/push-tokens/prune", app.prunePushTokensHandler)

		// Public routes
		r.Route("/streamers/{streamerID}", func(r chi.Router) {
			r.Get("/availability", app.getAvailabilityHandler)
			r.Get("/schedule", app.getScheduleHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Use(app.RequireStreamerOwner)
				r.Put("/schedule", app.replaceScheduleHandler)
				r.Get("/day-offs", app.listDayOffsHandler)
				r.Post("/day-offs", app.addDayOffHandler)
				r.Delete("/day-offs/{date}", app.deleteDayOffHandler)
			})
		})

		// Provider callbacks are authenticated by signature, not by token.
		r.Post("/payments/midtrans/notification", app.midtransNotificationHandler)
		r.Get("/payments/midtrans/finish", app.midtransFinishHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)

			r.Post("/vouchers/validate", app.validateVoucherHandler)

			r.Route("/bookings", func(r chi.Router) {
				r.Post("/quote", app.quoteBookingHandler)
				r.Get("/me", app.listMyBookingsHandler)
				r.Get("/{bookingID}", app.getBookingHandler)
				r.Patch("/{bookingID}/status", app.updateBookingStatusHandler)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Post("/", app.createPaymentHandler)
				r.Post("/{orderID}/confirm", app.confirmPaymentHandler)
			})

			r.Route("/users/push-tokens", func(r chi.Router) {
				r.Post("/", app.savePushTokenHandler)
				r.Delete("/", app.removePushTokenHandler)
			})
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.APIURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.Addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.Addr, "env", app.config.Env)

	return nil
}
