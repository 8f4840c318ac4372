package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"streamhost/internal/booking"
	"streamhost/internal/checkout"
	"streamhost/internal/domain/bookings"
	"streamhost/internal/domain/schedules"
	"streamhost/internal/domain/streamers"
	"streamhost/internal/domain/users"

	"github.com/go-playground/validator/v10"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.logger.Warnw("forbidden", "method", r.Method, "path", r.URL.Path)

	writeJSONError(w, http.StatusForbidden, "forbidden")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("conflict response", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusConflict, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusNotFound, err.Error())
}

func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)

	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) badGatewayResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("payment provider error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusBadGateway, "the payment provider could not process the request, please try again")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)

	secs := int(retryAfter.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))

	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+strconv.Itoa(secs)+"s")
}

// domainErrorResponse maps errors from the booking and checkout packages to
// HTTP responses.
func (app *application) domainErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr    *booking.ValidationError
		fields  validator.ValidationErrors
		persist *checkout.PersistenceError
	)

	switch {
	case errors.As(err, &verr), errors.As(err, &fields):
		app.badRequestResponse(w, r, err)

	case errors.Is(err, checkout.ErrZeroAmount),
		errors.Is(err, checkout.ErrMissingTransaction):
		app.badRequestResponse(w, r, err)

	case errors.Is(err, booking.ErrAvailabilityConflict),
		errors.Is(err, bookings.ErrInvalidStatus),
		errors.Is(err, bookings.ErrStatusConflict):
		app.conflictResponse(w, r, err)

	case errors.Is(err, checkout.ErrVoucherNotFound),
		errors.Is(err, checkout.ErrIntentNotFound),
		errors.Is(err, streamers.ErrNotFound),
		errors.Is(err, bookings.ErrNotFound),
		errors.Is(err, schedules.ErrDayOffNotFound),
		errors.Is(err, users.ErrNotFound):
		app.notFoundResponse(w, r, err)

	case errors.Is(err, checkout.ErrProviderRejected),
		errors.Is(err, checkout.ErrProviderUnavailable):
		app.badGatewayResponse(w, r, err)

	case errors.As(err, &persist):
		// The customer has paid; the order needs a human to finish it.
		app.logger.Errorw("booking persistence failed", "method", r.Method, "path", r.URL.Path, "step", persist.Step, "error", err.Error())
		writeJSONError(w, http.StatusInternalServerError, "your payment was received but the booking could not be saved, please contact support")

	default:
		app.internalServerError(w, r, err)
	}
}
