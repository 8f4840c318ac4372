package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"streamhost/internal/booking"
	"streamhost/internal/checkout"
	"streamhost/internal/payments"

	"github.com/go-chi/chi/v5"
)

// MidtransNotification holds the fields of an HTTP notification that are
// needed to authenticate it. The full body is logged as received.
type MidtransNotification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	FraudStatus       string `json:"fraud_status"`
}

// createPaymentHandler godoc
//
//	@Summary		Start paying for a booking selection
//	@Description	Validates and prices the selection, rechecks every hour against the live calendar and opens a Midtrans Snap transaction. Bookings are created only once the payment settles.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		booking.Draft	true	"Selection"
//	@Success		201		{object}	checkout.PaymentSession
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		404		{object}	error	"Streamer or voucher not found"
//	@Failure		409		{object}	error	"Slot no longer available"
//	@Failure		502		{object}	error	"Payment provider error"
//	@Security		ApiKeyAuth
//	@Router			/payments [post]
func (app *application) createPaymentHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		app.unauthorizedErrorResponse(w, r, errors.New("unauthorized request"))
		return
	}

	var draft booking.Draft
	if err := readJSON(w, r, &draft); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(draft); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	session, err := app.checkout.CreatePayment(r.Context(), user.ID, draft)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, session); err != nil {
		app.internalServerError(w, r, err)
	}
}

// midtransNotificationHandler godoc
//
//	@Summary		Midtrans payment notification
//	@Description	Verifies signature_key, then asks Midtrans for the order's status and turns settled orders into bookings. Repeated notifications for the same transaction return the bookings already created.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		MidtransNotification	true	"Notification"
//	@Success		200		{object}	checkout.CallbackOutcome
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		403		{object}	error	"Invalid signature"
//	@Failure		500		{object}	error	"Booking could not be saved"
//	@Failure		502		{object}	error	"Payment provider error"
//	@Router			/payments/midtrans/notification [post]
func (app *application) midtransNotificationHandler(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1_048_578))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var n MidtransNotification
	if err := json.Unmarshal(raw, &n); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if n.OrderID == "" {
		writeJSONError(w, http.StatusBadRequest, "order_id is required")
		return
	}

	if !payments.VerifyMidtransSignature(n.OrderID, n.StatusCode, n.GrossAmount, app.config.Midtrans.ServerKey, n.SignatureKey) {
		app.logger.Warnw("midtrans notification rejected", "order_id", n.OrderID, "reason", "bad signature")
		writeJSONError(w, http.StatusForbidden, "invalid signature")
		return
	}

	// Test pings from the dashboard and orders from other systems sharing the
	// merchant account.
	if !payments.IsOrderID(n.OrderID) {
		app.logger.Infow("ignoring midtrans notification", "order_id", n.OrderID)
		app.jsonResponse(w, http.StatusOK, map[string]string{"order_id": n.OrderID, "outcome": "ignored"})
		return
	}

	out, err := app.checkout.SettleOrder(r.Context(), n.OrderID, "webhook", raw)
	if err != nil {
		if errors.Is(err, checkout.ErrIntentNotFound) {
			app.logger.Warnw("midtrans notification for unknown order", "order_id", n.OrderID)
			app.jsonResponse(w, http.StatusOK, map[string]string{"order_id": n.OrderID, "outcome": "ignored"})
			return
		}
		app.domainErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, out); err != nil {
		app.internalServerError(w, r, err)
	}
}

// confirmPaymentHandler godoc
//
//	@Summary		Confirm a payment after returning from Midtrans
//	@Description	Runs the same settlement as the notification, for clients that come back before the notification arrives.
//	@Tags			Payments
//	@Produce		json
//	@Param			orderID	path		string	true	"Order ID"
//	@Success		200		{object}	checkout.CallbackOutcome
//	@Failure		403		{object}	error	"Forbidden"
//	@Failure		404		{object}	error	"Order not found"
//	@Failure		500		{object}	error	"Booking could not be saved"
//	@Failure		502		{object}	error	"Payment provider error"
//	@Security		ApiKeyAuth
//	@Router			/payments/{orderID}/confirm [post]
func (app *application) confirmPaymentHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		app.unauthorizedErrorResponse(w, r, errors.New("unauthorized request"))
		return
	}

	orderID := chi.URLParam(r, "orderID")
	if !payments.IsOrderID(orderID) {
		app.notFoundResponse(w, r, checkout.ErrIntentNotFound)
		return
	}

	intent, err := app.store.Payments.Intents.GetByOrderID(r.Context(), orderID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if intent == nil {
		app.notFoundResponse(w, r, checkout.ErrIntentNotFound)
		return
	}
	if intent.UserID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	out, err := app.checkout.SettleOrder(r.Context(), orderID, "confirm", nil)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, out); err != nil {
		app.internalServerError(w, r, err)
	}
}

// midtransFinishHandler godoc
//
//	@Summary		Midtrans finish redirect
//	@Description	Snap sends the browser here when the payment page closes. The order is settled and the browser is sent back to the app.
//	@Tags			Payments
//	@Produce		html
//	@Param			order_id			query	string	true	"Order ID"
//	@Param			transaction_status	query	string	false	"Status reported by Snap"
//	@Success		200
//	@Router			/payments/midtrans/finish [get]
func (app *application) midtransFinishHandler(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	snapState := r.URL.Query().Get("transaction_status")

	if !payments.IsOrderID(orderID) {
		app.redirectToAppReturn(w, "failed", "", snapState, "unknown_order")
		return
	}

	out, err := app.checkout.SettleOrder(r.Context(), orderID, "finish", nil)
	if err != nil {
		var persist *checkout.PersistenceError
		reason := "verification_failed"
		if errors.As(err, &persist) {
			reason = "contact_support"
		}
		app.logger.Warnw("finish redirect could not settle order", "order_id", orderID, "error", err)
		app.redirectToAppReturn(w, "pending", orderID, snapState, reason)
		return
	}

	result := "pending"
	switch out.Outcome {
	case checkout.OutcomePaid:
		result = "success"
	case checkout.OutcomeFailed:
		result = "failed"
	}
	app.redirectToAppReturn(w, result, orderID, out.State, "")
}

// redirectToAppReturn serves an HTML page that opens the app through
// streamhost://payments/return and falls back to the web frontend when the
// app is not installed. Some in-app browsers ignore a 302 to a custom scheme.
func (app *application) redirectToAppReturn(w http.ResponseWriter, result, orderID, gatewayState, reason string) {
	result = strings.ToLower(strings.TrimSpace(result))
	if result != "success" && result != "failed" && result != "pending" {
		result = "pending"
	}

	q := url.Values{}
	q.Set("result", result)
	q.Set("provider", payments.ProviderMidtrans)
	if orderID != "" {
		q.Set("order_id", orderID)
	}
	if gatewayState != "" {
		q.Set("gateway_state", gatewayState)
	}
	if reason != "" {
		q.Set("reason", reason)
	}

	deepLink := fmt.Sprintf("streamhost://payments/return?%s", q.Encode())
	webFallback := fmt.Sprintf("%s/payments/return?%s", app.config.FrontendURL, q.Encode())

	html := fmt.Sprintf(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Returning to app…</title>
    <style>
      body { font-family: system-ui, -apple-system, Segoe UI, Roboto; padding: 24px; }
      .btn { display: inline-block; padding: 12px 16px; border-radius: 10px; background:#111; color:#fff; text-decoration:none; }
      .muted { opacity: 0.7; margin-top: 12px; }
    </style>
  </head>
  <body>
    <h3>Returning to StreamHost…</h3>
    <p class="muted">If you are not redirected automatically, tap the button below.</p>
    <p><a class="btn" href="%s">Open in app</a></p>
    <p class="muted">Or continue on the web:</p>
    <p><a href="%s">%s</a></p>

    <script>
      window.location.href = %q;

      setTimeout(function() {
        window.location.href = %q;
      }, 1200);
    </script>
  </body>
</html>`,
		deepLink,
		webFallback,
		webFallback,
		deepLink,
		webFallback,
	)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}
