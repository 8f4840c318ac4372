package main

import (
	"errors"
	"net/http"

	"streamhost/internal/booking"
	"streamhost/internal/domain/bookings"
	"streamhost/internal/params"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type UpdateBookingStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected live completed cancelled"`
}

type BookingDetail struct {
	*bookings.Booking
	SubAccountPassword string `json:"sub_account_password,omitempty"`
}

type MyBookingsResponse struct {
	Bookings   []bookings.ClientBooking `json:"bookings"`
	Pagination params.Pagination        `json:"pagination"`
}

// quoteBookingHandler godoc
//
//	@Summary		Price a booking selection
//	@Description	Sums every selected range at the streamer's hourly rate with a 1.3 markup, adds 11% tax and applies the voucher code if one is given.
//	@Tags			Bookings
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		booking.Draft	true	"Selection"
//	@Success		200		{object}	checkout.Quote
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		404		{object}	error	"Streamer or voucher not found"
//	@Failure		500		{object}	error	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/bookings/quote [post]
func (app *application) quoteBookingHandler(w http.ResponseWriter, r *http.Request) {
	var draft booking.Draft
	if err := readJSON(w, r, &draft); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(draft); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	quote, err := app.checkout.Quote(r.Context(), draft)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, quote); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listMyBookingsHandler godoc
//
//	@Summary		List the caller's bookings
//	@Tags			Bookings
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"
//	@Param			page	query		int		false	"Page (default 1)"
//	@Param			limit	query		int		false	"Page size (default 15, max 50)"
//	@Success		200		{object}	MyBookingsResponse
//	@Failure		401		{object}	error	"Unauthorized"
//	@Failure		500		{object}	error	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/bookings/me [get]
func (app *application) listMyBookingsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		app.unauthorizedErrorResponse(w, r, errors.New("unauthorized request"))
		return
	}

	page := params.ParsePagination(r.URL.Query())
	filter := bookings.ClientFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}

	list, total, err := app.store.Bookings.ListByClient(r.Context(), user.ID, filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if list == nil {
		list = []bookings.ClientBooking{}
	}
	page.ComputeMeta(total)

	if err := app.jsonResponse(w, http.StatusOK, MyBookingsResponse{Bookings: list, Pagination: page}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getBookingHandler godoc
//
//	@Summary		Get a booking
//	@Description	Visible to the booking's client and to the streamer it was made with. The sub-account password is decrypted for them.
//	@Tags			Bookings
//	@Produce		json
//	@Param			bookingID	path		string	true	"Booking ID"
//	@Success		200			{object}	BookingDetail
//	@Failure		403			{object}	error	"Forbidden"
//	@Failure		404			{object}	error	"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/bookings/{bookingID} [get]
func (app *application) getBookingHandler(w http.ResponseWriter, r *http.Request) {
	b, _, ok := app.loadBookingForParty(w, r)
	if !ok {
		return
	}

	detail := BookingDetail{Booking: b}
	if b.SubAccountSecret != nil {
		plain, err := app.sealer.Open(*b.SubAccountSecret)
		if err != nil {
			app.logger.Warnw("sub-account secret could not be opened", "booking_id", b.ID, "error", err)
		} else {
			detail.SubAccountPassword = plain
		}
	}

	if err := app.jsonResponse(w, http.StatusOK, detail); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateBookingStatusHandler godoc
//
//	@Summary		Change a booking's status
//	@Description	The streamer moves pending bookings to accepted or rejected, accepted ones to live and live ones to completed. Either party may cancel; clients only while the booking is pending.
//	@Tags			Bookings
//	@Accept			json
//	@Produce		json
//	@Param			bookingID	path		string						true	"Booking ID"
//	@Param			payload		body		UpdateBookingStatusPayload	true	"New status"
//	@Success		200			{object}	bookings.Booking
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		403			{object}	error	"Forbidden"
//	@Failure		404			{object}	error	"Not Found"
//	@Failure		409			{object}	error	"Transition not allowed"
//	@Security		ApiKeyAuth
//	@Router			/bookings/{bookingID}/status [patch]
func (app *application) updateBookingStatusHandler(w http.ResponseWriter, r *http.Request) {
	var payload UpdateBookingStatusPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	b, streamerUserID, ok := app.loadBookingForParty(w, r)
	if !ok {
		return
	}
	user := getUserFromContext(r)

	isStreamer := user.ID == streamerUserID
	if !isStreamer && !(payload.Status == bookings.StatusCancelled && b.Status == bookings.StatusPending) {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.store.Bookings.UpdateStatus(r.Context(), b.ID, b.Status, payload.Status); err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}
	b.Status = payload.Status
	app.cache.BumpAvailability(r.Context(), b.StreamerID)

	// Tell the other party.
	notify := b.ClientID
	if !isStreamer {
		notify = streamerUserID
	}
	if err := app.pusher.StatusChanged(r.Context(), notify, b.ID, b.Status); err != nil {
		app.logger.Warnw("status push failed", "booking_id", b.ID, "status", b.Status, "error", err)
	}

	if err := app.jsonResponse(w, http.StatusOK, b); err != nil {
		app.internalServerError(w, r, err)
	}
}

// loadBookingForParty loads {bookingID} and checks that the caller is its
// client or its streamer. It writes the error response itself.
func (app *application) loadBookingForParty(w http.ResponseWriter, r *http.Request) (*bookings.Booking, uuid.UUID, bool) {
	user := getUserFromContext(r)
	if user == nil {
		app.unauthorizedErrorResponse(w, r, errors.New("unauthorized request"))
		return nil, uuid.Nil, false
	}

	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid booking ID")
		return nil, uuid.Nil, false
	}

	b, err := app.store.Bookings.GetByID(r.Context(), bookingID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return nil, uuid.Nil, false
	}

	streamer, err := app.store.Streamers.GetByID(r.Context(), b.StreamerID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return nil, uuid.Nil, false
	}

	if user.ID != b.ClientID && user.ID != streamer.UserID {
		app.forbiddenResponse(w, r)
		return nil, uuid.Nil, false
	}
	return b, streamer.UserID, true
}
