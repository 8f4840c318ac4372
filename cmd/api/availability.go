package main

import (
	"net/http"

	"streamhost/internal/booking"
	"streamhost/internal/domain/streamers"
	"streamhost/internal/params"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AvailabilityResponse struct {
	StreamerID     uuid.UUID          `json:"streamer_id"`
	Date           string             `json:"date"`
	Timezone       string             `json:"timezone"`
	AvailableHours []int              `json:"available_hours"`
	Slots          []booking.HourSlot `json:"slots"`
}

// getAvailabilityHandler godoc
//
//	@Summary		Hourly availability of a streamer
//	@Description	Returns the 24 hour grid of a calendar date in the requested timezone. Hours outside the weekly schedule, on a day off or held by a pending or accepted booking are unavailable.
//	@Tags			Streamers
//	@Produce		json
//	@Param			streamerID	path		string	true	"Streamer ID"
//	@Param			date		query		string	true	"Date (yyyy-MM-dd)"
//	@Param			timezone	query		string	false	"IANA timezone, defaults to the streamer's"
//	@Success		200			{object}	AvailabilityResponse
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		404			{object}	error	"Streamer not found"
//	@Failure		500			{object}	error	"Internal Server Error"
//	@Router			/streamers/{streamerID}/availability [get]
func (app *application) getAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	streamerID, err := uuid.Parse(chi.URLParam(r, "streamerID"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid streamer ID")
		return
	}

	streamer, err := app.store.Streamers.GetByID(r.Context(), streamerID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}
	if !streamer.IsActive {
		app.notFoundResponse(w, r, streamers.ErrNotFound)
		return
	}

	q, err := params.ParseDayQuery(r.URL.Query(), streamer.Timezone)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	grid, err := app.checkout.Availability(r.Context(), streamerID, q.Date, q.Timezone)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := AvailabilityResponse{
		StreamerID:     streamerID,
		Date:           q.Date,
		Timezone:       q.Timezone,
		AvailableHours: []int{},
		Slots:          grid,
	}
	for _, s := range grid {
		if s.Available {
			resp.AvailableHours = append(resp.AvailableHours, s.Hour)
		}
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
