package main

import (
	"net/http"
	"time"

	"streamhost/internal/booking"
	"streamhost/internal/domain/schedules"
	"streamhost/internal/params"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ScheduleSlotPayload struct {
	DayOfWeek   int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime   string `json:"start_time" validate:"required,hhmm"`
	EndTime     string `json:"end_time" validate:"required,hhmm"`
	IsAvailable bool   `json:"is_available"`
}

type ReplaceSchedulePayload struct {
	Slots []ScheduleSlotPayload `json:"slots" validate:"max=100,dive"`
}

type DayOffPayload struct {
	Date   string  `json:"date" validate:"required,ymd"`
	Reason *string `json:"reason" validate:"omitempty,max=255"`
}

// getScheduleHandler godoc
//
//	@Summary		Weekly schedule of a streamer
//	@Description	Returns the compiled schedule: merged bookable ranges per weekday (0 is Sunday).
//	@Tags			Streamers
//	@Produce		json
//	@Param			streamerID	path		string	true	"Streamer ID"
//	@Success		200			{object}	booking.ActiveSchedule
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		500			{object}	error	"Internal Server Error"
//	@Router			/streamers/{streamerID}/schedule [get]
func (app *application) getScheduleHandler(w http.ResponseWriter, r *http.Request) {
	streamerID, err := uuid.Parse(chi.URLParam(r, "streamerID"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid streamer ID")
		return
	}

	schedule, err := app.schedules.ActiveSchedule(r.Context(), streamerID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}
	if schedule == nil {
		schedule = booking.ActiveSchedule{}
	}

	if err := app.jsonResponse(w, http.StatusOK, schedule); err != nil {
		app.internalServerError(w, r, err)
	}
}

// replaceScheduleHandler godoc
//
//	@Summary		Replace the weekly schedule
//	@Description	Replaces every schedule row of the streamer. Overlapping and touching ranges are merged; an end time of 24:00 means midnight.
//	@Tags			Streamers
//	@Accept			json
//	@Produce		json
//	@Param			streamerID	path		string					true	"Streamer ID"
//	@Param			payload		body		ReplaceSchedulePayload	true	"Weekly schedule"
//	@Success		200			{object}	booking.ActiveSchedule
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		403			{object}	error	"Forbidden"
//	@Failure		500			{object}	error	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/streamers/{streamerID}/schedule [put]
func (app *application) replaceScheduleHandler(w http.ResponseWriter, r *http.Request) {
	streamer := getStreamerFromContext(r)

	var payload ReplaceSchedulePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	slots := make([]booking.ScheduleSlot, 0, len(payload.Slots))
	for _, s := range payload.Slots {
		slots = append(slots, booking.ScheduleSlot{
			DayOfWeek:   time.Weekday(s.DayOfWeek),
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			IsAvailable: s.IsAvailable,
		})
	}

	compiled, err := app.store.Schedules.ReplaceSlots(r.Context(), streamer.ID, slots)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}
	app.cache.InvalidateSchedule(r.Context(), streamer.ID)

	if err := app.jsonResponse(w, http.StatusOK, compiled); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listDayOffsHandler godoc
//
//	@Summary		List day offs
//	@Tags			Streamers
//	@Produce		json
//	@Param			streamerID	path		string	true	"Streamer ID"
//	@Param			from		query		string	true	"First date (yyyy-MM-dd)"
//	@Param			to			query		string	true	"Last date (yyyy-MM-dd)"
//	@Success		200			{array}		string
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		403			{object}	error	"Forbidden"
//	@Security		ApiKeyAuth
//	@Router			/streamers/{streamerID}/day-offs [get]
func (app *application) listDayOffsHandler(w http.ResponseWriter, r *http.Request) {
	streamer := getStreamerFromContext(r)

	from, to, err := params.ParseDateRange(r.URL.Query())
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	days, err := app.store.Schedules.DayOffs(r.Context(), streamer.ID, from, to)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if days == nil {
		days = []string{}
	}

	if err := app.jsonResponse(w, http.StatusOK, days); err != nil {
		app.internalServerError(w, r, err)
	}
}

// addDayOffHandler godoc
//
//	@Summary		Add a day off
//	@Tags			Streamers
//	@Accept			json
//	@Param			streamerID	path	string			true	"Streamer ID"
//	@Param			payload		body	DayOffPayload	true	"Day off"
//	@Success		204
//	@Failure		400	{object}	error	"Bad Request"
//	@Failure		403	{object}	error	"Forbidden"
//	@Security		ApiKeyAuth
//	@Router			/streamers/{streamerID}/day-offs [post]
func (app *application) addDayOffHandler(w http.ResponseWriter, r *http.Request) {
	streamer := getStreamerFromContext(r)

	var payload DayOffPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err := app.store.Schedules.AddDayOff(r.Context(), schedules.DayOff{
		StreamerID: streamer.ID,
		Date:       payload.Date,
		Reason:     payload.Reason,
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.cache.BumpAvailability(r.Context(), streamer.ID)

	w.WriteHeader(http.StatusNoContent)
}

// deleteDayOffHandler godoc
//
//	@Summary		Remove a day off
//	@Tags			Streamers
//	@Param			streamerID	path	string	true	"Streamer ID"
//	@Param			date		path	string	true	"Date (yyyy-MM-dd)"
//	@Success		204
//	@Failure		400	{object}	error	"Bad Request"
//	@Failure		404	{object}	error	"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/streamers/{streamerID}/day-offs/{date} [delete]
func (app *application) deleteDayOffHandler(w http.ResponseWriter, r *http.Request) {
	streamer := getStreamerFromContext(r)

	date := chi.URLParam(r, "date")
	if !booking.ValidDate(date) {
		writeJSONError(w, http.StatusBadRequest, "date must be yyyy-MM-dd")
		return
	}

	if err := app.store.Schedules.DeleteDayOff(r.Context(), streamer.ID, date); err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}
	app.cache.BumpAvailability(r.Context(), streamer.ID)

	w.WriteHeader(http.StatusNoContent)
}
