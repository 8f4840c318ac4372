package main

import (
	"encoding/json"
	"net/http"
	"time"
)

// PushTokenPayload registers or removes one Expo device of the caller.
type PushTokenPayload struct {
	Token      string          `json:"token" validate:"required,max=255,startswith=ExponentPushToken[|startswith=ExpoPushToken["`
	DeviceInfo json.RawMessage `json:"device_info,omitempty" swaggertype:"object"`
}

// PrunePushTokensPayload drops devices that have not re-registered within
// OlderThanDays. Zero means the daily job's own window.
type PrunePushTokensPayload struct {
	OlderThanDays int `json:"older_than_days" validate:"omitempty,min=1,max=3650"`
}

// savePushTokenHandler godoc
//
//	@Summary		Register a device for booking pushes
//	@Description	Stores the caller's Expo push token. Registering the same token again refreshes it so the daily prune keeps it.
//	@Tags			Notifications
//	@Accept			json
//	@Param			payload	body	PushTokenPayload	true	"Expo token"
//	@Success		204
//	@Failure		400	{object}	error	"Bad Request"
//	@Failure		401	{object}	error	"Unauthorized"
//	@Security		ApiKeyAuth
//	@Router			/users/push-tokens [post]
func (app *application) savePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	payload, ok := app.readPushToken(w, r)
	if !ok {
		return
	}
	user := getUserFromContext(r)

	if err := app.store.PushTokens.AddOrUpdatePushToken(r.Context(), user.ID, payload.Token, payload.DeviceInfo); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// removePushTokenHandler godoc
//
//	@Summary		Unregister a device
//	@Description	Called on sign-out so the device stops receiving booking pushes.
//	@Tags			Notifications
//	@Accept			json
//	@Param			payload	body	PushTokenPayload	true	"Expo token"
//	@Success		204
//	@Failure		400	{object}	error	"Bad Request"
//	@Failure		401	{object}	error	"Unauthorized"
//	@Security		ApiKeyAuth
//	@Router			/users/push-tokens [delete]
func (app *application) removePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	payload, ok := app.readPushToken(w, r)
	if !ok {
		return
	}
	user := getUserFromContext(r)

	if err := app.store.PushTokens.RemovePushToken(r.Context(), user.ID, payload.Token); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) readPushToken(w http.ResponseWriter, r *http.Request) (PushTokenPayload, bool) {
	var payload PushTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return payload, false
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return payload, false
	}
	return payload, true
}

// prunePushTokensHandler godoc
//
//	@Summary		Prune stale push tokens
//	@Description	Runs the daily prune on demand.
//	@Tags			Admin
//	@Accept			json
//	@Param			payload	body	PrunePushTokensPayload	false	"Window in days"
//	@Success		204
//	@Failure		400	{object}	error	"Bad Request"
//	@Failure		401	{object}	error	"Unauthorized"
//	@Security		BasicAuth
//	@Router			/admin/push-tokens/prune [post]
func (app *application) prunePushTokensHandler(w http.ResponseWriter, r *http.Request) {
	var payload PrunePushTokensPayload
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &payload); err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		if err := Validate.Struct(payload); err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
	}

	window := staleTokenAge
	if payload.OlderThanDays > 0 {
		window = time.Duration(payload.OlderThanDays) * 24 * time.Hour
	}

	if err := app.store.PushTokens.PruneStaleTokens(r.Context(), window); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.logger.Infow("pruned push tokens", "older_than_days", int(window/(24*time.Hour)))
	w.WriteHeader(http.StatusNoContent)
}
