package main

import (
	"net/http"
)

type ValidateVoucherPayload struct {
	Code        string `json:"code" validate:"required,max=32"`
	TotalAmount int64  `json:"total_amount" validate:"min=0"`
}

// validateVoucherHandler godoc
//
//	@Summary		Check a voucher code
//	@Description	Reports the discount a voucher would give on total_amount without redeeming it. Unknown, inactive, expired and used-up codes all return 404.
//	@Tags			Vouchers
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ValidateVoucherPayload	true	"Code and order total"
//	@Success		200		{object}	checkout.VoucherResult
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		404		{object}	error	"Voucher not found"
//	@Security		ApiKeyAuth
//	@Router			/vouchers/validate [post]
func (app *application) validateVoucherHandler(w http.ResponseWriter, r *http.Request) {
	var payload ValidateVoucherPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	res, err := app.checkout.ValidateVoucher(r.Context(), payload.Code, payload.TotalAmount)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, res); err != nil {
		app.internalServerError(w, r, err)
	}
}
