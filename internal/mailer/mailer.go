package mailer

import "embed"

const (
	FromName               = "StreamHost"
	maxRetries             = 3
	BookingReceiptTemplate = "booking_receipt.tmpl"
	BookingRequestTemplate = "booking_request.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
