package mailer

// BookingMail is the data both booking templates render.
type BookingMail struct {
	OrderID      string
	ClientName   string
	StreamerName string
	Platform     string
	Timezone     string
	Amount       string
	Sessions     []string
}
