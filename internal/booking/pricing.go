package booking

// Prices are whole rupiah. Intermediate amounts are carried in thousandths so
// the 1.3 markup and 11% tax never go through binary floating point.
const (
	markupPermille = 1300
	taxPercent     = 11
	milli          = 1000
)

type TimeRange struct {
	Start string `json:"start" validate:"required,hhmm"`
	End   string `json:"end" validate:"required,hhmm"`
}

// Hours is the whole-hour length of the range, or 0 when end is not after start.
func (r TimeRange) Hours() int {
	start, err := parseClock(r.Start)
	if err != nil {
		return 0
	}
	end, err := parseClock(r.End)
	if err != nil {
		return 0
	}
	sh, eh := start/60, end/60
	if eh <= sh {
		return 0
	}
	return eh - sh
}

type DaySelection struct {
	Date       string      `json:"date" validate:"required,ymd"`
	TimeRanges []TimeRange `json:"time_ranges" validate:"required,min=1,dive"`
}

type RangeLine struct {
	Date   string  `json:"date"`
	Start  string  `json:"start"`
	End    string  `json:"end"`
	Hours  int     `json:"hours"`
	Amount float64 `json:"amount"`
}

// Breakdown is the customer facing quote for a multi-day selection.
type Breakdown struct {
	Hours         int         `json:"hours"`
	BasePrice     int64       `json:"base_price"`
	AdjustedPrice float64     `json:"adjusted_price"`
	Subtotal      float64     `json:"subtotal"`
	Tax           float64     `json:"tax"`
	Total         int64       `json:"total"`
	Lines         []RangeLine `json:"lines,omitempty"`
}

// Aggregate prices every range of every day at price per hour with the
// platform markup and tax applied. Ranges whose end is not after their start
// contribute nothing. A negative price is treated as zero.
func Aggregate(days []DaySelection, price int64) Breakdown {
	if price < 0 {
		price = 0
	}
	rateMilli := price * markupPermille

	b := Breakdown{
		BasePrice:     price,
		AdjustedPrice: fromMilli(rateMilli),
	}

	var subtotalMilli int64
	for _, day := range days {
		for _, r := range day.TimeRanges {
			hours := r.Hours()
			if hours == 0 {
				continue
			}
			lineMilli := rateMilli * int64(hours)
			subtotalMilli += lineMilli
			b.Hours += hours
			b.Lines = append(b.Lines, RangeLine{
				Date:   day.Date,
				Start:  r.Start,
				End:    r.End,
				Hours:  hours,
				Amount: fromMilli(lineMilli),
			})
		}
	}
	if b.Hours == 0 {
		return Breakdown{BasePrice: price, AdjustedPrice: b.AdjustedPrice}
	}

	// rateMilli is a multiple of 100, so the tax stays integral in thousandths.
	taxMilli := subtotalMilli * taxPercent / 100
	b.Subtotal = fromMilli(subtotalMilli)
	b.Tax = fromMilli(taxMilli)
	b.Total = roundMilli(subtotalMilli + taxMilli)
	return b
}

func fromMilli(v int64) float64 {
	return float64(v) / milli
}

// roundMilli rounds a thousandths amount to a whole unit, half away from zero.
func roundMilli(v int64) int64 {
	if v < 0 {
		return -((-v + milli/2) / milli)
	}
	return (v + milli/2) / milli
}
