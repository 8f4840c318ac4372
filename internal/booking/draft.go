package booking

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SubAccount struct {
	Username string `json:"username" validate:"max=100"`
	Password string `json:"password" validate:"max=200"`
}

// Draft is a client's booking selection before payment.
type Draft struct {
	StreamerID     uuid.UUID      `json:"streamer_id" validate:"required"`
	Days           []DaySelection `json:"days" validate:"required,min=1,dive"`
	Timezone       string         `json:"timezone" validate:"required,max=64"`
	Platform       string         `json:"platform" validate:"required,max=50"`
	SpecialRequest string         `json:"special_request" validate:"max=1000"`
	SubAccount     SubAccount     `json:"sub_account"`
	VoucherCode    string         `json:"voucher_code,omitempty" validate:"omitempty,vouchercode"`
}

// Validate checks that every day parses, every range covers whole hours with
// end after start, and that ranges within a day do not overlap.
func (d Draft) Validate() error {
	if d.StreamerID == uuid.Nil {
		return invalid("streamer_id", "is required")
	}
	if strings.TrimSpace(d.Platform) == "" {
		return invalid("platform", "is required")
	}
	if strings.TrimSpace(d.Timezone) == "" {
		return invalid("timezone", "is required")
	}
	return validateDays(d.Days)
}

func validateDays(days []DaySelection) error {
	if len(days) == 0 {
		return invalid("days", "at least one day must be selected")
	}
	seen := make(map[string]bool, len(days))
	for i, day := range days {
		field := fmt.Sprintf("days[%d]", i)
		if _, err := time.Parse(DateLayout, day.Date); err != nil {
			return invalid(field+".date", "must be yyyy-MM-dd")
		}
		if seen[day.Date] {
			return invalid(field+".date", "%s is selected more than once", day.Date)
		}
		seen[day.Date] = true
		if len(day.TimeRanges) == 0 {
			return invalid(field+".time_ranges", "at least one range is required")
		}

		type span struct{ start, end int }
		spans := make([]span, 0, len(day.TimeRanges))
		for j, r := range day.TimeRanges {
			rf := fmt.Sprintf("%s.time_ranges[%d]", field, j)
			start, err := parseClock(r.Start)
			if err != nil {
				return invalid(rf+".start", "%v", err)
			}
			end, err := parseClock(r.End)
			if err != nil {
				return invalid(rf+".end", "%v", err)
			}
			if start%60 != 0 || end%60 != 0 {
				return invalid(rf, "ranges must start and end on the hour")
			}
			if end <= start {
				return invalid(rf, "end must be after start")
			}
			spans = append(spans, span{start, end})
		}
		sort.Slice(spans, func(a, b int) bool { return spans[a].start < spans[b].start })
		for k := 1; k < len(spans); k++ {
			if spans[k].start < spans[k-1].end {
				return invalid(field+".time_ranges", "ranges overlap")
			}
		}
	}
	return nil
}

// RangeCount is the number of time ranges across all days.
func RangeCount(days []DaySelection) int {
	n := 0
	for _, d := range days {
		n += len(d.TimeRanges)
	}
	return n
}
