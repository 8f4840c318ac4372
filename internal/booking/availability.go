package booking

import (
	"slices"
	"time"
)

// Interval is an existing booking's occupied span. Both ends are instants.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// HourSlot is one cell of the hourly availability grid shown to a client.
type HourSlot struct {
	Hour      int       `json:"hour"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// IsSlotAvailable reports whether the hour starting at hour:00 on date (in
// date's location) is inside the schedule, not a day off and not occupied.
func IsSlotAvailable(date time.Time, hour int, schedule ActiveSchedule, dayOffs []string, existing []Interval) bool {
	if hour < 0 || hour > 23 {
		return false
	}
	if slices.Contains(dayOffs, date.Format(DateLayout)) {
		return false
	}

	ranges := schedule[date.Weekday()]
	if len(ranges) == 0 {
		return false
	}

	minute := hour * 60
	inSchedule := false
	for _, r := range ranges {
		start, err := parseClock(r.Start)
		if err != nil {
			continue
		}
		end, err := parseClock(r.End)
		if err != nil {
			continue
		}
		if start <= minute && minute < end {
			inSchedule = true
			break
		}
	}
	if !inSchedule {
		return false
	}

	return !isBooked(date, hour, existing)
}

// isBooked applies the hour-granular occupancy rule: an hour is taken when it
// falls in [startHour, endHour) of a same-day booking, and the ending hour
// itself is also treated as taken.
func isBooked(date time.Time, hour int, existing []Interval) bool {
	loc := date.Location()
	for _, b := range existing {
		start := b.Start.In(loc)
		end := b.End.In(loc)
		if !sameDay(start, date) {
			continue
		}
		startHour, endHour := start.Hour(), end.Hour()
		if !sameDay(end, date) && end.After(start) {
			endHour = 24
		}
		if startHour <= hour && hour < endHour {
			return true
		}
		if hour == endHour && endHour > startHour {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// AvailableHours returns the hours of date that can be booked.
func AvailableHours(date time.Time, schedule ActiveSchedule, dayOffs []string, existing []Interval) []int {
	var hours []int
	for h := 0; h < 24; h++ {
		if IsSlotAvailable(date, h, schedule, dayOffs, existing) {
			hours = append(hours, h)
		}
	}
	return hours
}

// HourGrid renders the full 24 hour grid for date, marking each hour.
func HourGrid(date time.Time, schedule ActiveSchedule, dayOffs []string, existing []Interval) []HourSlot {
	y, m, d := date.Date()
	loc := date.Location()
	grid := make([]HourSlot, 0, 24)
	for h := 0; h < 24; h++ {
		start := time.Date(y, m, d, h, 0, 0, 0, loc)
		grid = append(grid, HourSlot{
			Hour:      h,
			Start:     start,
			End:       start.Add(time.Hour),
			Available: IsSlotAvailable(start, h, schedule, dayOffs, existing),
		})
	}
	return grid
}
