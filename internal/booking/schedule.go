package booking

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	dayMinutes = 24 * 60
)

// ScheduleSlot is one row of a streamer's weekly schedule as edited by the streamer.
type ScheduleSlot struct {
	DayOfWeek   time.Weekday `json:"day_of_week"`
	StartTime   string       `json:"start_time"`
	EndTime     string       `json:"end_time"`
	IsAvailable bool         `json:"is_available"`
}

type SlotRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ActiveSchedule maps a weekday to its bookable ranges, sorted and merged.
type ActiveSchedule map[time.Weekday][]SlotRange

// CompileSchedule drops unavailable slots and merges overlapping or touching
// ranges per weekday.
func CompileSchedule(slots []ScheduleSlot) (ActiveSchedule, error) {
	type span struct{ start, end int }
	byDay := make(map[time.Weekday][]span)

	for i, s := range slots {
		if s.DayOfWeek < time.Sunday || s.DayOfWeek > time.Saturday {
			return nil, invalid(fmt.Sprintf("slots[%d].day_of_week", i), "must be between 0 and 6")
		}
		start, err := parseClock(s.StartTime)
		if err != nil {
			return nil, invalid(fmt.Sprintf("slots[%d].start_time", i), "%v", err)
		}
		end, err := parseClock(s.EndTime)
		if err != nil {
			return nil, invalid(fmt.Sprintf("slots[%d].end_time", i), "%v", err)
		}
		if end <= start {
			return nil, invalid(fmt.Sprintf("slots[%d]", i), "end time must be after start time")
		}
		if !s.IsAvailable {
			continue
		}
		byDay[s.DayOfWeek] = append(byDay[s.DayOfWeek], span{start, end})
	}

	out := make(ActiveSchedule, len(byDay))
	for day, spans := range byDay {
		sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
		merged := []span{spans[0]}
		for _, sp := range spans[1:] {
			last := &merged[len(merged)-1]
			if sp.start <= last.end {
				last.end = max(last.end, sp.end)
				continue
			}
			merged = append(merged, sp)
		}
		ranges := make([]SlotRange, 0, len(merged))
		for _, sp := range merged {
			ranges = append(ranges, SlotRange{Start: formatClock(sp.start), End: formatClock(sp.end)})
		}
		out[day] = ranges
	}
	return out, nil
}

// parseClock converts "HH:MM" (or Postgres "HH:MM:SS") into minutes after
// midnight. "24:00" is accepted as the end of the day.
func parseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) != 2 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || sec != 0 {
			return 0, fmt.Errorf("seconds are not supported in %q", s)
		}
	}
	total := h*60 + m
	if h < 0 || total > dayMinutes {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return total, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ValidClock reports whether s is a well formed HH:MM wall-clock value.
func ValidClock(s string) bool {
	_, err := parseClock(s)
	return err == nil
}

// ValidDate reports whether s is a calendar date in DateLayout.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
