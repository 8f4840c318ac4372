package checkout

import (
	"context"
	"fmt"
	"time"

	"streamhost/internal/booking"

	"github.com/google/uuid"
)

// Availability renders the hour grid of date in zone for a streamer.
func (s *Service) Availability(ctx context.Context, streamerID uuid.UUID, date, zone string) ([]booking.HourSlot, error) {
	var version string
	if s.Cache != nil {
		grid, ver, ok := s.Cache.GetAvailability(ctx, streamerID, date, zone)
		if ok {
			return grid, nil
		}
		version = ver
	}

	loc := s.Timezones.Location(zone)
	day, err := time.ParseInLocation(booking.DateLayout, date, loc)
	if err != nil {
		return nil, &booking.ValidationError{Field: "date", Message: "must be yyyy-MM-dd"}
	}

	schedule, dayOffs, existing, err := s.loadCalendar(ctx, streamerID, []string{date}, zone)
	if err != nil {
		return nil, err
	}
	grid := booking.HourGrid(day, schedule, dayOffs, existing)

	if s.Cache != nil {
		s.Cache.SetAvailability(ctx, streamerID, version, date, zone, grid)
	}
	return grid, nil
}

// loadCalendar fetches everything the evaluator needs for the given dates.
func (s *Service) loadCalendar(ctx context.Context, streamerID uuid.UUID, dates []string, zone string) (booking.ActiveSchedule, []string, []booking.Interval, error) {
	if len(dates) == 0 {
		return nil, nil, nil, nil
	}
	first, last := dates[0], dates[0]
	for _, d := range dates[1:] {
		first = min(first, d)
		last = max(last, d)
	}

	from, _, err := s.Timezones.DayWindow(first, zone)
	if err != nil {
		return nil, nil, nil, err
	}
	_, to, err := s.Timezones.DayWindow(last, zone)
	if err != nil {
		return nil, nil, nil, err
	}

	schedule, err := s.Schedules.ActiveSchedule(ctx, streamerID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load schedule: %w", err)
	}
	dayOffs, err := s.Schedules.DayOffs(ctx, streamerID, first, last)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load day offs: %w", err)
	}
	existing, err := s.Bookings.ListActiveBetween(ctx, streamerID, from, to)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load bookings: %w", err)
	}
	return schedule, dayOffs, existing, nil
}

// ensureAvailable rechecks every hour of the selection against the live
// calendar.
func (s *Service) ensureAvailable(ctx context.Context, streamerID uuid.UUID, days []booking.DaySelection, zone string) error {
	dates := make([]string, 0, len(days))
	for _, d := range days {
		dates = append(dates, d.Date)
	}
	schedule, dayOffs, existing, err := s.loadCalendar(ctx, streamerID, dates, zone)
	if err != nil {
		return err
	}

	loc := s.Timezones.Location(zone)
	for _, d := range days {
		day, err := time.ParseInLocation(booking.DateLayout, d.Date, loc)
		if err != nil {
			return &booking.ValidationError{Field: "date", Message: "must be yyyy-MM-dd"}
		}
		for _, r := range d.TimeRanges {
			start, err := s.Timezones.ToUTC(d.Date, r.Start, zone)
			if err != nil {
				return err
			}
			startHour := start.In(loc).Hour()
			for h := startHour; h < startHour+r.Hours(); h++ {
				if !booking.IsSlotAvailable(day, h, schedule, dayOffs, existing) {
					return fmt.Errorf("%w: %s %02d:00", booking.ErrAvailabilityConflict, d.Date, h)
				}
			}
		}
	}
	return nil
}
