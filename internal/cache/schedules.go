package cache

import (
	"context"

	"streamhost/internal/booking"

	"github.com/google/uuid"
)

type ScheduleSource interface {
	ActiveSchedule(ctx context.Context, streamerID uuid.UUID) (booking.ActiveSchedule, error)
	DayOffs(ctx context.Context, streamerID uuid.UUID, from, to string) ([]string, error)
}

// CachedSchedules serves compiled schedules from the cache and falls back to
// the wrapped source. Day offs are always read through.
type CachedSchedules struct {
	ScheduleSource
	cache *Cache
}

func NewCachedSchedules(src ScheduleSource, c *Cache) *CachedSchedules {
	return &CachedSchedules{ScheduleSource: src, cache: c}
}

func (s *CachedSchedules) ActiveSchedule(ctx context.Context, streamerID uuid.UUID) (booking.ActiveSchedule, error) {
	if sched, ok := s.cache.GetSchedule(ctx, streamerID); ok {
		return sched, nil
	}
	sched, err := s.ScheduleSource.ActiveSchedule(ctx, streamerID)
	if err != nil {
		return nil, err
	}
	s.cache.SetSchedule(ctx, streamerID, sched)
	return sched, nil
}
