package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"streamhost/internal/booking"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultTTL = 10 * time.Minute

	// availabilityEpochKey moves every streamer to a new grid generation at
	// once.
	availabilityEpochKey = "avail:epoch"
)

// Cache keeps compiled schedules and rendered availability grids in Redis.
// A nil *Cache, or one without a client, behaves as an always-empty cache.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func New(rdb *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Cache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *Cache) enabled() bool { return c != nil && c.rdb != nil }

func scheduleKey(streamerID uuid.UUID) string {
	return "schedule:" + streamerID.String()
}

func availabilityVersionKey(streamerID uuid.UUID) string {
	return "avail:ver:" + streamerID.String()
}

func availabilityKey(streamerID uuid.UUID, version, date, zone string) string {
	return fmt.Sprintf("avail:%s:%s:%s:%s", streamerID, version, date, zone)
}

func generation(epoch, version int64) string {
	return fmt.Sprintf("e%d.v%d", epoch, version)
}

func (c *Cache) getJSON(ctx context.Context, key string, dst any) bool {
	bs, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warnw("cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(bs, dst); err != nil {
		c.logger.Warnw("cache entry unreadable", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Cache) setJSON(ctx context.Context, key string, v any) {
	bs, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.SetEx(ctx, key, bs, c.ttl).Err(); err != nil {
		c.logger.Warnw("cache write failed", "key", key, "error", err)
	}
}

func (c *Cache) GetSchedule(ctx context.Context, streamerID uuid.UUID) (booking.ActiveSchedule, bool) {
	if !c.enabled() {
		return nil, false
	}
	var s booking.ActiveSchedule
	if !c.getJSON(ctx, scheduleKey(streamerID), &s) {
		return nil, false
	}
	return s, true
}

func (c *Cache) SetSchedule(ctx context.Context, streamerID uuid.UUID, s booking.ActiveSchedule) {
	if !c.enabled() {
		return
	}
	c.setJSON(ctx, scheduleKey(streamerID), s)
}

// InvalidateSchedule drops the compiled schedule and every availability grid
// rendered from it.
func (c *Cache) InvalidateSchedule(ctx context.Context, streamerID uuid.UUID) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Del(ctx, scheduleKey(streamerID)).Err(); err != nil {
		c.logger.Warnw("cache delete failed", "streamer_id", streamerID, "error", err)
	}
	c.BumpAvailability(ctx, streamerID)
}

// availabilityVersion returns the current grid generation of a streamer,
// combining the global epoch with the streamer's own counter. Missing
// counters count as 0.
func (c *Cache) availabilityVersion(ctx context.Context, streamerID uuid.UUID) (string, error) {
	vals, err := c.rdb.MGet(ctx, availabilityEpochKey, availabilityVersionKey(streamerID)).Result()
	if err != nil {
		return "", err
	}
	var n [2]int64
	for i, v := range vals {
		if v == nil {
			continue
		}
		str, _ := v.(string)
		if n[i], err = strconv.ParseInt(str, 10, 64); err != nil {
			return "", fmt.Errorf("parse cache generation %q: %w", str, err)
		}
	}
	return generation(n[0], n[1]), nil
}

// GetAvailability returns the stored grid along with the generation it was
// looked up under. Callers hand that generation back to SetAvailability so a
// grid computed before a bump is never filed under the newer generation.
func (c *Cache) GetAvailability(ctx context.Context, streamerID uuid.UUID, date, zone string) ([]booking.HourSlot, string, bool) {
	if !c.enabled() {
		return nil, "", false
	}
	ver, err := c.availabilityVersion(ctx, streamerID)
	if err != nil {
		c.logger.Warnw("cache version read failed", "streamer_id", streamerID, "error", err)
		return nil, "", false
	}
	var grid []booking.HourSlot
	if !c.getJSON(ctx, availabilityKey(streamerID, ver, date, zone), &grid) {
		return nil, ver, false
	}
	return grid, ver, true
}

// SetAvailability stores grid under version. An empty version is skipped.
func (c *Cache) SetAvailability(ctx context.Context, streamerID uuid.UUID, version, date, zone string, grid []booking.HourSlot) {
	if !c.enabled() || version == "" {
		return
	}
	c.setJSON(ctx, availabilityKey(streamerID, version, date, zone), grid)
}

// BumpAvailability moves a streamer to a new grid generation. Old grids are
// never read again and expire on their own.
func (c *Cache) BumpAvailability(ctx context.Context, streamerID uuid.UUID) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Incr(ctx, availabilityVersionKey(streamerID)).Err(); err != nil {
		c.logger.Warnw("cache version bump failed", "streamer_id", streamerID, "error", err)
	}
}

// BumpAllAvailability retires every stored grid. Used when booking changes
// may have been missed.
func (c *Cache) BumpAllAvailability(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Incr(ctx, availabilityEpochKey).Err(); err != nil {
		c.logger.Warnw("cache epoch bump failed", "error", err)
	}
}

// Status is "disabled" without a Redis client, otherwise "ok" or "unavailable".
func (c *Cache) Status(ctx context.Context) string {
	if !c.enabled() {
		return "disabled"
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return "unavailable"
	}
	return "ok"
}
