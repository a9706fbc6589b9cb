package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"slotify/models"
	"slotify/utils"
)

// BusyCache keeps recently fetched busy intervals in Redis so that quick
// follow-up searches (same day, tweaked duration or window) do not hit the
// calendar API again. Entries are short-lived; correctness never depends on
// the cache being warm.
type BusyCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBusyCache(client *redis.Client, ttl time.Duration) *BusyCache {
	return &BusyCache{client: client, ttl: ttl}
}

func busyKey(calendarID string, start, end time.Time) string {
	return fmt.Sprintf("cal:busy:%s:%d:%d", calendarID, start.Unix(), end.Unix())
}

// Get returns the cached busy set for the range, or ok=false on a miss.
func (c *BusyCache) Get(ctx context.Context, calendarID string, start, end time.Time) ([]models.BusyInterval, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, busyKey(calendarID, start, end)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		utils.GetLogger().Warn("busy cache read failed", zap.Error(err))
		return nil, false
	}
	var busy []models.BusyInterval
	if err := json.Unmarshal([]byte(data), &busy); err != nil {
		return nil, false
	}
	return busy, true
}

func (c *BusyCache) Set(ctx context.Context, calendarID string, start, end time.Time, busy []models.BusyInterval) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(busy)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, busyKey(calendarID, start, end), data, c.ttl).Err(); err != nil {
		utils.GetLogger().Warn("busy cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached range, used right after an event is written so
// the next search sees the new busy interval even inside the TTL.
func (c *BusyCache) Invalidate(ctx context.Context, calendarID string, start, end time.Time) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, busyKey(calendarID, start, end)).Err()
}
