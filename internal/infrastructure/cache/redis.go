package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hourglass-dev/timetube/internal/domain/model"
)

// slotCacheKeyPrefix is the prefix for slot cache keys in Redis.
const slotCacheKeyPrefix = "slot:"

// slotJSON is the JSON representation of a TimeSlot for caching.
// Using an explicit struct avoids coupling to the domain model's fields.
type slotJSON struct {
	Time         string `json:"time"`
	VideoID      string `json:"video_id"`
	VideoURL     string `json:"video_url"`
	Title        string `json:"title"`
	ViewCount    int64  `json:"view_count"`
	ThumbnailURL string `json:"thumbnail_url"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// RedisSlotCache implements SlotCache using Redis as the backing store.
type RedisSlotCache struct {
	client *redis.Client
}

// Compile-time verification that RedisSlotCache implements SlotCache.
var _ SlotCache = (*RedisSlotCache)(nil)

// NewRedisSlotCache creates a new Redis-backed slot cache.
func NewRedisSlotCache(client *redis.Client) *RedisSlotCache {
	return &RedisSlotCache{client: client}
}

// Get retrieves a slot from Redis.
// Returns nil, nil on cache miss.
func (c *RedisSlotCache) Get(ctx context.Context, slotTime string) (*model.TimeSlot, error) {
	data, err := c.client.Get(ctx, slotCacheKeyPrefix+slotTime).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	slot, err := deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("deserialize slot: %w", err)
	}

	return slot, nil
}

// Set stores a slot in Redis with the specified TTL.
func (c *RedisSlotCache) Set(ctx context.Context, slot *model.TimeSlot, ttl time.Duration) error {
	data, err := serialize(slot)
	if err != nil {
		return fmt.Errorf("serialize slot: %w", err)
	}

	if err := c.client.Set(ctx, slotCacheKeyPrefix+slot.Time, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes a slot from Redis.
func (c *RedisSlotCache) Delete(ctx context.Context, slotTime string) error {
	if err := c.client.Del(ctx, slotCacheKeyPrefix+slotTime).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

func serialize(slot *model.TimeSlot) ([]byte, error) {
	return json.Marshal(slotJSON{
		Time:         slot.Time,
		VideoID:      slot.VideoID,
		VideoURL:     slot.VideoURL,
		Title:        slot.Title,
		ViewCount:    slot.ViewCount,
		ThumbnailURL: slot.ThumbnailURL,
		CreatedAt:    slot.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:    slot.UpdatedAt.Format(time.RFC3339Nano),
	})
}

func deserialize(data []byte) (*model.TimeSlot, error) {
	var s slotJSON
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}

	createdAt, err := time.Parse(time.RFC3339Nano, s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &model.TimeSlot{
		Time:         s.Time,
		VideoID:      s.VideoID,
		VideoURL:     s.VideoURL,
		Title:        s.Title,
		ViewCount:    s.ViewCount,
		ThumbnailURL: s.ThumbnailURL,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}
