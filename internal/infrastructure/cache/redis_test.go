package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/hourglass-dev/timetube/internal/domain/model"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func testSlot(slotTime string) *model.TimeSlot {
	now := time.Now().Truncate(time.Microsecond)
	return &model.TimeSlot{
		Time:         slotTime,
		VideoID:      "abc123",
		VideoURL:     "https://www.youtube.com/watch?v=abc123",
		Title:        "Live at " + slotTime,
		ViewCount:    1200,
		ThumbnailURL: "http://img/medium.jpg",
		CreatedAt:    now.Add(-time.Hour),
		UpdatedAt:    now,
	}
}

func TestRedisSlotCache_SetThenGet(t *testing.T) {
	client, _ := setupTestRedis(t)
	c := NewRedisSlotCache(client)
	ctx := context.Background()

	slot := testSlot("12:00")
	if err := c.Set(ctx, slot, 5*time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := c.Get(ctx, "12:00")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected slot, got nil")
	}

	if got.Time != slot.Time {
		t.Errorf("Time = %q, want %q", got.Time, slot.Time)
	}
	if got.VideoID != slot.VideoID {
		t.Errorf("VideoID = %q, want %q", got.VideoID, slot.VideoID)
	}
	if got.Title != slot.Title {
		t.Errorf("Title = %q, want %q", got.Title, slot.Title)
	}
	if got.ViewCount != slot.ViewCount {
		t.Errorf("ViewCount = %d, want %d", got.ViewCount, slot.ViewCount)
	}
	if got.ThumbnailURL != slot.ThumbnailURL {
		t.Errorf("ThumbnailURL = %q, want %q", got.ThumbnailURL, slot.ThumbnailURL)
	}
	if !got.CreatedAt.Equal(slot.CreatedAt) || !got.UpdatedAt.Equal(slot.UpdatedAt) {
		t.Errorf("timestamps survived serialization incorrectly: %+v", got)
	}
}

func TestRedisSlotCache_Get_CacheMiss(t *testing.T) {
	client, _ := setupTestRedis(t)
	c := NewRedisSlotCache(client)

	got, err := c.Get(context.Background(), "23:45")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for cache miss, got %v", got)
	}
}

func TestRedisSlotCache_TTLExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewRedisSlotCache(client)
	ctx := context.Background()

	if err := c.Set(ctx, testSlot("12:00"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	got, err := c.Get(ctx, "12:00")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected expiry after TTL, got %+v", got)
	}
}

func TestRedisSlotCache_Delete(t *testing.T) {
	client, _ := setupTestRedis(t)
	c := NewRedisSlotCache(client)
	ctx := context.Background()

	if err := c.Set(ctx, testSlot("12:00"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Delete(ctx, "12:00"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := c.Get(ctx, "12:00")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}

	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, "12:00"); err != nil {
		t.Errorf("Delete of missing key failed: %v", err)
	}
}
