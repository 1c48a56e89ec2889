package model

import (
	"errors"
	"time"
)

// FreshFor is how long a slot is served without re-querying the search
// provider. Staleness never deletes a slot, it only triggers a refresh.
const FreshFor = 7 * 24 * time.Hour

var (
	ErrNonCanonicalTime  = errors.New("slot time must be canonical zero-padded HH:MM")
	ErrEmptyVideoID      = errors.New("video ID cannot be empty")
	ErrNegativeViewCount = errors.New("view count cannot be negative")
)

// TimeSlot associates a minute of the day with a chosen external video.
// Time is the primary key in canonical zero-padded "HH:MM" form.
type TimeSlot struct {
	Time         string
	VideoID      string
	VideoURL     string
	Title        string
	ViewCount    int64
	ThumbnailURL string // empty when unknown
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewTimeSlot creates a TimeSlot with both timestamps set to now.
// The repository preserves CreatedAt when the slot replaces an existing row.
func NewTimeSlot(slotTime, videoID, videoURL, title string, viewCount int64, thumbnailURL string) (*TimeSlot, error) {
	m, err := ToMinutes(slotTime)
	if err != nil {
		return nil, err
	}
	if FromMinutes(m) != slotTime {
		return nil, ErrNonCanonicalTime
	}
	if videoID == "" {
		return nil, ErrEmptyVideoID
	}
	if viewCount < 0 {
		return nil, ErrNegativeViewCount
	}

	now := time.Now()
	return &TimeSlot{
		Time:         slotTime,
		VideoID:      videoID,
		VideoURL:     videoURL,
		Title:        title,
		ViewCount:    viewCount,
		ThumbnailURL: thumbnailURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Fresh reports whether the slot was updated within the given window and can
// be served without consulting the search provider again.
func (s *TimeSlot) Fresh(now time.Time, within time.Duration) bool {
	return now.Sub(s.UpdatedAt) < within
}
