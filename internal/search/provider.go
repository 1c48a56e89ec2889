package search

import (
	"context"
	"errors"
)

var (
	// ErrQuotaExceeded is returned when the provider rejects a request for
	// quota exhaustion and no further credential is available.
	ErrQuotaExceeded = errors.New("search provider quota exceeded")

	// ErrUnavailable is returned on network failures, timeouts and
	// unexpected provider responses. Callers may retry the whole request.
	ErrUnavailable = errors.New("search provider unavailable")
)

// Candidate is one search result under consideration for a slot.
type Candidate struct {
	VideoID      string
	Title        string
	ThumbnailURL string // empty when the provider returned no thumbnail
}

// Provider defines the interface for the external video search service.
type Provider interface {
	// Search runs one query and returns the raw candidate list.
	// Returns ErrQuotaExceeded or ErrUnavailable on provider failure;
	// an empty result is not an error.
	Search(ctx context.Context, query string) ([]Candidate, error)

	// Verify reports whether the video is public and embeddable.
	Verify(ctx context.Context, videoID string) (bool, error)
}

// WatchURL builds the public URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
