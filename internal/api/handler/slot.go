package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/hourglass-dev/timetube/internal/domain/model"
	"github.com/hourglass-dev/timetube/internal/search"
	"github.com/hourglass-dev/timetube/internal/usecase"
)

// Request/Response types

type SlotResponse struct {
	VideoID      string  `json:"videoId"`
	VideoURL     string  `json:"videoUrl"`
	Title        string  `json:"title"`
	ViewCount    int64   `json:"viewCount"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	Timestamp    string  `json:"timestamp"`
}

type WindowEntryResponse struct {
	Time         string  `json:"time"`
	VideoID      *string `json:"videoId"`
	VideoURL     *string `json:"videoUrl"`
	Title        *string `json:"title"`
	ViewCount    *int64  `json:"viewCount"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	Cached       bool    `json:"cached"`
}

type WindowResponse struct {
	Videos     []WindowEntryResponse `json:"videos"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	CenterTime string                `json:"centerTime"`
}

type RefreshResponse struct {
	Scheduled int    `json:"scheduled"`
	Time      string `json:"time"`
}

// SlotHandler handles slot-related HTTP requests.
type SlotHandler struct {
	svc usecase.SlotService
	now func() time.Time
}

// NewSlotHandler creates a new SlotHandler.
func NewSlotHandler(svc usecase.SlotService) *SlotHandler {
	return &SlotHandler{
		svc: svc,
		now: time.Now,
	}
}

// Get handles GET /video
// The time parameter defaults to the current minute of day.
func (h *SlotHandler) Get(w http.ResponseWriter, r *http.Request) {
	slotTime := r.URL.Query().Get("time")
	if slotTime == "" {
		slotTime = h.now().Format("15:04")
	}

	skipCache, err := parseBool(r.URL.Query().Get("skipCache"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_skip_cache", "skipCache must be a boolean")
		return
	}

	slot, err := h.svc.Resolve(r.Context(), usecase.ResolveInput{
		Time:      slotTime,
		SkipCache: skipCache,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, toSlotResponse(slot))
}

// Window handles GET /videos
// Returns one entry per minute of the window around the requested time,
// with uncached minutes as null-valued placeholders.
func (h *SlotHandler) Window(w http.ResponseWriter, r *http.Request) {
	slotTime := r.URL.Query().Get("time")
	if slotTime == "" {
		slotTime = h.now().Format("15:04")
	}

	span, err := parsePositiveInt(r.URL.Query().Get("range"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_range", "range must be a positive integer")
		return
	}
	page, err := parsePositiveInt(r.URL.Query().Get("page"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_page", "page must be a positive integer")
		return
	}

	output, err := h.svc.Window(r.Context(), usecase.WindowInput{
		Time: slotTime,
		Span: span,
		Page: page,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	videos := make([]WindowEntryResponse, 0, len(output.Entries))
	for _, entry := range output.Entries {
		videos = append(videos, toWindowEntryResponse(entry))
	}

	JSON(w, http.StatusOK, WindowResponse{
		Videos:     videos,
		Total:      output.Total,
		Page:       output.Page,
		Limit:      output.Limit,
		CenterTime: output.CenterTime,
	})
}

// Refresh handles POST /v1/refresh
// Schedules background refresh tasks for a window of minutes.
func (h *SlotHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	slotTime := r.URL.Query().Get("time")
	if slotTime == "" {
		slotTime = h.now().Format("15:04")
	}
	span, err := parsePositiveInt(r.URL.Query().Get("range"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_range", "range must be a positive integer")
		return
	}

	tasks, err := h.svc.ScheduleRefresh(r.Context(), usecase.RefreshInput{
		Time: slotTime,
		Span: span,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusAccepted, RefreshResponse{
		Scheduled: len(tasks),
		Time:      slotTime,
	})
}

func (h *SlotHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidTime):
		Error(w, http.StatusBadRequest, "invalid_time", "Time must be in HH:MM format")
	case errors.Is(err, usecase.ErrNoVideoFound):
		Error(w, http.StatusNotFound, "no_video_found", "No video found for the requested time")
	case errors.Is(err, search.ErrQuotaExceeded), errors.Is(err, search.ErrUnavailable):
		Error(w, http.StatusBadGateway, "provider_unavailable", "Video search is temporarily unavailable")
	case errors.Is(err, usecase.ErrRefreshDisabled):
		Error(w, http.StatusServiceUnavailable, "refresh_disabled", "Refresh scheduling is not configured")
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func toSlotResponse(slot *model.TimeSlot) SlotResponse {
	return SlotResponse{
		VideoID:      slot.VideoID,
		VideoURL:     slot.VideoURL,
		Title:        slot.Title,
		ViewCount:    slot.ViewCount,
		ThumbnailURL: nullableString(slot.ThumbnailURL),
		Timestamp:    slot.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toWindowEntryResponse(entry usecase.WindowEntry) WindowEntryResponse {
	resp := WindowEntryResponse{
		Time:   entry.Time,
		Cached: entry.Cached(),
	}
	if entry.Slot != nil {
		resp.VideoID = &entry.Slot.VideoID
		resp.VideoURL = &entry.Slot.VideoURL
		resp.Title = &entry.Slot.Title
		resp.ViewCount = &entry.Slot.ViewCount
		resp.ThumbnailURL = nullableString(entry.Slot.ThumbnailURL)
	}
	return resp
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseBool parses an optional boolean query parameter. Empty means false.
func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

// parsePositiveInt parses an optional positive integer query parameter.
// Empty means zero, which callers treat as "use the default".
func parsePositiveInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
