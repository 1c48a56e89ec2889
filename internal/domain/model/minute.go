package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the number of addressable slot times.
const MinutesPerDay = 24 * 60

// ErrInvalidTime is returned when a time string cannot be parsed as HH:MM.
var ErrInvalidTime = errors.New("invalid time, expected HH:MM")

// ToMinutes parses "H:MM" or "HH:MM" into a minute-of-day in [0, 1439].
// A missing hour or minute component defaults to "00", so "7" means 07:00
// and ":30" means 00:30.
func ToMinutes(s string) (int, error) {
	hourPart, minutePart, _ := strings.Cut(s, ":")
	if hourPart == "" {
		hourPart = "00"
	}
	if minutePart == "" {
		minutePart = "00"
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	return hour*60 + minute, nil
}

// FromMinutes renders a minute-of-day as a canonical zero-padded "HH:MM".
// The input is taken modulo a day, so any integer is valid.
func FromMinutes(m int) string {
	m = ((m % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Window computes the symmetric window of 2*span minutes around center.
// start = center - span and end = center + span, both wrapped past midnight.
// The minutes covered by the window are start, start+1, ..., end-1; end
// itself is the exclusive upper bound of the enumeration but the inclusive
// bound used by range queries is end-1.
func Window(center, span int) (start, end int) {
	start = ((center-span)%MinutesPerDay + MinutesPerDay) % MinutesPerDay
	end = ((center + span) % MinutesPerDay)
	return start, end
}

// Enumerate returns exactly count consecutive minute labels starting at
// start, wrapping past 23:59 back to 00:00.
func Enumerate(start, count int) []string {
	labels := make([]string, 0, count)
	for i := 0; i < count; i++ {
		labels = append(labels, FromMinutes(start+i))
	}
	return labels
}
