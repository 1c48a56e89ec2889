package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hourglass-dev/timetube/internal/domain/model"
)

// mentionPattern finds candidate time mentions in a title. The digit runs
// are greedy on purpose: a time embedded in a longer number ("12345:30"),
// followed by extra digits ("7:345") or by a seconds component ("7:34:56")
// is consumed as a single match and then rejected by parseMention, so it
// can never be miscounted as a clean mention plus leftovers.
var mentionPattern = regexp.MustCompile(`(?i)([0-9]+):([0-9]+)(:[0-9]+)?\s*(a\.m\.|p\.m\.|am\b|pm\b)?`)

// mention is one syntactically valid clock-time occurrence in a title.
type mention struct {
	hour     int
	minute   int
	meridiem string // "am", "pm" or "" when absent
}

// denotes reports whether the mention can mean the given minute of day.
// With a meridiem the reading is unambiguous. Without one, both the
// 24-hour reading and the two 12-hour readings are accepted.
func (m mention) denotes(minuteOfDay int) bool {
	if m.meridiem != "" {
		h := m.hour % 12
		if m.meridiem == "pm" {
			h += 12
		}
		return h*60+m.minute == minuteOfDay
	}
	if m.hour*60+m.minute == minuteOfDay {
		return true
	}
	h := m.hour % 12
	return h*60+m.minute == minuteOfDay || (h+12)*60+m.minute == minuteOfDay
}

// parseMention validates one regex match. Valid mentions have a one or two
// digit hour, exactly two minute digits under 60, no seconds component, and
// an hour in 1..12 when a meridiem is present or 0..23 otherwise.
func parseMention(groups []string) (mention, bool) {
	hourStr, minuteStr, seconds, meridiem := groups[1], groups[2], groups[3], groups[4]

	if seconds != "" || len(hourStr) > 2 || len(minuteStr) != 2 {
		return mention{}, false
	}

	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return mention{}, false
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil {
		return mention{}, false
	}
	if minute > 59 {
		return mention{}, false
	}

	mer := strings.ToLower(strings.ReplaceAll(meridiem, ".", ""))
	if mer != "" {
		if hour < 1 || hour > 12 {
			return mention{}, false
		}
	} else if hour > 23 {
		return mention{}, false
	}

	return mention{hour: hour, minute: minute, meridiem: mer}, true
}

// occurrences returns every valid time mention in the title.
func occurrences(title string) []mention {
	var found []mention
	for _, groups := range mentionPattern.FindAllStringSubmatch(title, -1) {
		if m, ok := parseMention(groups); ok {
			found = append(found, m)
		}
	}
	return found
}

// IsTimeTitle reports whether the title carries exactly one unambiguous
// clock-time mention. Zero mentions reject, and so do two or more: a title
// naming several times is treated as ambiguous rather than matching any of
// them.
func IsTimeTitle(title string) bool {
	return len(occurrences(title)) == 1
}

// Matches reports whether the title unambiguously encodes the target
// minute: exactly one valid mention, and that mention denotes target
// (a canonical 24-hour "HH:MM" string).
func Matches(title, target string) bool {
	minuteOfDay, err := model.ToMinutes(target)
	if err != nil {
		return false
	}
	found := occurrences(title)
	return len(found) == 1 && found[0].denotes(minuteOfDay)
}

// Variants renders the textual forms of a 24-hour time used to build search
// queries. The set is deduplicated and order is stable for a given input.
func Variants(target string) ([]string, error) {
	minuteOfDay, err := model.ToMinutes(target)
	if err != nil {
		return nil, err
	}

	hour := minuteOfDay / 60
	minuteStr := fmt.Sprintf("%02d", minuteOfDay%60)

	h12 := hour % 12
	if h12 == 0 {
		h12 = 12
	}
	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}
	lower := strings.ToLower(meridiem)

	forms := []string{
		fmt.Sprintf("%d:%s %s", h12, minuteStr, meridiem),
		fmt.Sprintf("%d:%s %s", h12, minuteStr, lower),
		fmt.Sprintf("%d:%s%s", h12, minuteStr, meridiem),
		fmt.Sprintf("%d:%s%s", h12, minuteStr, lower),
		fmt.Sprintf("%02d:%s%s", h12, minuteStr, lower),
		fmt.Sprintf("%d:%s %c.%c.", h12, minuteStr, meridiem[0], meridiem[1]),
	}

	seen := make(map[string]struct{}, len(forms))
	variants := forms[:0]
	for _, f := range forms {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		variants = append(variants, f)
	}
	return variants, nil
}
