package availability

import (
	"strings"
	"time"

	"slotify/models"
)

// Canonical time-of-day preferences.
const (
	PreferenceMorning   = "morning"
	PreferenceAfternoon = "afternoon"
	PreferenceEvening   = "evening"
	PreferenceAny       = "any"
)

// Clock windows in minutes from midnight (e.g., 540 is 9:00 AM).
var namedWindows = map[string]models.TimeWindow{
	PreferenceMorning:   {StartMinute: 9 * 60, EndMinute: 12 * 60},
	PreferenceAfternoon: {StartMinute: 12 * 60, EndMinute: 17 * 60},
	PreferenceEvening:   {StartMinute: 17 * 60, EndMinute: 20 * 60},
	PreferenceAny:       {StartMinute: 9 * 60, EndMinute: 18 * 60},
}

// Explicit clock preferences open a two-hour window capped at 8 PM.
const (
	explicitWindowMinutes = 2 * 60
	latestWindowEndMinute = 20 * 60
)

var anySynonyms = map[string]bool{
	"any":           true,
	"any time":      true,
	"anytime":       true,
	"no preference": true,
	"whenever":      true,
}

// NormalizePreference maps free-form user phrasing onto a canonical
// preference: one of the named windows, or the trimmed text of a parseable
// clock time. ok is false when the phrasing fits neither.
func NormalizePreference(raw string) (string, bool) {
	pref := strings.ToLower(strings.TrimSpace(raw))
	if pref == "" {
		return "", false
	}
	if anySynonyms[pref] {
		return PreferenceAny, true
	}
	if _, ok := namedWindows[pref]; ok {
		return pref, true
	}
	if _, ok := parseClockMinute(pref); ok {
		return pref, true
	}
	return "", false
}

// WindowFor resolves a normalized preference to its clock window.
func WindowFor(preference string) (models.TimeWindow, bool) {
	pref := strings.ToLower(strings.TrimSpace(preference))
	if w, ok := namedWindows[pref]; ok {
		return w, true
	}
	if start, ok := parseClockMinute(pref); ok {
		end := start + explicitWindowMinutes
		if end > latestWindowEndMinute {
			end = latestWindowEndMinute
		}
		return models.TimeWindow{StartMinute: start, EndMinute: end}, true
	}
	return models.TimeWindow{}, false
}

var clockLayouts = []string{"3:04PM", "3:04 PM", "3PM", "3 PM", "15:04"}

// parseClockMinute turns expressions like "2 PM", "2pm" or "14:30" into
// minutes from midnight.
func parseClockMinute(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}
