package availability

import (
	"sort"
	"time"

	"slotify/models"
)

// Policy generates candidate meeting slots for a single day. Generation is
// deterministic: the same date, duration, window and busy set always yield
// the same ordered list.
type Policy struct {
	// StepMinutes is the interval between candidate start times.
	StepMinutes int
	// MaxOptions caps how many free slots are returned.
	MaxOptions int
}

// DefaultPolicy mirrors the configured step and cap.
func DefaultPolicy(stepMinutes, maxOptions int) Policy {
	if stepMinutes <= 0 {
		stepMinutes = 30
	}
	if maxOptions <= 0 {
		maxOptions = 5
	}
	return Policy{StepMinutes: stepMinutes, MaxOptions: maxOptions}
}

// Generate walks the window on the given day in StepMinutes increments and
// returns up to MaxOptions slots of the requested duration that do not
// overlap any busy interval. The date must be midnight in the reference
// zone. Slots that would start before now are skipped, so a search for the
// current day only offers times still ahead. Weekends and past dates yield
// nothing.
func (p Policy) Generate(date time.Time, durationMinutes int, window models.TimeWindow, busy []models.BusyInterval, now time.Time) []models.Slot {
	if durationMinutes <= 0 || window.Minutes() <= 0 {
		return nil
	}
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return nil
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return nil
	}

	duration := time.Duration(durationMinutes) * time.Minute
	step := time.Duration(p.StepMinutes) * time.Minute
	windowEnd := date.Add(time.Duration(window.EndMinute) * time.Minute)

	var slots []models.Slot
	for start := date.Add(time.Duration(window.StartMinute) * time.Minute); !start.Add(duration).After(windowEnd); start = start.Add(step) {
		if start.Before(now) {
			continue
		}
		end := start.Add(duration)
		if overlapsAny(busy, start, end) {
			continue
		}
		slots = append(slots, models.Slot{Start: start, End: end})
		if len(slots) == p.MaxOptions {
			break
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots
}

func overlapsAny(busy []models.BusyInterval, start, end time.Time) bool {
	for _, b := range busy {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
