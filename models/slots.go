package models

import "time"

// Slot is a free interval offered to the user for booking.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the slot length.
func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Equal reports whether two slots cover exactly the same interval.
func (s Slot) Equal(o Slot) bool {
	return s.Start.Equal(o.Start) && s.End.Equal(o.End)
}

// BusyInterval is a time range already occupied on the calendar.
type BusyInterval struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Summary string    `json:"summary,omitempty"`
	EventID string    `json:"eventId,omitempty"`
}

// Overlaps reports whether the busy interval collides with [start, end).
// The comparison is strict so back-to-back meetings are allowed.
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return start.Before(b.End) && end.After(b.Start)
}

// TimeWindow is a clock window within a single day, in minutes from midnight
// (e.g., 540 for 9:00 AM).
type TimeWindow struct {
	StartMinute int `json:"start"`
	EndMinute   int `json:"end"`
}

// Minutes returns the window length in minutes.
func (w TimeWindow) Minutes() int {
	return w.EndMinute - w.StartMinute
}
