package availability

import (
	"reflect"
	"testing"
	"time"

	"slotify/models"
)

var testZone = time.FixedZone("IST", 5*3600+1800)

// monday is 2026-03-02, a Monday.
func monday() time.Time {
	return time.Date(2026, 3, 2, 0, 0, 0, 0, testZone)
}

func at(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, day.Location())
}

func earlyClock(day time.Time) time.Time {
	return at(day, 6, 0)
}

func TestGenerateMorningHourSlots(t *testing.T) {
	p := DefaultPolicy(30, 5)
	window, ok := WindowFor(PreferenceMorning)
	if !ok {
		t.Fatal("morning window missing")
	}

	slots := p.Generate(monday(), 60, window, nil, earlyClock(monday()))
	if len(slots) != 5 {
		t.Fatalf("got %d slots, want 5", len(slots))
	}
	if !slots[0].Start.Equal(at(monday(), 9, 0)) {
		t.Errorf("first slot starts %v, want 09:00", slots[0].Start)
	}
	if !slots[0].End.Equal(at(monday(), 10, 0)) {
		t.Errorf("first slot ends %v, want 10:00", slots[0].End)
	}
	last := slots[len(slots)-1]
	if !last.End.After(at(monday(), 9, 0)) || last.End.After(at(monday(), 12, 0)) {
		t.Errorf("last slot %v..%v escapes the morning window", last.Start, last.End)
	}
}

func TestGenerateSkipsBusyIntervals(t *testing.T) {
	p := DefaultPolicy(30, 5)
	window, _ := WindowFor(PreferenceAfternoon)
	busy := []models.BusyInterval{{Start: at(monday(), 12, 0), End: at(monday(), 14, 0)}}

	slots := p.Generate(monday(), 120, window, busy, earlyClock(monday()))
	if len(slots) != 3 {
		t.Fatalf("got %d slots, want 3", len(slots))
	}
	if !slots[0].Start.Equal(at(monday(), 14, 0)) {
		t.Errorf("first free slot starts %v, want 14:00", slots[0].Start)
	}
	for _, s := range slots {
		if busy[0].Overlaps(s.Start, s.End) {
			t.Errorf("slot %v..%v overlaps busy interval", s.Start, s.End)
		}
	}
}

func TestGenerateAllowsBackToBack(t *testing.T) {
	p := DefaultPolicy(30, 10)
	window, _ := WindowFor(PreferenceMorning)
	busy := []models.BusyInterval{{Start: at(monday(), 10, 0), End: at(monday(), 11, 0)}}

	slots := p.Generate(monday(), 60, window, busy, earlyClock(monday()))
	var starts []string
	for _, s := range slots {
		starts = append(starts, s.Start.Format("15:04"))
	}
	want := []string{"09:00", "11:00"}
	if !reflect.DeepEqual(starts, want) {
		t.Errorf("starts = %v, want %v", starts, want)
	}
}

func TestGenerateExcludesElapsedStarts(t *testing.T) {
	p := DefaultPolicy(30, 5)
	window, _ := WindowFor(PreferenceMorning)
	now := at(monday(), 10, 15)

	slots := p.Generate(monday(), 60, window, nil, now)
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	if !slots[0].Start.Equal(at(monday(), 10, 30)) {
		t.Errorf("first slot starts %v, want 10:30", slots[0].Start)
	}
}

func TestGenerateEmptyCases(t *testing.T) {
	p := DefaultPolicy(30, 5)
	morning, _ := WindowFor(PreferenceMorning)
	saturday := time.Date(2026, 3, 7, 0, 0, 0, 0, testZone)

	cases := []struct {
		name     string
		date     time.Time
		duration int
		now      time.Time
	}{
		{"weekend", saturday, 60, earlyClock(saturday)},
		{"past date", monday(), 60, at(monday().AddDate(0, 0, 3), 8, 0)},
		{"duration exceeds window", monday(), 240, earlyClock(monday())},
		{"zero duration", monday(), 0, earlyClock(monday())},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if slots := p.Generate(tc.date, tc.duration, morning, nil, tc.now); len(slots) != 0 {
				t.Errorf("got %d slots, want none", len(slots))
			}
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	p := DefaultPolicy(30, 5)
	window, _ := WindowFor(PreferenceAny)
	busy := []models.BusyInterval{
		{Start: at(monday(), 9, 30), End: at(monday(), 10, 0)},
		{Start: at(monday(), 13, 0), End: at(monday(), 15, 30)},
	}
	now := earlyClock(monday())

	first := p.Generate(monday(), 45, window, busy, now)
	second := p.Generate(monday(), 45, window, busy, now)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different slot lists")
	}
	for i := 1; i < len(first); i++ {
		if !first[i-1].Start.Before(first[i].Start) {
			t.Errorf("slots out of order at %d: %v then %v", i, first[i-1].Start, first[i].Start)
		}
	}
}

func TestGenerateCapsOptions(t *testing.T) {
	p := DefaultPolicy(30, 5)
	window, _ := WindowFor(PreferenceAny)

	slots := p.Generate(monday(), 30, window, nil, earlyClock(monday()))
	if len(slots) != 5 {
		t.Errorf("got %d slots, want cap of 5", len(slots))
	}
}

func TestWindowForExplicitClock(t *testing.T) {
	cases := []struct {
		in         string
		start, end int
	}{
		{"2 PM", 14 * 60, 16 * 60},
		{"2pm", 14 * 60, 16 * 60},
		{"14:30", 14*60 + 30, 16*60 + 30},
		{"7 pm", 19 * 60, 20 * 60},
		{"9:15 AM", 9*60 + 15, 11*60 + 15},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			w, ok := WindowFor(tc.in)
			if !ok {
				t.Fatalf("WindowFor(%q) not recognized", tc.in)
			}
			if w.StartMinute != tc.start || w.EndMinute != tc.end {
				t.Errorf("window = [%d,%d), want [%d,%d)", w.StartMinute, w.EndMinute, tc.start, tc.end)
			}
		})
	}
}

func TestNormalizePreference(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Morning", PreferenceMorning, true},
		{"  EVENING ", PreferenceEvening, true},
		{"anytime", PreferenceAny, true},
		{"no preference", PreferenceAny, true},
		{"3 PM", "3 pm", true},
		{"purple", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizePreference(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("NormalizePreference(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
