package agent

import (
	"fmt"
	"strings"
	"time"

	"slotify/models"
	"slotify/services/availability"
)

func formatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%d minutes", m)
	case h == 1 && m == 0:
		return "1 hour"
	case m == 0:
		return fmt.Sprintf("%d hours", h)
	case h == 1:
		return fmt.Sprintf("1 hour %d minutes", m)
	default:
		return fmt.Sprintf("%d hours %d minutes", h, m)
	}
}

func formatDay(t time.Time) string {
	return t.Format("Monday, January 2")
}

func formatSlotRange(s models.Slot) string {
	return s.Start.Format("3:04 PM") + " - " + s.End.Format("3:04 PM")
}

func windowLabel(pref string) string {
	switch pref {
	case availability.PreferenceMorning, availability.PreferenceAfternoon, availability.PreferenceEvening:
		return "the " + pref
	case availability.PreferenceAny:
		return "any time of day"
	default:
		return "around " + pref
	}
}

// ackPrefix turns a merge result into the sentence(s) that open a reply:
// what was taken on board, then what was refused and why.
func ackPrefix(m mergeResult) string {
	var sb strings.Builder
	if len(m.updated) > 0 {
		sb.WriteString("Got it: ")
		sb.WriteString(strings.Join(m.updated, ", "))
		sb.WriteString(". ")
	}
	for _, r := range m.rejected {
		sb.WriteString(r)
		sb.WriteString(" ")
	}
	return sb.String()
}

func greetingReply() string {
	return "Hi! I can book a meeting on the calendar for you. How long should it be? Something like \"45 minutes\" or \"an hour\" works."
}

func askDuration() string {
	return "How long should the meeting be? You can say \"30 minutes\", \"1 hour\" or \"2 and a half hours\"."
}

func askDate() string {
	return "What day works for you? You can say \"tomorrow\", \"next Tuesday\" or a date like \"March 12\"."
}

func askTimePreference() string {
	return "Do you prefer morning, afternoon or evening? Say \"any\" if it doesn't matter, or give a time like \"2 PM\"."
}

func presentSlots(date time.Time, slots []models.Slot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Here's what's open on %s:\n", formatDay(date))
	for i, s := range slots {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, formatSlotRange(s))
	}
	sb.WriteString("\nWhich option works for you?")
	return sb.String()
}

func invalidChoice(max int, date time.Time, slots []models.Slot) string {
	return fmt.Sprintf("That option isn't on the list. Pick a number from 1 to %d.\n\n%s", max, presentSlots(date, slots))
}

func chooseNudge(max int) string {
	return fmt.Sprintf("Just tell me which option works, like \"1\" or \"the second one\" (1-%d).", max)
}

func askTitle(slot models.Slot) string {
	return fmt.Sprintf("Nice, %s it is. What should I call the meeting? Say \"skip\" and I'll use a default title.", formatSlotRange(slot))
}

func confirmSummary(c models.CollectedFields, slot models.Slot) string {
	title := DefaultMeetingTitle
	if c.Title != nil {
		title = *c.Title
	}
	return fmt.Sprintf("Here's what I have:\n  %s\n  %s\n  %s (%s)\n\nShall I book it?",
		title, formatDay(slot.Start), formatSlotRange(slot), formatDuration(c.DurationMinutes))
}

func confirmNudge(c models.CollectedFields, slot models.Slot) string {
	title := DefaultMeetingTitle
	if c.Title != nil {
		title = *c.Title
	}
	return fmt.Sprintf("Should I book %q for %s, %s? A simple yes or no works.",
		title, formatDay(slot.Start), formatSlotRange(slot))
}

func bookedReply(title string, slot models.Slot, eventID string) string {
	return fmt.Sprintf("✅ Booked! %q is on the calendar for %s, %s. Event ID: %s. Say \"start over\" to schedule another meeting.",
		title, formatDay(slot.Start), formatSlotRange(slot), eventID)
}

func bookingFailedReply() string {
	return "I couldn't write the event to the calendar, so nothing was booked. Say \"start over\" to try again."
}

func declineReply() string {
	return "No problem, I won't book it. Let's find a different time. Morning, afternoon, evening or any?"
}

func restartReply() string {
	return "Okay, starting fresh! How long should the meeting be?"
}

func terminalReply(stage models.Stage) string {
	if stage == models.StageBooked {
		return "That meeting is already booked. Say \"start over\" if you'd like to schedule another one."
	}
	return "The last booking attempt failed and nothing was saved. Say \"start over\" to try again."
}

func extractionApology() string {
	return "Sorry, I'm having trouble understanding messages right now. Give me a moment and try again."
}

func searchApology() string {
	return "Sorry, I couldn't reach the calendar just now. Ask me again in a moment."
}

func noSlotsInWindow(pref string, date time.Time) string {
	label := windowLabel(pref)
	if strings.HasPrefix(label, "the ") {
		label = "in " + label
	}
	return fmt.Sprintf("I found no free slots %s on %s. Want to try morning, afternoon, evening or any?",
		label, formatDay(date))
}

func dayFullyBooked(date time.Time) string {
	return fmt.Sprintf("%s looks fully booked, I couldn't find any opening. What other day could work?", formatDay(date))
}
