package intelligence

import (
	"fmt"
	"strings"
	"time"

	"slotify/models"
)

const extractionContract = `You extract scheduling details from one user message in a meeting-booking conversation.

Respond with ONLY a JSON object, no prose and no code fences, using exactly these keys:
{
  "duration_minutes": <integer minutes or null>,
  "date_preference": <the user's date words, e.g. "tomorrow", "next Friday", "March 3", or null>,
  "time_preference": <"morning", "afternoon", "evening", "any", a clock time like "2 PM", or null>,
  "meeting_title": <title text or null>,
  "intent": <"greeting", "duration", "date", "time", "slot_selection", "title", "confirmation", "restart" or "unclear">,
  "slot_number": <integer option number the user picked, or null>,
  "confirmation": <"yes", "no" or null>
}

Rules:
- Convert spoken durations to minutes ("an hour" is 60, "half an hour" is 30, "1.5 hours" is 90).
- Keep date words verbatim in date_preference; do not resolve them to a calendar date.
- slot_number is only for picking a presented option ("the first one" is 1, "option 3" is 3).
- confirmation is only for approving or rejecting a booking summary.
- A message may fill several keys at once. Use null for anything the message does not state.`

func buildExtractionPrompt(sess *models.Session, utterance string, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(extractionContract)
	sb.WriteString("\n\nCurrent date and time: ")
	sb.WriteString(now.Format("Monday, 2006-01-02 15:04 MST"))
	sb.WriteString("\nConversation stage: ")
	sb.WriteString(string(sess.Stage))

	if c := sess.Collected; c.DurationMinutes > 0 || !c.Date.IsZero() || c.TimePreference != "" {
		sb.WriteString("\nAlready collected:")
		if c.DurationMinutes > 0 {
			fmt.Fprintf(&sb, " duration=%dmin", c.DurationMinutes)
		}
		if !c.Date.IsZero() {
			fmt.Fprintf(&sb, " date=%s", c.Date.Format("2006-01-02"))
		}
		if c.TimePreference != "" {
			fmt.Fprintf(&sb, " time=%s", c.TimePreference)
		}
	}

	if recent := sess.RecentHistory(historyTurns); len(recent) > 0 {
		sb.WriteString("\n\nRecent conversation:\n")
		for _, turn := range recent {
			fmt.Fprintf(&sb, "%s: %s\n", turn.Role, turn.Text)
		}
	}

	fmt.Fprintf(&sb, "\nUser message: %q\nJSON:", utterance)
	return sb.String()
}

func buildDateResolutionPrompt(expression string, now time.Time) string {
	return fmt.Sprintf(`Resolve the date expression below to a single calendar date.

Today is %s.

Expression: %q

Respond with ONLY the date in YYYY-MM-DD format. If the expression is not a real, resolvable date, respond with exactly INVALID.`,
		now.Format("Monday, 2006-01-02"), expression)
}
