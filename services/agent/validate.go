package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"slotify/models"
	"slotify/services/availability"
	"slotify/services/intelligence"
)

// DefaultMeetingTitle is used when the user skips naming the meeting.
const DefaultMeetingTitle = "Scheduled Meeting"

var restartKeywords = []string{"start over", "restart", "reset", "new meeting", "begin again"}

func wantsRestart(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range restartKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var titleSkipWords = map[string]bool{
	"skip":     true,
	"no title": true,
	"default":  true,
	"none":     true,
}

var titlePrefixes = []string{"call it", "name it", "title is", "it's called", "meeting about"}

// cleanTitle strips naming chatter ("call it Budget Review") and maps skip
// words onto the default title.
func cleanTitle(raw string) string {
	t := strings.TrimSpace(raw)
	if t == "" || titleSkipWords[strings.ToLower(t)] {
		return DefaultMeetingTitle
	}

	lower := strings.ToLower(t)
	for _, p := range titlePrefixes {
		if strings.HasPrefix(lower, p) {
			t = strings.TrimSpace(t[len(p):])
			break
		}
	}
	t = strings.Trim(t, `"'`)
	if t == "" {
		return DefaultMeetingTitle
	}
	return t
}

// searchKey fingerprints the three fields candidate slots were generated
// from. A key mismatch means the stored candidates no longer describe the
// user's request.
func searchKey(c models.CollectedFields) string {
	return fmt.Sprintf("%s|%d|%s", c.Date.Format("2006-01-02"), c.DurationMinutes, c.TimePreference)
}

// mergeResult reports which fields a turn accepted and which values were
// refused, in user-facing wording.
type mergeResult struct {
	updated  []string
	rejected []string
}

func (m mergeResult) touched() bool {
	return len(m.updated) > 0 || len(m.rejected) > 0
}

// applyEntities folds extracted entities into the session, validating each
// field independently. Extractor output is advisory: a field only lands
// after passing the same checks regardless of which stage asked for it.
// Changing any search field throws away candidates and selection. The
// returned error is reserved for a failed date-resolution call; invalid
// values come back as rejection notes instead.
func (a *DefaultAgent) applyEntities(ctx context.Context, sess *models.Session, ent models.ExtractedEntities, now time.Time) (mergeResult, error) {
	var res mergeResult
	c := &sess.Collected
	invalidated := false

	if ent.DurationMinutes != nil {
		d := *ent.DurationMinutes
		switch {
		case d < a.MinDurationMinutes:
			res.rejected = append(res.rejected,
				fmt.Sprintf("Meetings need to be at least %d minutes.", a.MinDurationMinutes))
		case d > a.MaxDurationMinutes:
			res.rejected = append(res.rejected,
				fmt.Sprintf("Meetings can run at most %s.", formatDuration(a.MaxDurationMinutes)))
		default:
			if c.DurationMinutes != d {
				c.DurationMinutes = d
				invalidated = true
				res.updated = append(res.updated, formatDuration(d))
			}
		}
	}

	if ent.DatePreference != "" {
		day, err := a.Extractor.ResolveDate(ctx, ent.DatePreference, now)
		switch {
		case errors.Is(err, intelligence.ErrUnresolvableDate):
			res.rejected = append(res.rejected,
				fmt.Sprintf("I couldn't work out a date from %q. Try something like \"tomorrow\" or \"next Friday\".", ent.DatePreference))
		case err != nil:
			return res, err
		default:
			if issue := dateIssue(day, now); issue != "" {
				res.rejected = append(res.rejected, issue)
			} else if !day.Equal(c.Date) {
				c.Date = day
				c.DateText = ent.DatePreference
				invalidated = true
				res.updated = append(res.updated, formatDay(day))
			}
		}
	}

	if ent.TimePreference != "" {
		pref, ok := availability.NormalizePreference(ent.TimePreference)
		if !ok {
			res.rejected = append(res.rejected,
				"For the time of day, tell me morning, afternoon, evening or any, or give a time like \"2 PM\".")
		} else if c.TimePreference != pref {
			c.TimePreference = pref
			invalidated = true
			res.updated = append(res.updated, windowLabel(pref))
		}
	}

	if ent.MeetingTitle != "" {
		t := cleanTitle(ent.MeetingTitle)
		if c.Title == nil || *c.Title != t {
			c.Title = &t
			res.updated = append(res.updated, fmt.Sprintf("the title %q", t))
		}
	}

	if invalidated {
		sess.CandidateSlots = nil
		sess.SelectedSlot = nil
		sess.SearchKey = ""
	}
	return res, nil
}

func dateIssue(day, now time.Time) string {
	today := midnight(now)
	if day.Before(today) {
		return "That date has already passed. Pick today or a future date."
	}
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return "I can only book weekdays. Pick a day from Monday to Friday."
	}
	return ""
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
