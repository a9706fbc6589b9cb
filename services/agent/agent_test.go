package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"slotify/models"
	"slotify/services/intelligence"
)

var testZone = time.FixedZone("IST", 5*3600+1800)

// fixedNow is Monday 2026-03-02 08:00 in the reference zone.
var fixedNow = time.Date(2026, 3, 2, 8, 0, 0, 0, testZone)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, testZone)
}

func at(d time.Time, hour, min int) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), hour, min, 0, 0, d.Location())
}

func intPtr(n int) *int { return &n }

type fakeExtractor struct {
	entities map[string]models.ExtractedEntities
	dates    map[string]time.Time
	err      error
}

func (f *fakeExtractor) ExtractEntities(ctx context.Context, sess *models.Session, utterance string, now time.Time) (models.ExtractedEntities, error) {
	if f.err != nil {
		return models.ExtractedEntities{}, f.err
	}
	return f.entities[strings.ToLower(utterance)], nil
}

func (f *fakeExtractor) ResolveDate(ctx context.Context, expression string, now time.Time) (time.Time, error) {
	if d, ok := f.dates[strings.ToLower(expression)]; ok {
		return d, nil
	}
	return time.Time{}, intelligence.ErrUnresolvableDate
}

type fakeCalendar struct {
	slots     []models.Slot
	findErr   error
	bookErr   error
	findCalls int
	booked    []string
}

func (f *fakeCalendar) FindSlots(ctx context.Context, date time.Time, durationMinutes int, preference string) ([]models.Slot, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.slots, nil
}

func (f *fakeCalendar) Book(ctx context.Context, slot models.Slot, title, description string) (string, error) {
	if f.bookErr != nil {
		return "", f.bookErr
	}
	f.booked = append(f.booked, title)
	return "evt-123", nil
}

func tuesdaySlots() []models.Slot {
	tue := day(2026, 3, 3)
	return []models.Slot{
		{Start: at(tue, 9, 0), End: at(tue, 10, 0)},
		{Start: at(tue, 10, 0), End: at(tue, 11, 0)},
		{Start: at(tue, 11, 0), End: at(tue, 12, 0)},
	}
}

func happyExtractor() *fakeExtractor {
	return &fakeExtractor{
		entities: map[string]models.ExtractedEntities{
			"about an hour":   {DurationMinutes: intPtr(60), Intent: models.IntentDuration},
			"tomorrow":        {DatePreference: "tomorrow", Intent: models.IntentDate},
			"morning":         {TimePreference: "morning", Intent: models.IntentTime},
			"evening":         {TimePreference: "evening", Intent: models.IntentTime},
			"the second one":  {SlotNumber: intPtr(2), Intent: models.IntentSlotSelection},
			"1":               {SlotNumber: intPtr(1), Intent: models.IntentSlotSelection},
			"option 6":        {SlotNumber: intPtr(6), Intent: models.IntentSlotSelection},
			"project kickoff": {MeetingTitle: "Project kickoff", Intent: models.IntentTitle},
			"yes":             {Confirmation: models.ConfirmYes, Intent: models.IntentConfirmation},
			"no":              {Confirmation: models.ConfirmNo, Intent: models.IntentConfirmation},
			"90 minutes":      {DurationMinutes: intPtr(90), Intent: models.IntentDuration},
			"10 minutes":      {DurationMinutes: intPtr(10), Intent: models.IntentDuration},
			"9 hours":         {DurationMinutes: intPtr(540), Intent: models.IntentDuration},
			"45 minutes":      {DurationMinutes: intPtr(45), Intent: models.IntentDuration},
			"yesterday":       {DatePreference: "yesterday", Intent: models.IntentDate},
			"saturday":        {DatePreference: "saturday", Intent: models.IntentDate},
			"someday":         {DatePreference: "someday", Intent: models.IntentDate},
			"book an hour tomorrow morning": {
				DurationMinutes: intPtr(60),
				DatePreference:  "tomorrow",
				TimePreference:  "morning",
				Intent:          models.IntentDuration,
			},
		},
		dates: map[string]time.Time{
			"tomorrow":  day(2026, 3, 3),
			"yesterday": day(2026, 3, 1),
			"saturday":  day(2026, 3, 7),
		},
	}
}

func newTestAgent(t *testing.T, ext *fakeExtractor, cal *fakeCalendar) *DefaultAgent {
	t.Helper()
	a := NewAgent(AgentOptions{
		Extractor:  ext,
		Calendar:   cal,
		SessionTTL: time.Hour,
		Location:   testZone,
	})
	a.now = func() time.Time { return fixedNow }
	t.Cleanup(a.Close)
	return a
}

func turn(t *testing.T, a *DefaultAgent, sid, msg string) *models.ChatResponse {
	t.Helper()
	resp := a.ProcessTurn(context.Background(), sid, msg)
	if resp.SessionID == "" {
		t.Fatal("response lost the session id")
	}
	return resp
}

func wantStage(t *testing.T, resp *models.ChatResponse, stage models.Stage) {
	t.Helper()
	if resp.Stage != stage {
		t.Fatalf("stage = %s, want %s (reply: %q)", resp.Stage, stage, resp.Response)
	}
}

func wantContains(t *testing.T, resp *models.ChatResponse, substr string) {
	t.Helper()
	if !strings.Contains(resp.Response, substr) {
		t.Fatalf("reply %q does not contain %q", resp.Response, substr)
	}
}

// driveToConfirm walks a session up to the confirmation summary.
func driveToConfirm(t *testing.T, a *DefaultAgent) string {
	t.Helper()
	resp := turn(t, a, "", "hi")
	sid := resp.SessionID
	turn(t, a, sid, "about an hour")
	turn(t, a, sid, "tomorrow")
	turn(t, a, sid, "morning")
	turn(t, a, sid, "the second one")
	resp = turn(t, a, sid, "Project kickoff")
	wantStage(t, resp, models.StageConfirm)
	return sid
}

func TestHappyPathConversation(t *testing.T) {
	cal := &fakeCalendar{slots: tuesdaySlots()}
	a := newTestAgent(t, happyExtractor(), cal)

	resp := turn(t, a, "", "hi")
	sid := resp.SessionID
	wantStage(t, resp, models.StageCollectDuration)
	wantContains(t, resp, "How long")

	resp = turn(t, a, sid, "about an hour")
	wantStage(t, resp, models.StageCollectDate)
	wantContains(t, resp, "1 hour")

	resp = turn(t, a, sid, "tomorrow")
	wantStage(t, resp, models.StageCollectTime)
	wantContains(t, resp, "Tuesday, March 3")

	resp = turn(t, a, sid, "morning")
	wantStage(t, resp, models.StagePresentSlots)
	wantContains(t, resp, "1. 9:00 AM - 10:00 AM")
	wantContains(t, resp, "3. 11:00 AM - 12:00 PM")
	if cal.findCalls != 1 {
		t.Fatalf("findCalls = %d, want 1", cal.findCalls)
	}

	resp = turn(t, a, sid, "the second one")
	wantStage(t, resp, models.StageCollectTitle)
	wantContains(t, resp, "10:00 AM - 11:00 AM")

	resp = turn(t, a, sid, "Project kickoff")
	wantStage(t, resp, models.StageConfirm)
	wantContains(t, resp, "Project kickoff")
	if resp.Done {
		t.Fatal("conversation marked done before booking")
	}

	resp = turn(t, a, sid, "yes")
	wantStage(t, resp, models.StageBooked)
	wantContains(t, resp, "evt-123")
	if !resp.Done || !resp.Success {
		t.Fatalf("done=%v success=%v, want both true", resp.Done, resp.Success)
	}
	if len(cal.booked) != 1 || cal.booked[0] != "Project kickoff" {
		t.Fatalf("booked = %v, want one booking titled Project kickoff", cal.booked)
	}
}

func TestOpportunisticFillSkipsQuestions(t *testing.T) {
	cal := &fakeCalendar{slots: tuesdaySlots()}
	a := newTestAgent(t, happyExtractor(), cal)

	resp := turn(t, a, "", "book an hour tomorrow morning")
	wantStage(t, resp, models.StagePresentSlots)
	if cal.findCalls != 1 {
		t.Fatalf("findCalls = %d, want 1", cal.findCalls)
	}
	wantContains(t, resp, "Got it: 1 hour, Tuesday, March 3, the morning")
}

func TestDurationBoundsRejected(t *testing.T) {
	cal := &fakeCalendar{slots: tuesdaySlots()}
	a := newTestAgent(t, happyExtractor(), cal)

	sid := turn(t, a, "", "hi").SessionID

	resp := turn(t, a, sid, "10 minutes")
	wantStage(t, resp, models.StageCollectDuration)
	wantContains(t, resp, "at least 15 minutes")

	resp = turn(t, a, sid, "9 hours")
	wantStage(t, resp, models.StageCollectDuration)
	wantContains(t, resp, "at most 8 hours")

	resp = turn(t, a, sid, "45 minutes")
	wantStage(t, resp, models.StageCollectDate)
	wantContains(t, resp, "45 minutes")
}

func TestDateValidation(t *testing.T) {
	cal := &fakeCalendar{slots: tuesdaySlots()}
	a := newTestAgent(t, happyExtractor(), cal)

	sid := turn(t, a, "", "hi").SessionID
	turn(t, a, sid, "about an hour")

	resp := turn(t, a, sid, "yesterday")
	wantStage(t, resp, models.StageCollectDate)
	wantContains(t, resp, "already passed")

	resp = turn(t, a, sid, "saturday")
	wantStage(t, resp, models.StageCollectDate)
	wantContains(t, resp, "weekdays")

	resp = turn(t, a, sid, "someday")
	wantStage(t, resp, models.StageCollectDate)
	wantContains(t, resp, "couldn't work out a date")

	resp = turn(t, a, sid, "tomorrow")
	wantStage(t, resp, models.StageCollectTime)
}

func TestFieldChangeInvalidatesCandidates(t *testing.T) {
	cal := &fakeCalendar{slots: tuesdaySlots()}
	a := newTestAgent(t, happyExtractor(), cal)
	sid := driveToConfirm(t, a)

	resp := turn(t, a, sid, "90 minutes")
	wantStage(t, resp, models.StagePresentSlots)
	wantContains(t, resp, "1 hour 30 minutes")
	if cal.findCalls != 2 {
		t.Fatalf("findCalls = %d, want a second search after the change", cal.findCalls)
	}

	// The old selection is gone; picking again lands on the new list and the
	// kept title goes straight to confirmation.
	resp = turn(t, a, sid, "1")
	wantStage(t, resp, models.StageConfirm)
	wantContains(t, resp, "Project kickoff")
	wantContains(t, resp, "1 hour 30 minutes")
}

func TestConfirmNoUnwindsToTimePreference(t *testing.T) {
	cal := &fakeCalendar{slots: tuesdaySlots()}
	a := newTestAgent(t, happyExtractor(), cal)
	sid := driveToConfirm(t, a)

	resp := turn(t, a, sid, "no")
	wantStage(t, resp, models.StageCollectTime)
	wantContains(t, resp, "won't book it")
	if len(cal.booked) != 0 {
		t.Fatalf("booked = %v, want none", cal.booked)
	}

	resp = turn(t, a, sid, "evening")
	wantStage(t, resp, models.StagePresentSlots)
	if cal.findCalls != 2 {
		t.Fatalf("findCalls = %d, want re-search after new preference", cal.findCalls)
	}
}

func TestInvalidSlotNumberReprompts(t *testing.T) {
	cal := &fakeCalendar{slots: tuesdaySlots()}
	a := newTestAgent(t, happyExtractor(), cal)

	sid := turn(t, a, "", "book an hour tomorrow morning").SessionID

	resp := turn(t, a, sid, "option 6")
	wantStage(t, resp, models.StagePresentSlots)
	wantContains(t, resp, "1 to 3")
	wantContains(t, resp, "2. 10:00 AM - 11:00 AM")

	resp = turn(t, a, sid, "the second one")
	wantStage(t, resp, models.StageCollectTitle)
}

func TestRestartKeywords(t *testing.T) {
	for _, kw := range []string{"start over", "restart", "reset", "new meeting", "begin again"} {
		t.Run(kw, func(t *testing.T) {
			cal := &fakeCalendar{slots: tuesdaySlots()}
			a := newTestAgent(t, happyExtractor(), cal)

			sid := turn(t, a, "", "book an hour tomorrow morning").SessionID
			resp := turn(t, a, sid, "let's "+kw+" please")
			wantStage(t, resp, models.StageGreeting)
			wantContains(t, resp, "starting fresh")

			// Everything is forgotten: the next turn is asked for a date,
			// proving only the new duration survives.
			resp = turn(t, a, sid, "about an hour")
			wantStage(t, resp, models.StageCollectDate)
		})
	}
}

func TestTerminalStageRepliesAndRestart(t *testing.T) {
	cal := &fakeCalendar{slots: tuesdaySlots()}
	a := newTestAgent(t, happyExtractor(), cal)
	sid := driveToConfirm(t, a)
	turn(t, a, sid, "yes")

	resp := turn(t, a, sid, "tomorrow")
	wantStage(t, resp, models.StageBooked)
	wantContains(t, resp, "already booked")
	if !resp.Done {
		t.Fatal("terminal stage not reported as done")
	}
	if len(cal.booked) != 1 {
		t.Fatalf("booked = %v, want exactly one booking", cal.booked)
	}

	resp = turn(t, a, sid, "start over")
	wantStage(t, resp, models.StageGreeting)
}

func TestBookingFailureIsTerminal(t *testing.T) {
	cal := &fakeCalendar{slots: tuesdaySlots(), bookErr: errors.New("api 500")}
	a := newTestAgent(t, happyExtractor(), cal)
	sid := driveToConfirm(t, a)

	resp := turn(t, a, sid, "yes")
	wantStage(t, resp, models.StageFailed)
	wantContains(t, resp, "nothing was booked")
	if !resp.Done || resp.Success {
		t.Fatalf("done=%v success=%v, want done and not success", resp.Done, resp.Success)
	}

	resp = turn(t, a, sid, "yes")
	wantStage(t, resp, models.StageFailed)
	wantContains(t, resp, "start over")

	resp = turn(t, a, sid, "start over")
	wantStage(t, resp, models.StageGreeting)
}

func TestExtractorOutageApologizesAndRecovers(t *testing.T) {
	ext := happyExtractor()
	cal := &fakeCalendar{slots: tuesdaySlots()}
	a := newTestAgent(t, ext, cal)

	sid := turn(t, a, "", "hi").SessionID

	ext.err = errors.New("gemini down")
	resp := turn(t, a, sid, "about an hour")
	wantStage(t, resp, models.StageCollectDuration)
	wantContains(t, resp, "Sorry")

	ext.err = nil
	resp = turn(t, a, sid, "about an hour")
	wantStage(t, resp, models.StageCollectDate)
}

func TestSearchOutageApologizesAndRetries(t *testing.T) {
	cal := &fakeCalendar{slots: tuesdaySlots(), findErr: errors.New("calendar down")}
	a := newTestAgent(t, happyExtractor(), cal)

	resp := turn(t, a, "", "book an hour tomorrow morning")
	sid := resp.SessionID
	wantStage(t, resp, models.StageSearching)
	wantContains(t, resp, "Sorry")

	cal.findErr = nil
	resp = turn(t, a, sid, "ok")
	wantStage(t, resp, models.StagePresentSlots)
	if cal.findCalls != 2 {
		t.Fatalf("findCalls = %d, want retry on the next turn", cal.findCalls)
	}
}

func TestEmptySearchRelaxesPreferenceFirst(t *testing.T) {
	cal := &fakeCalendar{}
	a := newTestAgent(t, happyExtractor(), cal)

	resp := turn(t, a, "", "book an hour tomorrow morning")
	sid := resp.SessionID
	wantStage(t, resp, models.StageCollectTime)
	wantContains(t, resp, "no free slots in the morning")

	cal.slots = tuesdaySlots()
	resp = turn(t, a, sid, "evening")
	wantStage(t, resp, models.StagePresentSlots)
}

func TestEmptySearchOnAnyAsksForNewDate(t *testing.T) {
	ext := happyExtractor()
	ext.entities["any"] = models.ExtractedEntities{TimePreference: "any", Intent: models.IntentTime}
	cal := &fakeCalendar{}
	a := newTestAgent(t, ext, cal)

	sid := turn(t, a, "", "hi").SessionID
	turn(t, a, sid, "about an hour")
	turn(t, a, sid, "tomorrow")

	resp := turn(t, a, sid, "any")
	wantStage(t, resp, models.StageCollectDate)
	wantContains(t, resp, "fully booked")
}

func TestTitleSkipUsesDefault(t *testing.T) {
	cal := &fakeCalendar{slots: tuesdaySlots()}
	a := newTestAgent(t, happyExtractor(), cal)

	sid := turn(t, a, "", "book an hour tomorrow morning").SessionID
	turn(t, a, sid, "the second one")

	resp := turn(t, a, sid, "skip")
	wantStage(t, resp, models.StageConfirm)
	wantContains(t, resp, DefaultMeetingTitle)
}

func TestRawMessageBecomesTitle(t *testing.T) {
	cal := &fakeCalendar{slots: tuesdaySlots()}
	a := newTestAgent(t, happyExtractor(), cal)

	sid := turn(t, a, "", "book an hour tomorrow morning").SessionID
	turn(t, a, sid, "the second one")

	// The extractor knows nothing about this phrase, so the raw message is
	// taken as the title.
	resp := turn(t, a, sid, "Quarterly numbers review")
	wantStage(t, resp, models.StageConfirm)
	wantContains(t, resp, "Quarterly numbers review")
}

func TestConcurrentTurnsAreSerialized(t *testing.T) {
	cal := &fakeCalendar{slots: tuesdaySlots()}
	a := newTestAgent(t, happyExtractor(), cal)

	sid := turn(t, a, "", "hi").SessionID

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			a.ProcessTurn(context.Background(), sid, fmt.Sprintf("message %d", n))
		}(i)
	}
	wg.Wait()

	if got := a.ActiveSessions(); got != 1 {
		t.Fatalf("ActiveSessions = %d, want 1", got)
	}

	entry := a.sessions.acquire(sid, fixedNow)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	// 1 greeting exchange plus 10 concurrent exchanges, 2 turns each.
	if got := len(entry.sess.History); got != 22 {
		t.Fatalf("history length = %d, want 22", got)
	}
}

func TestResetEndpointBehaviour(t *testing.T) {
	cal := &fakeCalendar{slots: tuesdaySlots()}
	a := newTestAgent(t, happyExtractor(), cal)
	sid := driveToConfirm(t, a)

	resp := a.Reset(sid)
	wantStage(t, resp, models.StageGreeting)

	resp = turn(t, a, sid, "about an hour")
	wantStage(t, resp, models.StageCollectDate)
}
