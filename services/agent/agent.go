package agent

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"slotify/models"
	"slotify/services/availability"
	"slotify/utils"
)

// ProcessTurn runs one user message through the conversation and returns
// the assistant's reply together with the session's new stage. Turns for
// the same session are serialized; concurrent requests queue up and each
// sees the previous turn's writes.
func (a *DefaultAgent) ProcessTurn(ctx context.Context, sessionID, message string) *models.ChatResponse {
	now := a.now().In(a.loc)
	entry := a.sessions.acquire(sessionID, now)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	sess := entry.sess
	reply := a.handleTurn(ctx, sess, strings.TrimSpace(message), now)
	sess.UpdatedAt = now

	return &models.ChatResponse{
		SessionID: sess.ID,
		Response:  reply,
		Stage:     sess.Stage,
		Done:      sess.Stage.Terminal(),
		Success:   sess.Stage == models.StageBooked,
	}
}

// Reset discards the session's progress and starts the questions over.
func (a *DefaultAgent) Reset(sessionID string) *models.ChatResponse {
	now := a.now().In(a.loc)
	entry := a.sessions.acquire(sessionID, now)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	sess := entry.sess
	resetState(sess)
	reply := restartReply()
	sess.AddTurn(models.RoleAssistant, reply, now)
	sess.UpdatedAt = now

	return &models.ChatResponse{
		SessionID: sess.ID,
		Response:  reply,
		Stage:     sess.Stage,
	}
}

func resetState(sess *models.Session) {
	sess.Stage = models.StageGreeting
	sess.Collected = models.CollectedFields{}
	sess.CandidateSlots = nil
	sess.SelectedSlot = nil
	sess.SearchKey = ""
	sess.History = nil
}

func (a *DefaultAgent) handleTurn(ctx context.Context, sess *models.Session, msg string, now time.Time) string {
	logger := utils.GetLogger()

	// Restart keywords win over everything, including terminal stages.
	if msg != "" && wantsRestart(msg) {
		resetState(sess)
		sess.AddTurn(models.RoleUser, msg, now)
		reply := restartReply()
		sess.AddTurn(models.RoleAssistant, reply, now)
		return reply
	}

	sess.AddTurn(models.RoleUser, msg, now)

	if sess.Stage.Terminal() {
		reply := terminalReply(sess.Stage)
		sess.AddTurn(models.RoleAssistant, reply, now)
		return reply
	}

	ent, err := a.Extractor.ExtractEntities(ctx, sess, msg, now)
	if err != nil {
		logger.Warn("entity extraction unavailable",
			zap.String("sessionId", sess.ID), zap.Error(err))
		reply := extractionApology()
		sess.AddTurn(models.RoleAssistant, reply, now)
		return reply
	}

	if ent.Intent == models.IntentRestart {
		resetState(sess)
		sess.AddTurn(models.RoleUser, msg, now)
		reply := restartReply()
		sess.AddTurn(models.RoleAssistant, reply, now)
		return reply
	}

	merge, err := a.applyEntities(ctx, sess, ent, now)
	if err != nil {
		logger.Warn("date resolution unavailable",
			zap.String("sessionId", sess.ID), zap.Error(err))
		reply := extractionApology()
		sess.AddTurn(models.RoleAssistant, reply, now)
		return reply
	}

	reply := a.advance(ctx, sess, msg, ent, merge)
	sess.AddTurn(models.RoleAssistant, reply, now)
	return reply
}

// advance moves the conversation to the first requirement that is still
// unmet, recomputed from session state every turn. The stage is derived,
// never scripted: a turn that filled three fields skips three questions,
// and a turn that invalidated the slot list drops back to searching.
func (a *DefaultAgent) advance(ctx context.Context, sess *models.Session, msg string, ent models.ExtractedEntities, merge mergeResult) string {
	c := &sess.Collected

	if sess.Stage == models.StageGreeting && !merge.touched() {
		sess.Stage = models.StageCollectDuration
		return greetingReply()
	}

	prefix := ackPrefix(merge)

	if c.DurationMinutes == 0 {
		sess.Stage = models.StageCollectDuration
		return prefix + askDuration()
	}
	if c.Date.IsZero() {
		sess.Stage = models.StageCollectDate
		return prefix + askDate()
	}
	if c.TimePreference == "" {
		sess.Stage = models.StageCollectTime
		return prefix + askTimePreference()
	}

	if !a.candidatesFresh(sess) {
		sess.Stage = models.StageSearching
		slots, err := a.Calendar.FindSlots(ctx, c.Date, c.DurationMinutes, c.TimePreference)
		if err != nil {
			utils.GetLogger().Warn("slot search failed",
				zap.String("sessionId", sess.ID), zap.Error(err))
			return prefix + searchApology()
		}
		if len(slots) == 0 {
			return prefix + a.relax(sess)
		}
		sess.CandidateSlots = slots
		sess.SelectedSlot = nil
		sess.SearchKey = searchKey(*c)
		sess.Stage = models.StagePresentSlots
		return prefix + presentSlots(c.Date, slots)
	}

	if sess.SelectedSlot == nil {
		if ent.SlotNumber == nil {
			sess.Stage = models.StagePresentSlots
			return prefix + chooseNudge(len(sess.CandidateSlots))
		}
		n := *ent.SlotNumber
		if n < 1 || n > len(sess.CandidateSlots) {
			sess.Stage = models.StagePresentSlots
			return prefix + invalidChoice(len(sess.CandidateSlots), c.Date, sess.CandidateSlots)
		}
		slot := sess.CandidateSlots[n-1]
		sess.SelectedSlot = &slot
	}

	if c.Title == nil {
		if sess.Stage == models.StageCollectTitle && titleFromRawEligible(msg, ent, merge) {
			t := cleanTitle(msg)
			c.Title = &t
		} else {
			sess.Stage = models.StageCollectTitle
			return prefix + askTitle(*sess.SelectedSlot)
		}
	}

	if sess.Stage != models.StageConfirm {
		sess.Stage = models.StageConfirm
		return prefix + confirmSummary(*c, *sess.SelectedSlot)
	}

	switch ent.Confirmation {
	case models.ConfirmYes:
		return prefix + a.commit(ctx, sess)
	case models.ConfirmNo:
		c.TimePreference = ""
		sess.CandidateSlots = nil
		sess.SelectedSlot = nil
		sess.SearchKey = ""
		sess.Stage = models.StageCollectTime
		return prefix + declineReply()
	default:
		return prefix + confirmNudge(*c, *sess.SelectedSlot)
	}
}

// relax unwinds after an empty search. A specific window is cleared first
// so the user can widen it; when even "any" found nothing the whole day is
// given up and a new date is requested.
func (a *DefaultAgent) relax(sess *models.Session) string {
	c := &sess.Collected
	sess.CandidateSlots = nil
	sess.SelectedSlot = nil
	sess.SearchKey = ""

	if c.TimePreference != availability.PreferenceAny {
		pref := c.TimePreference
		c.TimePreference = ""
		sess.Stage = models.StageCollectTime
		return noSlotsInWindow(pref, c.Date)
	}

	date := c.Date
	c.Date = time.Time{}
	c.DateText = ""
	c.TimePreference = ""
	sess.Stage = models.StageCollectDate
	return dayFullyBooked(date)
}

// commit writes the calendar event. It runs under the session lock, so a
// session books at most once; afterwards the stage is terminal and repeat
// confirmations never reach here.
func (a *DefaultAgent) commit(ctx context.Context, sess *models.Session) string {
	logger := utils.GetLogger()
	c := sess.Collected
	slot := *sess.SelectedSlot

	title := DefaultMeetingTitle
	if c.Title != nil {
		title = *c.Title
	}

	eventID, err := a.Calendar.Book(ctx, slot, title, "Booked via the scheduling assistant")
	if err != nil {
		logger.Error("booking failed",
			zap.String("sessionId", sess.ID), zap.Error(err))
		sess.Stage = models.StageFailed
		return bookingFailedReply()
	}

	sess.Stage = models.StageBooked
	rec := models.BookingRecord{
		ID:              uuid.New().String(),
		EventID:         eventID,
		Title:           title,
		Start:           slot.Start,
		End:             slot.End,
		DurationMinutes: c.DurationMinutes,
		SessionID:       sess.ID,
		CreatedAt:       a.now().In(a.loc),
	}
	if a.Archive != nil {
		if err := a.Archive.Save(ctx, rec); err != nil {
			logger.Warn("booking archive save failed",
				zap.String("bookingId", rec.ID), zap.Error(err))
		}
	}
	if a.Reminders != nil {
		if err := a.Reminders.ScheduleMeetingReminder(rec); err != nil {
			logger.Warn("reminder enqueue failed",
				zap.String("bookingId", rec.ID), zap.Error(err))
		}
	}

	logger.Info("meeting booked",
		zap.String("sessionId", sess.ID),
		zap.String("eventId", eventID),
		zap.Time("start", slot.Start))
	return bookedReply(title, slot, eventID)
}

func (a *DefaultAgent) candidatesFresh(sess *models.Session) bool {
	return len(sess.CandidateSlots) > 0 && sess.SearchKey == searchKey(sess.Collected)
}

// titleFromRawEligible reports whether the raw message can serve as the
// title: nothing in it was consumed as a field value, a slot choice or a
// confirmation answer.
func titleFromRawEligible(msg string, ent models.ExtractedEntities, merge mergeResult) bool {
	return msg != "" && !merge.touched() && ent.SlotNumber == nil && ent.Confirmation == ""
}
