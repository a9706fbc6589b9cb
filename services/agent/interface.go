package agent

import (
	"context"
	"time"

	bookinglogRepo "slotify/database/repository/bookinglog"
	"slotify/models"
	"slotify/services/calendar"
	"slotify/services/intelligence"
	"slotify/services/tasks"
)

// Service drives the booking conversation, one user message at a time.
type Service interface {
	ProcessTurn(ctx context.Context, sessionID, message string) *models.ChatResponse
	Reset(sessionID string) *models.ChatResponse
	ActiveSessions() int
	Close()
}

// AgentOptions carries the collaborators and policy knobs for a
// DefaultAgent. Archive and Reminders may be nil; a booking then simply
// skips those side effects.
type AgentOptions struct {
	Extractor intelligence.Extractor
	Calendar  calendar.Service
	Archive   bookinglogRepo.BookingLogRepository
	Reminders tasks.ReminderScheduler

	MinDurationMinutes int
	MaxDurationMinutes int
	SessionTTL         time.Duration
	Location           *time.Location
}

type DefaultAgent struct {
	Extractor intelligence.Extractor
	Calendar  calendar.Service
	Archive   bookinglogRepo.BookingLogRepository
	Reminders tasks.ReminderScheduler

	MinDurationMinutes int
	MaxDurationMinutes int

	loc      *time.Location
	sessions *registry
	now      func() time.Time
}

func NewAgent(opts AgentOptions) *DefaultAgent {
	if opts.MinDurationMinutes <= 0 {
		opts.MinDurationMinutes = 15
	}
	if opts.MaxDurationMinutes <= 0 {
		opts.MaxDurationMinutes = 480
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	a := &DefaultAgent{
		Extractor:          opts.Extractor,
		Calendar:           opts.Calendar,
		Archive:            opts.Archive,
		Reminders:          opts.Reminders,
		MinDurationMinutes: opts.MinDurationMinutes,
		MaxDurationMinutes: opts.MaxDurationMinutes,
		loc:                opts.Location,
		sessions:           newRegistry(opts.SessionTTL),
		now:                time.Now,
	}
	go a.sessions.runJanitor(janitorInterval(opts.SessionTTL))
	return a
}

func janitorInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// ActiveSessions reports how many conversations are currently held.
func (a *DefaultAgent) ActiveSessions() int {
	return a.sessions.len()
}

// Close stops the session janitor.
func (a *DefaultAgent) Close() {
	a.sessions.stopJanitor()
}
