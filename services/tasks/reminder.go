package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"slotify/models"
)

const TypeMeetingReminder = "reminder:meeting"

func NewMeetingReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeMeetingReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// ReminderScheduler queues a heads-up ahead of a booked meeting.
type ReminderScheduler interface {
	ScheduleMeetingReminder(rec models.BookingRecord) error
}

type AsynqReminderScheduler struct {
	client *asynq.Client
	lead   time.Duration
}

func NewAsynqReminderScheduler(client *asynq.Client, lead time.Duration) *AsynqReminderScheduler {
	return &AsynqReminderScheduler{client: client, lead: lead}
}

// ScheduleMeetingReminder enqueues a reminder to fire lead time before the
// meeting starts. Meetings starting inside the lead window fire immediately.
func (s *AsynqReminderScheduler) ScheduleMeetingReminder(rec models.BookingRecord) error {
	if s.client == nil {
		return fmt.Errorf("asynq client is nil, reminder cannot be enqueued")
	}

	fireAt := rec.Start.Add(-s.lead)
	if now := time.Now(); fireAt.Before(now) {
		fireAt = now
	}

	payload := models.ReminderPayload{
		BookingID: rec.ID,
		EventID:   rec.EventID,
		Title:     rec.Title,
		Start:     rec.Start.Format(time.RFC3339),
		FireDate:  fireAt.Format(time.RFC3339),
	}
	task, opts, err := NewMeetingReminderTask(payload, fireAt)
	if err != nil {
		return err
	}
	if _, err := s.client.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("enqueue reminder task: %w", err)
	}
	return nil
}
