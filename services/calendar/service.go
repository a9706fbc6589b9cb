package calendar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"slotify/models"
	"slotify/services/availability"
	"slotify/utils"
)

// Service is the scheduling view of the shared calendar: find free slots on
// a day, commit a booking, report what is busy.
type Service interface {
	FindSlots(ctx context.Context, date time.Time, durationMinutes int, preference string) ([]models.Slot, error)
	Book(ctx context.Context, slot models.Slot, title, description string) (string, error)
}

type GoogleCalendarService struct {
	api         *gcal.Service
	calendarID  string
	loc         *time.Location
	policy      availability.Policy
	cache       *BusyCache
	leadMinutes int

	// Now is swappable in tests.
	Now func() time.Time
}

func NewGoogleCalendarService(ctx context.Context, credentialsFile, calendarID string, loc *time.Location, policy availability.Policy, cache *BusyCache, leadMinutes int) (*GoogleCalendarService, error) {
	api, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}
	return &GoogleCalendarService{
		api:         api,
		calendarID:  calendarID,
		loc:         loc,
		policy:      policy,
		cache:       cache,
		leadMinutes: leadMinutes,
		Now:         time.Now,
	}, nil
}

// FindSlots generates candidate slots for the date from the configured
// policy, honouring whatever is already on the calendar.
func (s *GoogleCalendarService) FindSlots(ctx context.Context, date time.Time, durationMinutes int, preference string) ([]models.Slot, error) {
	window, ok := availability.WindowFor(preference)
	if !ok {
		return nil, fmt.Errorf("unknown time preference %q", preference)
	}

	busy, err := s.busyIntervals(ctx, date)
	if err != nil {
		return nil, err
	}

	slots := s.policy.Generate(date, durationMinutes, window, busy, s.Now().In(s.loc))
	utils.GetLogger().Debug("slot search finished",
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("durationMin", durationMinutes),
		zap.String("preference", preference),
		zap.Int("busyIntervals", len(busy)),
		zap.Int("slots", len(slots)))
	return slots, nil
}

// busyIntervals lists the day's timed events, consulting the cache first.
// All-day events carry no clock time and never block a slot.
func (s *GoogleCalendarService) busyIntervals(ctx context.Context, date time.Time) ([]models.BusyInterval, error) {
	dayStart := date
	dayEnd := date.AddDate(0, 0, 1)

	if busy, ok := s.cache.Get(ctx, s.calendarID, dayStart, dayEnd); ok {
		return busy, nil
	}

	events, err := s.api.Events.List(s.calendarID).
		TimeMin(dayStart.Format(time.RFC3339)).
		TimeMax(dayEnd.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}

	var busy []models.BusyInterval
	for _, item := range events.Items {
		if item.Start == nil || item.End == nil || item.Start.DateTime == "" || item.End.DateTime == "" {
			continue
		}
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			continue
		}
		busy = append(busy, models.BusyInterval{
			Start:   start.In(s.loc),
			End:     end.In(s.loc),
			Summary: item.Summary,
			EventID: item.Id,
		})
	}

	s.cache.Set(ctx, s.calendarID, dayStart, dayEnd, busy)
	return busy, nil
}

// Book writes the event and returns its calendar ID. The day's cached busy
// set is dropped so the slot cannot be offered again from a stale read.
func (s *GoogleCalendarService) Book(ctx context.Context, slot models.Slot, title, description string) (string, error) {
	event := &gcal.Event{
		Summary:     title,
		Description: description,
		Start: &gcal.EventDateTime{
			DateTime: slot.Start.Format(time.RFC3339),
			TimeZone: s.loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: slot.End.Format(time.RFC3339),
			TimeZone: s.loc.String(),
		},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: 60},
				{Method: "popup", Minutes: int64(s.leadMinutes)},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := s.api.Events.Insert(s.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert calendar event: %w", err)
	}

	day := time.Date(slot.Start.Year(), slot.Start.Month(), slot.Start.Day(), 0, 0, 0, 0, s.loc)
	s.cache.Invalidate(ctx, s.calendarID, day, day.AddDate(0, 0, 1))

	utils.GetLogger().Info("calendar event created",
		zap.String("eventId", created.Id),
		zap.String("title", title),
		zap.Time("start", slot.Start))
	return created.Id, nil
}
