package models

import "time"

// BookingRecord is the archived trace of a committed calendar event. The
// calendar remains the source of truth; records exist for history and audit.
type BookingRecord struct {
	ID              string    `bson:"id" json:"id"`
	EventID         string    `bson:"eventId" json:"eventId"`
	Title           string    `bson:"title" json:"title"`
	Start           time.Time `bson:"start" json:"start"`
	End             time.Time `bson:"end" json:"end"`
	DurationMinutes int       `bson:"durationMinutes" json:"durationMinutes"`
	SessionID       string    `bson:"sessionId" json:"sessionId"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}

// ReminderPayload is the task body queued for a meeting reminder.
type ReminderPayload struct {
	BookingID string `json:"bookingId"`
	EventID   string `json:"eventId"`
	Title     string `json:"title"`
	Start     string `json:"start"` // RFC3339
	FireDate  string `json:"fireDate"`
}
