package models

import "time"

// Stage is the current position in the required-field collection sequence.
type Stage string

const (
	StageGreeting        Stage = "greeting"
	StageCollectDuration Stage = "collect_duration"
	StageCollectDate     Stage = "collect_date"
	StageCollectTime     Stage = "collect_time_preference"
	StageSearching       Stage = "searching"
	StagePresentSlots    Stage = "present_slots"
	StageCollectTitle    Stage = "collect_title"
	StageConfirm         Stage = "confirm"
	StageBooked          Stage = "booked"
	StageFailed          Stage = "failed"
)

// Terminal reports whether the conversation has reached an end state.
func (s Stage) Terminal() bool {
	return s == StageBooked || s == StageFailed
}

// Speaker roles for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single utterance in the conversation history.
type Turn struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// CollectedFields is the sparse record of scheduling details gathered so far.
// Zero values mean "not collected yet"; Title is a pointer because an empty
// title is a valid collected value (the user skipped and took the default).
type CollectedFields struct {
	DurationMinutes int       `json:"durationMinutes,omitempty"`
	Date            time.Time `json:"date,omitzero"` // midnight in the reference zone
	DateText        string    `json:"dateText,omitempty"`
	TimePreference  string    `json:"timePreference,omitempty"`
	Title           *string   `json:"title,omitempty"`
}

// Session holds the full mutable state of one scheduling conversation.
type Session struct {
	ID        string          `json:"sessionId"`
	Stage     Stage           `json:"stage"`
	Collected CollectedFields `json:"collected"`

	// CandidateSlots were generated for the (date, duration, preference)
	// fingerprinted by SearchKey. A mismatch means the list is stale and must
	// be regenerated before a selection is accepted.
	CandidateSlots []Slot `json:"candidateSlots,omitempty"`
	SelectedSlot   *Slot  `json:"selectedSlot,omitempty"`
	SearchKey      string `json:"searchKey,omitempty"`

	History []Turn `json:"history"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AddTurn appends an utterance to the conversation history.
func (s *Session) AddTurn(role, text string, at time.Time) {
	s.History = append(s.History, Turn{Role: role, Text: text, At: at})
}

// RecentHistory returns up to limit most recent turns, oldest first.
func (s *Session) RecentHistory(limit int) []Turn {
	if limit <= 0 || len(s.History) <= limit {
		return s.History
	}
	return s.History[len(s.History)-limit:]
}
