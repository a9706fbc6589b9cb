package models

// Intents the extractor may attach to an utterance.
const (
	IntentGreeting      = "greeting"
	IntentDuration      = "duration"
	IntentDate          = "date"
	IntentTime          = "time"
	IntentSlotSelection = "slot_selection"
	IntentTitle         = "title"
	IntentConfirmation  = "confirmation"
	IntentRestart       = "restart"
	IntentUnclear       = "unclear"
)

// Confirmation values the extractor may return.
const (
	ConfirmYes     = "yes"
	ConfirmNo      = "no"
	ConfirmUnclear = "unclear"
)

// ExtractedEntities is the sparse, advisory output of the language model for
// one utterance. Every field is untrusted until the agent validates it.
type ExtractedEntities struct {
	DurationMinutes *int   `json:"duration_minutes"`
	DatePreference  string `json:"date_preference"`
	TimePreference  string `json:"time_preference"`
	MeetingTitle    string `json:"meeting_title"`
	Intent          string `json:"intent"`
	SlotNumber      *int   `json:"slot_number"`
	Confirmation    string `json:"confirmation"`
}

// Empty reports whether extraction produced nothing usable.
func (e ExtractedEntities) Empty() bool {
	return e.DurationMinutes == nil &&
		e.DatePreference == "" &&
		e.TimePreference == "" &&
		e.MeetingTitle == "" &&
		e.SlotNumber == nil &&
		e.Confirmation == "" &&
		(e.Intent == "" || e.Intent == IntentUnclear)
}

// ChatRequest is the payload for a text turn.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message" binding:"required"`
}

// ChatResponse is the reply for a text turn. Done is true once the session
// has reached a terminal stage (booked or failed).
type ChatResponse struct {
	SessionID string `json:"sessionId"`
	Response  string `json:"response"`
	Stage     Stage  `json:"stage"`
	Done      bool   `json:"done"`
	Success   bool   `json:"success"`
}

// VoiceChatResponse is the reply for a voice turn. AudioData carries the
// synthesized mp3 as hex; it is empty when synthesis was unavailable and the
// caller should fall back to the text response.
type VoiceChatResponse struct {
	SessionID  string `json:"sessionId"`
	Transcript string `json:"transcript"`
	Response   string `json:"response"`
	AudioData  string `json:"audio_data,omitempty"`
	Stage      Stage  `json:"stage"`
	Done       bool   `json:"done"`
	Success    bool   `json:"success"`
}

// ResetRequest clears a session back to its initial stage.
type ResetRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}
