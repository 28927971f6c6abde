package chat

import "github.com/terra-clan/interview-console/internal/models"

// EventType names a conversation state change
type EventType string

const (
	EventMessage     EventType = "message"
	EventInput       EventType = "input"
	EventComposing   EventType = "composing"
	EventSubmitting  EventType = "submitting"
	EventListening   EventType = "listening"
	EventChallenge   EventType = "challenge"
	EventPanelClosed EventType = "panel_closed"
	EventComplete    EventType = "complete"
)

// Event describes one state change. Only the fields relevant to Type are set:
// Message for message, Text for input and complete (the feedback), Busy for
// the flag events and Challenge with ChallengeID for challenge.
type Event struct {
	Type        EventType
	Message     *models.Message
	Text        string
	Busy        bool
	Challenge   *models.CodingChallenge
	ChallengeID string
}
