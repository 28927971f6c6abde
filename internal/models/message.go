package models

// Sender identifies who authored a transcript message
type Sender string

const (
	SenderUser Sender = "USER"
	SenderAI   Sender = "AI"
)

// Message is one entry of an interview transcript.
// Transcripts are append-only; insertion order is display order.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// UserMessage creates a message authored by the candidate
func UserMessage(text string) Message {
	return Message{Sender: SenderUser, Text: text}
}

// AIMessage creates a message authored by the interviewer
func AIMessage(text string) Message {
	return Message{Sender: SenderAI, Text: text}
}
