// Package speech abstracts text-to-speech and speech-to-text for the interview chat.
package speech

// Adapter speaks AI replies and streams the candidate's dictation.
// Listening and speaking are exclusive: starting to listen cancels speech.
type Adapter interface {
	// StartListening begins dictation. onTranscript receives the whole
	// transcript so far each time it changes.
	StartListening(onTranscript func(string)) error
	StopListening()
	Listening() bool
	// Speak cancels any utterance in flight and reads text aloud
	Speak(text string)
	Cancel()
}

// Nop is an adapter for environments without audio
type Nop struct{}

func (Nop) StartListening(func(string)) error { return ErrUnavailable }
func (Nop) StopListening() {}
func (Nop) Listening() bool { return false }
func (Nop) Speak(string) {}
func (Nop) Cancel() {}
