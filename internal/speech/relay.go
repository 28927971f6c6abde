package speech

import (
	"log/slog"
	"sync"
)

// Relay command types sent to the browser
const (
	CommandSpeak       = "speak"
	CommandCancel      = "cancel_speech"
	CommandListenStart = "listen_start"
	CommandListenStop  = "listen_stop"
)

// RelayCommand asks the browser to drive its speech APIs
type RelayCommand struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Relay forwards speech work to a connected browser, which owns the
// platform synthesiser and recogniser. Transcripts flow back via Transcript.
type Relay struct {
	send func(RelayCommand) error

	mu           sync.Mutex
	listening    bool
	onTranscript func(string)
}

// NewRelay creates a relay writing commands with send
func NewRelay(send func(RelayCommand) error) *Relay {
	return &Relay{send: send}
}

func (r *Relay) emit(cmd RelayCommand) {
	if err := r.send(cmd); err != nil {
		slog.Warn("failed to relay speech command", "type", cmd.Type, "error", err)
	}
}

func (r *Relay) StartListening(onTranscript func(string)) error {
	r.emit(RelayCommand{Type: CommandCancel})

	r.mu.Lock()
	r.listening = true
	r.onTranscript = onTranscript
	r.mu.Unlock()

	onTranscript("")
	r.emit(RelayCommand{Type: CommandListenStart})
	return nil
}

func (r *Relay) StopListening() {
	r.mu.Lock()
	was := r.listening
	r.listening = false
	r.mu.Unlock()

	if was {
		r.emit(RelayCommand{Type: CommandListenStop})
	}
}

func (r *Relay) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listening
}

func (r *Relay) Speak(text string) {
	r.emit(RelayCommand{Type: CommandSpeak, Text: text})
}

func (r *Relay) Cancel() {
	r.emit(RelayCommand{Type: CommandCancel})
}

// Transcript delivers recognised text from the browser.
// It is ignored unless listening.
func (r *Relay) Transcript(text string) {
	r.mu.Lock()
	fn := r.onTranscript
	listening := r.listening
	r.mu.Unlock()

	if listening && fn != nil {
		fn(text)
	}
}

// Ended records that the browser recogniser stopped by itself
func (r *Relay) Ended() {
	r.mu.Lock()
	r.listening = false
	r.mu.Unlock()
}
