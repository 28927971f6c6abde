// Package chat drives one interview conversation: the transcript, replies from
// the interviewer, embedded coding challenges and the end of the interview.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/terra-clan/interview-console/internal/challenge"
	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/internal/speech"
	"github.com/terra-clan/interview-console/pkg/client"
)

// EndPrefix marks the interviewer's final reply
const EndPrefix = "INTERVIEW_ENDED:"

// Fixed transcript and completion texts
const (
	CheckingMessage     = "Checking question..."
	ChatApology         = "I'm sorry, I encountered an issue. Let's try to continue."
	SubmitApology       = "I'm sorry, there was an issue submitting your solution. Let's continue with the interview."
	ChallengeDone       = "I've completed the coding challenge."
	ResumeFallback      = "Let's continue with the interview. Please tell me about your approach to the problem."
	FeedbackUnavailable = "An error occurred while generating your feedback. Please check the dashboard later."
)

// DefaultQuestion is the active question id until a challenge names one
const DefaultQuestion int64 = 1

// Common errors
var (
	ErrNotConfirmed = errors.New("ending the interview requires confirmation")
	ErrBusy         = errors.New("a request is already in flight")
	ErrCompleted    = errors.New("interview already completed")
	ErrNoChallenge  = errors.New("no coding challenge is open")
	ErrNoSubmission = errors.New("submission is required")
)

// Backend is the part of the API client a conversation needs
type Backend interface {
	PostChatMessage(ctx context.Context, interviewID int64, message string) (string, error)
	SubmitCodingSolution(ctx context.Context, interviewID int64, req client.CodingSolutionRequest) (string, error)
	EndInterview(ctx context.Context, interviewID int64) error
	GenerateFeedback(ctx context.Context, interviewID int64) (string, error)
}

// Observer receives every state change in order of occurrence
type Observer func(Event)

// State is a point-in-time copy of a conversation
type State struct {
	InterviewID int64                   `json:"interviewId"`
	Messages    []models.Message        `json:"messages"`
	Input       string                  `json:"input"`
	Composing   bool                    `json:"composing"`
	Submitting  bool                    `json:"submitting"`
	Listening   bool                    `json:"listening"`
	Challenge   *models.CodingChallenge `json:"challenge,omitempty"`
	ChallengeID string                  `json:"challengeId,omitempty"`
	PanelOpen   bool                    `json:"panelOpen"`
	QuestionID  int64                   `json:"questionId"`
	Completed   bool                    `json:"completed"`
	Feedback    string                  `json:"feedback,omitempty"`
}

// Session is one running interview conversation. It is safe for concurrent
// use; the composing and submitting flags keep one backend call in flight.
type Session struct {
	interviewID int64
	api         Backend
	speech      speech.Adapter
	detector    *challenge.Detector
	observer    Observer

	mu          sync.Mutex
	messages    []models.Message
	input       string
	composing   bool
	submitting  bool
	challenge   *models.CodingChallenge
	challengeID string
	panelOpen   bool
	questionID  int64
	completed   bool
	feedback    string
}

// Option configures a Session
type Option func(*Session)

// WithSpeech sets the speech adapter (default speech.Nop)
func WithSpeech(a speech.Adapter) Option {
	return func(s *Session) {
		s.speech = a
	}
}

// WithObserver registers the state-change callback
func WithObserver(o Observer) Option {
	return func(s *Session) {
		s.observer = o
	}
}

// WithQuestionID sets the initially active question id
func WithQuestionID(id int64) Option {
	return func(s *Session) {
		if id > 0 {
			s.questionID = id
		}
	}
}

// WithMessages seeds the transcript, typically with the opening question
func WithMessages(msgs ...models.Message) Option {
	return func(s *Session) {
		s.messages = append(s.messages, msgs...)
	}
}

// WithDetector replaces the challenge detector
func WithDetector(d *challenge.Detector) Option {
	return func(s *Session) {
		s.detector = d
	}
}

// New creates a conversation for a backend-issued interview id
func New(interviewID int64, api Backend, opts ...Option) *Session {
	s := &Session{
		interviewID: interviewID,
		api:         api,
		speech:      speech.Nop{},
		detector:    challenge.NewDetector(),
		questionID:  DefaultQuestion,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InterviewID returns the backend interview id
func (s *Session) InterviewID() int64 {
	return s.interviewID
}

// Snapshot copies the current state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := make([]models.Message, len(s.messages))
	copy(msgs, s.messages)
	return State{
		InterviewID: s.interviewID,
		Messages:    msgs,
		Input:       s.input,
		Composing:   s.composing,
		Submitting:  s.submitting,
		Listening:   s.speech.Listening(),
		Challenge:   s.challenge,
		ChallengeID: s.challengeID,
		PanelOpen:   s.panelOpen,
		QuestionID:  s.questionID,
		Completed:   s.completed,
		Feedback:    s.feedback,
	}
}

// SetInput replaces the free-text input buffer
func (s *Session) SetInput(text string) {
	s.mutate(func() []Event {
		s.input = text
		return []Event{{Type: EventInput, Text: text}}
	})
}

// SendInput submits the current input buffer
func (s *Session) SendInput(ctx context.Context) bool {
	s.mu.Lock()
	text := s.input
	s.mu.Unlock()
	return s.Send(ctx, text)
}

// Send posts a candidate message and handles the reply. It reports false
// when the message was ignored: blank text, a call in flight or a
// finished interview.
func (s *Session) Send(ctx context.Context, text string) bool {
	accepted := false
	s.mutate(func() []Event {
		if strings.TrimSpace(text) == "" || s.composing || s.submitting || s.completed {
			return nil
		}
		accepted = true
		msg := models.UserMessage(text)
		s.messages = append(s.messages, msg)
		s.input = ""
		s.composing = true
		return []Event{
			{Type: EventMessage, Message: &msg},
			{Type: EventInput},
			{Type: EventComposing, Busy: true},
		}
	})
	if !accepted {
		return false
	}
	defer s.setComposing(false)

	s.speech.Cancel()

	reply, err := s.api.PostChatMessage(ctx, s.interviewID, text)
	if err != nil {
		slog.Error("failed to post chat message", "interview_id", s.interviewID, "error", err)
		s.appendAI(ChatApology)
		return true
	}

	if err := s.handleReply(ctx, reply); err != nil {
		slog.Error("failed to generate feedback", "interview_id", s.interviewID, "error", err)
		s.appendAI(ChatApology)
	}
	return true
}

// handleReply shows an interviewer reply. A final reply generates feedback
// and completes the interview; the returned error is a feedback failure.
func (s *Session) handleReply(ctx context.Context, reply string) error {
	if strings.HasPrefix(reply, EndPrefix) {
		s.appendAI(strings.TrimSpace(strings.TrimPrefix(reply, EndPrefix)))
		fb, err := s.api.GenerateFeedback(ctx, s.interviewID)
		if err != nil {
			return err
		}
		s.complete(fb)
		return nil
	}

	det := s.detector.Detect(reply)
	if !det.Found() {
		s.appendAI(det.Display)
		s.speech.Speak(det.Display)
		return nil
	}
	// A reply made only of the payload adds no transcript turn
	if det.Display != "" {
		s.appendAI(det.Display)
	}

	s.mutate(func() []Event {
		s.challenge = det.Challenge
		s.challengeID = det.ID
		s.panelOpen = true
		if qid, ok := det.Challenge.QuestionNumber(); ok {
			s.questionID = qid
		}
		return []Event{{Type: EventChallenge, Challenge: det.Challenge, ChallengeID: det.ID}}
	})
	slog.Info("coding challenge detected", "interview_id", s.interviewID, "challenge_id", det.ID)
	return nil
}

// EndInterview ends the interview at the candidate's request. Failures
// still complete the interview with a fallback text.
func (s *Session) EndInterview(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}

	var err error
	s.mutate(func() []Event {
		switch {
		case s.completed:
			err = ErrCompleted
			return nil
		case s.composing || s.submitting:
			err = ErrBusy
			return nil
		}
		s.composing = true
		return []Event{{Type: EventComposing, Busy: true}}
	})
	if err != nil {
		return err
	}
	defer s.setComposing(false)

	s.speech.Cancel()
	s.stopListening()

	if err := s.api.EndInterview(ctx, s.interviewID); err != nil {
		slog.Error("failed to end interview", "interview_id", s.interviewID, "error", err)
		s.complete(FeedbackUnavailable)
		return nil
	}
	fb, err := s.api.GenerateFeedback(ctx, s.interviewID)
	if err != nil {
		slog.Error("failed to generate feedback", "interview_id", s.interviewID, "error", err)
		s.complete(FeedbackUnavailable)
		return nil
	}
	s.complete(fb)
	return nil
}

// ToggleMic starts or stops dictation into the input buffer
func (s *Session) ToggleMic() error {
	if s.speech.Listening() {
		s.stopListening()
		return nil
	}
	if err := s.speech.StartListening(s.SetInput); err != nil {
		return err
	}
	s.notify(Event{Type: EventListening, Busy: true})
	return nil
}

func (s *Session) stopListening() {
	if !s.speech.Listening() {
		return
	}
	s.speech.StopListening()
	s.notify(Event{Type: EventListening, Busy: false})
}

// ClosePanel dismisses the coding panel. The challenge stays active.
func (s *Session) ClosePanel() error {
	var err error
	s.mutate(func() []Event {
		if s.submitting {
			err = ErrBusy
			return nil
		}
		if !s.panelOpen {
			return nil
		}
		s.panelOpen = false
		return []Event{{Type: EventPanelClosed}}
	})
	return err
}

// SubmitSolution reports a coding submission for the active question
func (s *Session) SubmitSolution(ctx context.Context, sub *models.CodingSubmission) error {
	if sub == nil {
		return ErrNoSubmission
	}

	var (
		err        error
		questionID int64
	)
	s.mutate(func() []Event {
		switch {
		case s.completed:
			err = ErrCompleted
			return nil
		case s.challenge == nil:
			err = ErrNoChallenge
			return nil
		case s.composing || s.submitting:
			err = ErrBusy
			return nil
		}
		s.submitting = true
		questionID = s.questionID
		return []Event{{Type: EventSubmitting, Busy: true}}
	})
	if err != nil {
		return err
	}
	defer s.mutate(func() []Event {
		s.submitting = false
		return []Event{{Type: EventSubmitting, Busy: false}}
	})

	s.speech.Cancel()
	s.appendUser(CheckingMessage)

	req := client.CodingSolutionRequest{
		Code:          sub.Code,
		Language:      sub.Language,
		QuestionID:    questionID,
		PassedTests:   models.CountPassed(sub.TestResults),
		TotalTests:    len(sub.TestResults),
		TestResults:   sub.TestResults,
		OverallPassed: sub.OverallPassed,
	}
	slog.Info("submitting coding solution",
		"interview_id", s.interviewID,
		"question_id", questionID,
		"passed", req.PassedTests,
		"total", req.TotalTests,
	)

	msg, err := s.api.SubmitCodingSolution(ctx, s.interviewID, req)
	if err != nil {
		slog.Error("failed to submit coding solution", "interview_id", s.interviewID, "error", err)
		s.appendAI(SubmitApology)
		s.clearChallenge()
		s.resumeAfterChallenge(ctx)
		return nil
	}

	s.clearChallenge()
	if strings.TrimSpace(msg) == "" {
		return nil
	}
	if err := s.handleReply(ctx, msg); err != nil {
		slog.Error("failed to generate feedback", "interview_id", s.interviewID, "error", err)
		s.complete(FeedbackUnavailable)
	}
	return nil
}

// resumeAfterChallenge nudges the interviewer back into plain chat
func (s *Session) resumeAfterChallenge(ctx context.Context) {
	reply, err := s.api.PostChatMessage(ctx, s.interviewID, ChallengeDone)
	if err != nil {
		slog.Error("failed to resume chat", "interview_id", s.interviewID, "error", err)
		s.appendAI(ResumeFallback)
		return
	}
	if err := s.handleReply(ctx, reply); err != nil {
		slog.Error("failed to generate feedback", "interview_id", s.interviewID, "error", err)
		s.appendAI(ResumeFallback)
	}
}

func (s *Session) clearChallenge() {
	s.mutate(func() []Event {
		wasOpen := s.panelOpen
		s.challenge = nil
		s.challengeID = ""
		s.panelOpen = false
		if !wasOpen {
			return nil
		}
		return []Event{{Type: EventPanelClosed}}
	})
}

func (s *Session) complete(feedback string) {
	s.mutate(func() []Event {
		s.completed = true
		s.feedback = feedback
		return []Event{{Type: EventComplete, Text: feedback}}
	})
	slog.Info("interview completed", "interview_id", s.interviewID)
}

func (s *Session) setComposing(v bool) {
	s.mutate(func() []Event {
		s.composing = v
		return []Event{{Type: EventComposing, Busy: v}}
	})
}

func (s *Session) appendUser(text string) {
	s.appendMessage(models.UserMessage(text))
}

func (s *Session) appendAI(text string) {
	s.appendMessage(models.AIMessage(text))
}

func (s *Session) appendMessage(msg models.Message) {
	s.mutate(func() []Event {
		s.messages = append(s.messages, msg)
		return []Event{{Type: EventMessage, Message: &msg}}
	})
}

// mutate applies fn under the lock, then notifies outside it so observers
// may call back into the session
func (s *Session) mutate(fn func() []Event) {
	s.mu.Lock()
	events := fn()
	s.mu.Unlock()

	for _, ev := range events {
		s.notify(ev)
	}
}

func (s *Session) notify(ev Event) {
	if s.observer != nil {
		s.observer(ev)
	}
}
