package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/terra-clan/interview-console/internal/chat"
	"github.com/terra-clan/interview-console/internal/feedback"
	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/internal/panel"
	"github.com/terra-clan/interview-console/internal/speech"
)

const maxChatMessageSize = 1 << 20

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client to server message types
const (
	chatSend        = "message"
	chatInput       = "input"
	chatTranscript  = "transcript"
	chatListenEnd   = "listen_end"
	chatMic         = "mic"
	chatEnd         = "end"
	chatSetLanguage = "set_language"
	chatSetCode     = "set_code"
	chatRunCode     = "run_code"
	chatSubmitCode  = "submit_code"
	chatClosePanel  = "close_panel"
)

// Server to client message types beyond the chat event types
const (
	chatState   = "state"
	chatCode    = "code"
	chatResults = "results"
	chatError   = "error"
)

// ChatClientMessage is a browser action on the interview socket
type ChatClientMessage struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Confirmed bool   `json:"confirmed,omitempty"`
	Language  string `json:"language,omitempty"`
	Code      string `json:"code,omitempty"`
}

// ChatServerMessage is a state change pushed to the browser
type ChatServerMessage struct {
	Type        string                  `json:"type"`
	Text        string                  `json:"text,omitempty"`
	Error       string                  `json:"error,omitempty"`
	Busy        bool                    `json:"busy,omitempty"`
	Message     *models.Message         `json:"message,omitempty"`
	State       *chat.State             `json:"state,omitempty"`
	Challenge   *models.CodingChallenge `json:"challenge,omitempty"`
	ChallengeID string                  `json:"challengeId,omitempty"`
	Language    string                  `json:"language,omitempty"`
	Code        string                  `json:"code,omitempty"`
	Results     []models.TestCaseResult `json:"results,omitempty"`
	Passed      int                     `json:"passed,omitempty"`
	Total       int                     `json:"total,omitempty"`
	Outcome     panel.Outcome           `json:"outcome,omitempty"`
	Feedback    string                  `json:"feedback,omitempty"`
	HTML        string                  `json:"html,omitempty"`
}

// chatConn serialises writes to one socket
type chatConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *chatConn) send(msg ChatServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal chat message", "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("failed to send chat message", "type", msg.Type, "error", err)
		return err
	}
	return nil
}

func (c *chatConn) sendError(code, message string) {
	c.send(ChatServerMessage{Type: chatError, Error: code, Text: message})
}

// chatRoom binds one socket to one interview conversation
type chatRoom struct {
	server  *Server
	sess    *models.WebSession
	conn    *chatConn
	relay   *speech.Relay
	session *chat.Session

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	panel *panel.Panel
}

func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	interviewID, ok := interviewIDParam(w, r)
	if !ok {
		return
	}

	question, found, err := s.deps.Repo.GetInitialQuestion(r.Context(), sess.PhoneNumber, interviewID)
	if err != nil {
		slog.Error("failed to load initial question", "interview_id", interviewID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load interview")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxChatMessageSize)

	cc := &chatConn{conn: conn}

	// Without the opening question the interview cannot be resumed here
	if !found {
		slog.Warn("no initial question for interview", "interview_id", interviewID, "session", sess.MaskedID())
		cc.sendError("interview_not_found", "interview not found, returning to the dashboard")
		return
	}

	room := s.newChatRoom(sess, cc, interviewID, question)
	defer room.close()

	slog.Info("chat websocket connected", "interview_id", interviewID, "session", sess.MaskedID())

	state := room.session.Snapshot()
	cc.send(ChatServerMessage{Type: chatState, State: &state})
	room.relay.Speak(question)

	room.readLoop()
	slog.Info("chat websocket disconnected", "interview_id", interviewID)
}

func (s *Server) newChatRoom(sess *models.WebSession, cc *chatConn, interviewID int64, question string) *chatRoom {
	ctx, cancel := context.WithCancel(context.Background())
	room := &chatRoom{
		server: s,
		sess:   sess,
		conn:   cc,
		ctx:    ctx,
		cancel: cancel,
	}

	room.relay = speech.NewRelay(func(cmd speech.RelayCommand) error {
		return cc.send(ChatServerMessage{Type: cmd.Type, Text: cmd.Text})
	})

	api := s.backendFor(sess, room.authExpired)
	room.session = chat.New(interviewID, api,
		chat.WithSpeech(room.relay),
		chat.WithObserver(room.observe),
		chat.WithMessages(models.AIMessage(question)),
	)
	return room
}

// authExpired ends the browser session once the backend rejects a refresh
func (room *chatRoom) authExpired() {
	slog.Warn("backend credentials expired", "session", room.sess.MaskedID())
	room.conn.sendError(codeReauthRequired, "your session has expired, please log in again")
	room.server.endSession(context.Background(), room.sess)
	room.cancel()
	// Unblocks the read loop
	room.conn.conn.Close()
}

func (room *chatRoom) close() {
	room.cancel()
	room.relay.StopListening()
	room.wg.Wait()
}

// observe forwards conversation events to the browser
func (room *chatRoom) observe(ev chat.Event) {
	msg := ChatServerMessage{Type: string(ev.Type)}

	switch ev.Type {
	case chat.EventMessage:
		msg.Message = ev.Message
	case chat.EventInput:
		msg.Text = ev.Text
	case chat.EventComposing, chat.EventSubmitting, chat.EventListening:
		msg.Busy = ev.Busy
	case chat.EventChallenge:
		p := panel.New(ev.Challenge, ev.ChallengeID, room.server.deps.Runner, room.server.deps.Catalog)
		room.mu.Lock()
		room.panel = p
		room.mu.Unlock()

		msg.Challenge = ev.Challenge
		msg.ChallengeID = ev.ChallengeID
		msg.Language = p.Language()
		msg.Code = p.Code()
	case chat.EventComplete:
		msg.Feedback = ev.Text
		html, err := feedback.HTML(ev.Text)
		if err != nil {
			slog.Warn("failed to render feedback", "interview_id", room.session.InterviewID(), "error", err)
		}
		msg.HTML = html
		room.forgetQuestion()
	}

	room.conn.send(msg)
}

func (room *chatRoom) forgetQuestion() {
	id := room.session.InterviewID()
	if err := room.server.deps.Repo.DeleteInitialQuestion(context.Background(), room.sess.PhoneNumber, id); err != nil {
		slog.Warn("failed to delete initial question", "interview_id", id, "error", err)
	}
}

func (room *chatRoom) currentPanel() *panel.Panel {
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.panel
}

// async runs a backend-bound action off the read loop
func (room *chatRoom) async(fn func(ctx context.Context)) {
	room.wg.Add(1)
	go func() {
		defer room.wg.Done()
		fn(room.ctx)
	}()
}

func (room *chatRoom) readLoop() {
	for {
		if room.ctx.Err() != nil {
			return
		}

		_, data, err := room.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			return
		}

		var msg ChatClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("invalid message format", "error", err)
			room.conn.sendError("invalid_message", "message must be a JSON object")
			continue
		}

		room.dispatch(msg)
	}
}

func (room *chatRoom) dispatch(msg ChatClientMessage) {
	switch msg.Type {
	case chatSend:
		room.async(func(ctx context.Context) {
			if msg.Text != "" {
				room.session.Send(ctx, msg.Text)
				return
			}
			room.session.SendInput(ctx)
		})

	case chatInput:
		room.session.SetInput(msg.Text)

	case chatTranscript:
		room.relay.Transcript(msg.Text)

	case chatListenEnd:
		if room.relay.Listening() {
			room.relay.Ended()
			room.conn.send(ChatServerMessage{Type: string(chat.EventListening)})
		}

	case chatMic:
		if err := room.session.ToggleMic(); err != nil {
			room.reportError(err)
		}

	case chatEnd:
		room.async(func(ctx context.Context) {
			if err := room.session.EndInterview(ctx, msg.Confirmed); err != nil {
				room.reportError(err)
			}
		})

	case chatSetLanguage:
		p := room.requirePanel()
		if p == nil {
			return
		}
		if err := p.SetLanguage(msg.Language); err != nil {
			room.reportError(err)
			return
		}
		room.conn.send(ChatServerMessage{Type: chatCode, Language: p.Language(), Code: p.Code()})

	case chatSetCode:
		if p := room.requirePanel(); p != nil {
			p.SetCode(msg.Code)
		}

	case chatRunCode:
		p := room.requirePanel()
		if p == nil {
			return
		}
		if room.server.deps.Runner == nil {
			room.conn.sendError("runner_unavailable", "code execution is not configured")
			return
		}
		room.async(func(ctx context.Context) {
			results, err := p.Run(ctx)
			if err != nil {
				room.reportError(err)
				return
			}
			room.conn.send(ChatServerMessage{
				Type:    chatResults,
				Results: results,
				Passed:  p.Passed(),
				Total:   p.Total(),
				Outcome: p.Overall(),
			})
		})

	case chatSubmitCode:
		p := room.requirePanel()
		if p == nil {
			return
		}
		room.async(func(ctx context.Context) {
			sub, err := p.Submission()
			if err != nil {
				room.reportError(err)
				return
			}
			if err := room.session.SubmitSolution(ctx, sub); err != nil {
				room.reportError(err)
			}
		})

	case chatClosePanel:
		if err := room.session.ClosePanel(); err != nil {
			room.reportError(err)
		}

	default:
		room.conn.sendError("unknown_message", "unknown message type: "+msg.Type)
	}
}

// requirePanel returns the open panel or tells the browser there is none
func (room *chatRoom) requirePanel() *panel.Panel {
	p := room.currentPanel()
	if p == nil || room.session.Snapshot().Challenge == nil {
		room.conn.sendError("no_challenge", chat.ErrNoChallenge.Error())
		return nil
	}
	return p
}

func (room *chatRoom) reportError(err error) {
	room.conn.sendError(chatErrorCode(err), err.Error())
}

func chatErrorCode(err error) string {
	switch {
	case errors.Is(err, chat.ErrNotConfirmed):
		return "confirmation_required"
	case errors.Is(err, chat.ErrBusy), errors.Is(err, panel.ErrBusy):
		return "busy"
	case errors.Is(err, chat.ErrCompleted):
		return "completed"
	case errors.Is(err, chat.ErrNoChallenge):
		return "no_challenge"
	case errors.Is(err, panel.ErrEmptyCode):
		return "empty_code"
	case errors.Is(err, panel.ErrUnknownLanguage):
		return "unknown_language"
	case errors.Is(err, panel.ErrNoFixtures):
		return "no_fixtures"
	case errors.Is(err, speech.ErrUnavailable):
		return "speech_unavailable"
	default:
		return "internal_error"
	}
}
