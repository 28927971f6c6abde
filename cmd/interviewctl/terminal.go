package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/terra-clan/interview-console/internal/catalog"
	"github.com/terra-clan/interview-console/internal/chat"
	"github.com/terra-clan/interview-console/internal/feedback"
	"github.com/terra-clan/interview-console/internal/judge"
	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/internal/panel"
	"github.com/terra-clan/interview-console/internal/speech"
)

const chatHelp = `Type an answer and press enter. An empty line sends dictated text.
  /mic            start or stop dictation
  /show           show the coding challenge
  /lang <name>    switch the solution language
  /code <file>    load the solution from a file
  /run            run the solution against the test cases
  /submit         submit the solution
  /close          hide the coding challenge
  /end            end the interview
  /help           show this help`

// terminalChat prints a conversation and maps typed commands onto it
type terminalChat struct {
	out     io.Writer
	runner  judge.Runner
	catalog *catalog.Loader

	mu      sync.Mutex // guards out and panel
	panel   *panel.Panel
	session *chat.Session
	done    chan struct{}
	endOnce sync.Once
}

func newTerminalChat(out io.Writer, runner judge.Runner, cat *catalog.Loader) *terminalChat {
	return &terminalChat{
		out:     out,
		runner:  runner,
		catalog: cat,
		done:    make(chan struct{}),
	}
}

func (t *terminalChat) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...) //nolint:errcheck
}

func (t *terminalChat) run(ctx context.Context, in io.Reader, api chat.Backend, voice speech.Adapter, interviewID int64, question string) error {
	opts := []chat.Option{chat.WithSpeech(voice), chat.WithObserver(t.observe)}
	if question != "" {
		opts = append(opts, chat.WithMessages(models.AIMessage(question)))
	}
	t.session = chat.New(interviewID, api, opts...)

	if question != "" {
		t.printMessage(models.AIMessage(question))
		voice.Speak(question)
	}
	t.printf("%s\n\n", chatHelp)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-t.done:
				return
			}
		}
	}()

	confirming := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.done:
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if confirming {
				confirming = false
				if !isYes(line) {
					t.printf("Continuing the interview.\n")
					continue
				}
				t.report(t.session.EndInterview(ctx, true))
				continue
			}
			cmd, arg := parseChatLine(line)
			if cmd == "end" {
				confirming = true
				t.printf("End the interview now? [y/N] ")
				continue
			}
			t.handle(ctx, cmd, arg, line)
		}
	}
}

// handle executes one typed line
func (t *terminalChat) handle(ctx context.Context, cmd, arg, line string) {
	switch cmd {
	case "":
		if strings.TrimSpace(line) == "" {
			t.session.SendInput(ctx)
			return
		}
		t.session.Send(ctx, line)
	case "help":
		t.printf("%s\n", chatHelp)
	case "mic":
		t.report(t.session.ToggleMic())
	case "show":
		if p := t.currentPanel(); p != nil {
			t.mu.Lock()
			p.Render(t.out)
			t.mu.Unlock()
		}
	case "lang":
		if p := t.currentPanel(); p != nil {
			if err := p.SetLanguage(arg); err != nil {
				t.report(err)
				return
			}
			t.printf("Language set to %s. Starter code:\n%s\n", p.Language(), p.Code())
		}
	case "code":
		if p := t.currentPanel(); p != nil {
			data, err := os.ReadFile(arg)
			if err != nil {
				t.report(fmt.Errorf("failed to read solution: %w", err))
				return
			}
			p.SetCode(string(data))
			t.printf("Loaded %d bytes from %s\n", len(data), arg)
		}
	case "run":
		if p := t.currentPanel(); p != nil {
			t.printf("Running...\n")
			results, err := p.Run(ctx)
			if err != nil {
				t.report(err)
				return
			}
			t.mu.Lock()
			panel.RenderResults(t.out, results)
			t.mu.Unlock()
		}
	case "submit":
		if p := t.currentPanel(); p != nil {
			sub, err := p.Submission()
			if err != nil {
				t.report(err)
				return
			}
			t.report(t.session.SubmitSolution(ctx, sub))
		}
	case "close":
		t.report(t.session.ClosePanel())
	default:
		t.printf("Unknown command /%s. Type /help for commands.\n", cmd)
	}
}

func (t *terminalChat) currentPanel() *panel.Panel {
	t.mu.Lock()
	p := t.panel
	t.mu.Unlock()
	if p == nil || t.session.Snapshot().Challenge == nil {
		t.printf("%s\n", chat.ErrNoChallenge)
		return nil
	}
	return p
}

func (t *terminalChat) report(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, speech.ErrUnavailable) {
		t.printf("Dictation is not configured; pass --listen-cmd.\n")
		return
	}
	t.printf("Error: %v\n", err)
}

func (t *terminalChat) observe(ev chat.Event) {
	switch ev.Type {
	case chat.EventMessage:
		t.printMessage(*ev.Message)
	case chat.EventInput:
		if ev.Text != "" {
			t.printf("\r(dictated) %s", ev.Text)
		}
	case chat.EventComposing:
		if ev.Busy {
			t.printf("Interviewer is typing...\n")
		}
	case chat.EventSubmitting:
		if ev.Busy {
			t.printf("Submitting solution...\n")
		}
	case chat.EventListening:
		if ev.Busy {
			t.printf("Listening. Type /mic to stop.\n")
		} else {
			t.printf("\nStopped listening. Press enter to send the dictated text.\n")
		}
	case chat.EventChallenge:
		p := panel.New(ev.Challenge, ev.ChallengeID, t.runner, t.catalog)
		t.mu.Lock()
		t.panel = p
		fmt.Fprintln(t.out) //nolint:errcheck
		panel.RenderChallenge(t.out, ev.Challenge)
		fmt.Fprintf(t.out, "\nLanguage: %s. Use /code <file> then /run and /submit.\n\n", p.Language()) //nolint:errcheck
		t.mu.Unlock()
	case chat.EventPanelClosed:
		t.printf("Coding challenge hidden.\n")
	case chat.EventComplete:
		t.mu.Lock()
		fmt.Fprintln(t.out, "\nInterview complete.") //nolint:errcheck
		renderFeedback(t.out, ev.Text)
		t.mu.Unlock()
		t.endOnce.Do(func() { close(t.done) })
	}
}

func (t *terminalChat) printMessage(msg models.Message) {
	who := "Interviewer"
	if msg.Sender == models.SenderUser {
		who = "You"
	}
	t.printf("%s: %s\n", who, msg.Text)
}

// renderFeedback prints the feedback with its section outline first
func renderFeedback(out io.Writer, text string) {
	if sections := feedback.Headings(text); len(sections) > 0 {
		fmt.Fprintf(out, "Sections: %s\n\n", strings.Join(sections, ", ")) //nolint:errcheck
	}
	fmt.Fprintln(out, text) //nolint:errcheck
}

// parseChatLine splits "/cmd arg" lines; other text returns an empty command
func parseChatLine(line string) (cmd, arg string) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") || len(trimmed) == 1 {
		return "", ""
	}
	cmd, arg, _ = strings.Cut(trimmed[1:], " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}
