package speech

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
)

// ErrUnavailable is returned when no recogniser is configured
var ErrUnavailable = errors.New("speech recognition is not available")

// Command drives external programs for speech, e.g. `espeak` for output and a
// recogniser that prints one cumulative transcript per line for input.
type Command struct {
	speakArgv  []string
	listenArgv []string

	mu         sync.Mutex
	speaking   *exec.Cmd
	listening  *exec.Cmd
	stopListen context.CancelFunc
	wg         sync.WaitGroup
}

// NewCommand builds an adapter. The text to speak is written to the speak
// command's stdin. Either argv may be empty to disable that direction.
func NewCommand(speakArgv, listenArgv []string) *Command {
	return &Command{speakArgv: speakArgv, listenArgv: listenArgv}
}

func (c *Command) Speak(text string) {
	c.Cancel()
	if len(c.speakArgv) == 0 || strings.TrimSpace(text) == "" {
		return
	}

	cmd := exec.Command(c.speakArgv[0], c.speakArgv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Start(); err != nil {
		slog.Warn("failed to start speech output", "error", err)
		return
	}

	c.mu.Lock()
	c.speaking = cmd
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_ = cmd.Wait()
		c.mu.Lock()
		if c.speaking == cmd {
			c.speaking = nil
		}
		c.mu.Unlock()
	}()
}

// Cancel stops the current utterance, if any
func (c *Command) Cancel() {
	c.mu.Lock()
	cmd := c.speaking
	c.speaking = nil
	c.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

func (c *Command) StartListening(onTranscript func(string)) error {
	if len(c.listenArgv) == 0 {
		return ErrUnavailable
	}
	c.Cancel()
	c.StopListening()

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, c.listenArgv[0], c.listenArgv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return err
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return err
	}

	c.mu.Lock()
	c.listening = cmd
	c.stopListen = cancel
	c.mu.Unlock()

	onTranscript("")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			onTranscript(strings.TrimSpace(scanner.Text()))
		}
		_ = cmd.Wait()

		c.mu.Lock()
		if c.listening == cmd {
			c.listening = nil
			c.stopListen = nil
		}
		c.mu.Unlock()
		cancel()
	}()
	return nil
}

func (c *Command) StopListening() {
	c.mu.Lock()
	stop := c.stopListen
	c.listening = nil
	c.stopListen = nil
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
}

func (c *Command) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening != nil
}

// Close stops everything and waits for child processes to exit
func (c *Command) Close() {
	c.Cancel()
	c.StopListening()
	c.wg.Wait()
}
