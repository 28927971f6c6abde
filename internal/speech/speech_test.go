package speech

import (
	"errors"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNop(t *testing.T) {
	var a Adapter = Nop{}
	assert.ErrorIs(t, a.StartListening(func(string) {}), ErrUnavailable)
	assert.False(t, a.Listening())
	a.Speak("hello")
	a.Cancel()
	a.StopListening()
}

func TestRelay(t *testing.T) {
	var sent []RelayCommand
	r := NewRelay(func(c RelayCommand) error {
		sent = append(sent, c)
		return nil
	})

	var transcripts []string
	r.Transcript("ignored before listening")

	require.NoError(t, r.StartListening(func(s string) { transcripts = append(transcripts, s) }))
	assert.True(t, r.Listening())
	r.Transcript("hello")
	r.Transcript("hello world")
	r.StopListening()
	r.StopListening()
	r.Transcript("late")
	assert.False(t, r.Listening())

	r.Speak("Next question")
	r.Cancel()

	assert.Equal(t, []string{"", "hello", "hello world"}, transcripts)
	assert.Equal(t, []RelayCommand{
		{Type: CommandCancel},
		{Type: CommandListenStart},
		{Type: CommandListenStop},
		{Type: CommandSpeak, Text: "Next question"},
		{Type: CommandCancel},
	}, sent)
}

func TestRelay_EndedByBrowser(t *testing.T) {
	r := NewRelay(func(RelayCommand) error { return errors.New("socket closed") })
	require.NoError(t, r.StartListening(func(string) {}))
	r.Ended()
	assert.False(t, r.Listening())
}

func TestCommand_Disabled(t *testing.T) {
	c := NewCommand(nil, nil)
	assert.ErrorIs(t, c.StartListening(func(string) {}), ErrUnavailable)
	c.Speak("nothing happens")
	c.Close()
}

func TestCommand_Listen(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available, skipping")
	}

	var mu sync.Mutex
	var got []string
	c := NewCommand(nil, []string{"sh", "-c", "echo hello; echo hello there"})
	require.NoError(t, c.StartListening(func(s string) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	}))

	assert.Eventually(t, func() bool { return !c.Listening() }, 5*time.Second, 10*time.Millisecond)
	c.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", "hello", "hello there"}, got)
}

func TestCommand_CancelKillsSpeech(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available, skipping")
	}

	c := NewCommand([]string{"sleep", "30"}, nil)
	c.Speak("a long answer")
	start := time.Now()
	c.Cancel()
	c.Close()
	assert.Less(t, time.Since(start), 10*time.Second)
}
