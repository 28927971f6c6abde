package judge

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/interview-console/internal/models"
)

// fakeDocker runs a Go function in place of the container command
type fakeDocker struct {
	mu       sync.Mutex
	run      func(stdin string) (stdout, stderr string, exit int64)
	hasImage bool
	pulled   []string
	created  map[string]*container.Config
	hosts    map[string]*container.HostConfig
	removed  []string
	seq      int
}

func newFakeDocker(run func(string) (string, string, int64)) *fakeDocker {
	return &fakeDocker{
		run:     run,
		created: map[string]*container.Config{},
		hosts:   map[string]*container.HostConfig{},
	}
}

func (f *fakeDocker) ImageInspectWithRaw(ctx context.Context, imageID string) (types.ImageInspect, []byte, error) {
	if f.hasImage {
		return types.ImageInspect{ID: imageID}, nil, nil
	}
	return types.ImageInspect{}, nil, errors.New("no such image")
}

func (f *fakeDocker) ImagePull(ctx context.Context, ref string, options types.ImagePullOptions) (io.ReadCloser, error) {
	f.pulled = append(f.pulled, ref)
	return io.NopCloser(strings.NewReader(`{"status":"done"}`)), nil
}

func (f *fakeDocker) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := containerName
	f.created[id] = config
	f.hosts[id] = hostConfig
	return container.CreateResponse{ID: id}, nil
}

func (f *fakeDocker) ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error {
	return nil
}

func (f *fakeDocker) stdin(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.created[id].Env {
		if v, ok := strings.CutPrefix(e, "JUDGE_STDIN="); ok {
			return v
		}
	}
	return ""
}

func (f *fakeDocker) ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error) {
	waitCh := make(chan container.WaitResponse, 1)
	errCh := make(chan error, 1)
	_, _, exit := f.run(f.stdin(containerID))
	waitCh <- container.WaitResponse{StatusCode: exit}
	return waitCh, errCh
}

func (f *fakeDocker) ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error) {
	stdout, stderr, _ := f.run(f.stdin(containerID))
	var buf bytes.Buffer
	_, _ = stdcopy.NewStdWriter(&buf, stdcopy.Stdout).Write([]byte(stdout))
	if stderr != "" {
		_, _ = stdcopy.NewStdWriter(&buf, stdcopy.Stderr).Write([]byte(stderr))
	}
	return io.NopCloser(&buf), nil
}

func (f *fakeDocker) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, containerID)
	return nil
}

func (f *fakeDocker) Ping(ctx context.Context) (types.Ping, error) {
	return types.Ping{APIVersion: "1.44"}, nil
}

func (f *fakeDocker) Close() error { return nil }

var testLanguages = []models.Language{
	{Name: "python", Image: "python:3.12-alpine", File: "main.py", Run: "python3 main.py"},
	{Name: "cobol"}, // no image, not runnable locally
}

func TestDockerRunner_Submit(t *testing.T) {
	fake := newFakeDocker(func(stdin string) (string, string, int64) {
		switch stdin {
		case "crash":
			return "", "Traceback: boom\n", 1
		case "2":
			return "4\n", "", 0
		default:
			return "wrong\n", "", 0
		}
	})
	r := newDockerRunner(fake, DockerConfig{PullPolicy: "if-not-present"}, testLanguages)

	results, err := r.Submit(context.Background(), "print(int(input())*2)", "python",
		[]string{"2", "3", "crash"}, []string{"4", "6", "0"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Passed)
	assert.Equal(t, "4", results[0].ActualOutput)

	assert.False(t, results[1].Passed)
	assert.Equal(t, "wrong", results[1].ActualOutput)
	assert.NotEmpty(t, results[1].Diff)

	assert.False(t, results[2].Passed)
	assert.Equal(t, "Error: exit status 1: Traceback: boom", results[2].ActualOutput)

	assert.Equal(t, []string{"python:3.12-alpine"}, fake.pulled)
	assert.Len(t, fake.removed, 3)

	for id, cfg := range fake.created {
		assert.True(t, cfg.NetworkDisabled, id)
		assert.Equal(t, container.NetworkMode("none"), fake.hosts[id].NetworkMode)
		assert.Equal(t, int64(256*1024*1024), fake.hosts[id].Resources.Memory)
		assert.Contains(t, cfg.Cmd[2], "python3 main.py")
		assert.Contains(t, cfg.Env, "JUDGE_SOURCE=print(int(input())*2)")
	}
}

func TestDockerRunner_SkipsPullWhenPresent(t *testing.T) {
	fake := newFakeDocker(func(string) (string, string, int64) { return "1", "", 0 })
	fake.hasImage = true
	r := newDockerRunner(fake, DockerConfig{PullPolicy: "if-not-present"}, testLanguages)

	_, err := r.Submit(context.Background(), "code", "python", []string{"x"}, []string{"1"})
	require.NoError(t, err)
	assert.Empty(t, fake.pulled)
}

func TestDockerRunner_BatchErrors(t *testing.T) {
	fake := newFakeDocker(func(string) (string, string, int64) { return "", "", 0 })
	r := newDockerRunner(fake, DockerConfig{}, testLanguages)

	_, err := r.Submit(context.Background(), "code", "cobol", nil, nil)
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	_, err = r.Submit(context.Background(), "code", "python", []string{"a"}, nil)
	assert.ErrorIs(t, err, ErrFixtureMismatch)
	assert.Empty(t, fake.created)
}

func TestDockerRunner_Ping(t *testing.T) {
	r := newDockerRunner(newFakeDocker(nil), DockerConfig{}, nil)
	assert.NoError(t, r.Ping(context.Background()))
}

func TestScript(t *testing.T) {
	s := script(models.Language{File: "main.go", Run: "go run main.go"})
	assert.Equal(t, `cd /tmp && printf '%s' "$JUDGE_SOURCE" > main.go && printf '%s' "$JUDGE_STDIN" | go run main.go`, s)
}
