package judge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/google/uuid"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/terra-clan/interview-console/internal/models"
)

// dockerAPI is the subset of the Docker client the runner needs
type dockerAPI interface {
	ImageInspectWithRaw(ctx context.Context, imageID string) (types.ImageInspect, []byte, error)
	ImagePull(ctx context.Context, ref string, options types.ImagePullOptions) (io.ReadCloser, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	Ping(ctx context.Context) (types.Ping, error)
	Close() error
}

// DockerConfig holds local runner settings
type DockerConfig struct {
	Host        string
	PullPolicy  string // always, if-not-present, never
	MemoryLimit int64  // bytes
	CaseTimeout time.Duration
}

// DockerRunner executes each case in a throwaway container with networking disabled
type DockerRunner struct {
	docker    dockerAPI
	config    DockerConfig
	languages map[string]models.Language
}

// NewDockerRunner connects to the Docker daemon
func NewDockerRunner(cfg DockerConfig, languages []models.Language) (*DockerRunner, error) {
	cli, err := client.NewClientWithOpts(
		client.WithHost(cfg.Host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return newDockerRunner(cli, cfg, languages), nil
}

func newDockerRunner(api dockerAPI, cfg DockerConfig, languages []models.Language) *DockerRunner {
	if cfg.MemoryLimit == 0 {
		cfg.MemoryLimit = 256 * 1024 * 1024
	}
	if cfg.CaseTimeout == 0 {
		cfg.CaseTimeout = 10 * time.Second
	}
	byName := make(map[string]models.Language, len(languages))
	for _, l := range languages {
		if l.Image != "" && l.Run != "" {
			byName[l.Name] = l
		}
	}
	return &DockerRunner{docker: api, config: cfg, languages: byName}
}

// Ping checks Docker connectivity
func (r *DockerRunner) Ping(ctx context.Context) error {
	if _, err := r.docker.Ping(ctx); err != nil {
		return fmt.Errorf("docker ping failed: %w", err)
	}
	return nil
}

// Close releases the Docker client
func (r *DockerRunner) Close() error {
	return r.docker.Close()
}

// Submit runs code once per input, sequentially, keeping input order
func (r *DockerRunner) Submit(ctx context.Context, code, language string, inputs, expected []string) ([]models.TestCaseResult, error) {
	supports := func(name string) bool {
		_, ok := r.languages[name]
		return ok
	}
	if err := validateBatch(language, supports, inputs, expected); err != nil {
		return nil, err
	}

	lang := r.languages[language]
	if err := r.pullImage(ctx, lang.Image); err != nil {
		return nil, fmt.Errorf("failed to pull image: %w", err)
	}

	results := make([]models.TestCaseResult, 0, len(inputs))
	for i := range inputs {
		stdout, elapsed, err := r.runCase(ctx, lang, code, inputs[i])
		if err != nil {
			slog.Warn("test case execution failed", "case", i+1, "language", language, "error", err)
			results = append(results, errorResult(inputs[i], expected[i], err))
			continue
		}
		results = append(results, caseResult(inputs[i], expected[i], stdout, float64(elapsed.Microseconds())/1000, 0))
	}
	return results, nil
}

// pullImage pulls the language image according to the pull policy
func (r *DockerRunner) pullImage(ctx context.Context, image string) error {
	if r.config.PullPolicy == "never" {
		return nil
	}

	_, _, err := r.docker.ImageInspectWithRaw(ctx, image)
	if err == nil && r.config.PullPolicy != "always" {
		return nil
	}

	slog.Info("pulling image", "image", image)
	out, err := r.docker.ImagePull(ctx, image, types.ImagePullOptions{})
	if err != nil {
		return err
	}
	defer out.Close()

	_, _ = io.Copy(io.Discard, out)
	return nil
}

// script writes the source and pipes stdin into the run command
func script(lang models.Language) string {
	file := lang.File
	if file == "" {
		file = "main"
	}
	return fmt.Sprintf(`cd /tmp && printf '%%s' "$JUDGE_SOURCE" > %s && printf '%%s' "$JUDGE_STDIN" | %s`, file, lang.Run)
}

func (r *DockerRunner) runCase(ctx context.Context, lang models.Language, code, input string) (string, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.CaseTimeout)
	defer cancel()

	name := fmt.Sprintf("judge-%s", uuid.New().String()[:12])
	containerConfig := &container.Config{
		Image:           lang.Image,
		Cmd:             []string{"sh", "-c", script(lang)},
		Env:             []string{"JUDGE_SOURCE=" + code, "JUDGE_STDIN=" + input},
		NetworkDisabled: true,
		Labels: map[string]string{
			"judge.managed":  "true",
			"judge.language": lang.Name,
		},
	}
	hostConfig := &container.HostConfig{
		NetworkMode: "none",
		Resources:   container.Resources{Memory: r.config.MemoryLimit},
		RestartPolicy: container.RestartPolicy{
			Name: container.RestartPolicyDisabled,
		},
	}

	resp, err := r.docker.ContainerCreate(ctx, containerConfig, hostConfig, &network.NetworkingConfig{}, nil, name)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create container: %w", err)
	}
	defer func() {
		if err := r.docker.ContainerRemove(context.Background(), resp.ID, container.RemoveOptions{Force: true}); err != nil {
			slog.Warn("failed to remove judge container", "container", resp.ID, "error", err)
		}
	}()

	started := time.Now()
	if err := r.docker.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", 0, fmt.Errorf("failed to start container: %w", err)
	}

	var exitCode int64
	waitCh, errCh := r.docker.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if ctx.Err() != nil {
			return "", 0, fmt.Errorf("execution timed out after %s", r.config.CaseTimeout)
		}
		return "", 0, fmt.Errorf("failed to wait for container: %w", err)
	case status := <-waitCh:
		exitCode = status.StatusCode
	}
	elapsed := time.Since(started)

	logs, err := r.docker.ContainerLogs(ctx, resp.ID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", 0, fmt.Errorf("failed to read container logs: %w", err)
	}
	defer logs.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, logs); err != nil {
		return "", 0, fmt.Errorf("failed to demultiplex logs: %w", err)
	}

	if exitCode != 0 {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return "", 0, fmt.Errorf("exit status %d: %s", exitCode, msg)
	}

	return stdout.String(), elapsed, nil
}
