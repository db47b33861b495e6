package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/felixgeelhaar/fortify/retry"
)

// workspaceDir is where the command directory is mounted in the container
const workspaceDir = "/workspace"

// DockerConfig holds Docker runner configuration
type DockerConfig struct {
	Images     map[string]string // language -> image
	MemoryMB   int
	CPULimit   float64
	NetworkOff bool
	Timeout    time.Duration
}

// DefaultDockerConfig returns the sandbox limits used when none are configured
func DefaultDockerConfig() DockerConfig {
	return DockerConfig{
		Images: map[string]string{
			"javascript": "node:22-alpine",
			"python":     "python:3.12-alpine",
		},
		MemoryMB:   256,
		CPULimit:   0.5,
		NetworkOff: true,
		Timeout:    DefaultConfig().Timeout,
	}
}

// DockerRunner runs each command in a fresh container with the command
// directory bind-mounted at /workspace
type DockerRunner struct {
	client *client.Client
	cfg    DockerConfig
	pull   retry.Retry[struct{}]
	logger *slog.Logger
}

// NewDockerRunner connects to the Docker daemon from the environment
func NewDockerRunner(cfg DockerConfig, logger *slog.Logger) (*DockerRunner, error) {
	defaults := DefaultDockerConfig()
	if len(cfg.Images) == 0 {
		cfg.Images = defaults.Images
	}
	if cfg.MemoryMB == 0 {
		cfg.MemoryMB = defaults.MemoryMB
	}
	if cfg.CPULimit == 0 {
		cfg.CPULimit = defaults.CPULimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := cli.Ping(ctx); err != nil {
		cli.Close()
		return nil, fmt.Errorf("docker not reachable: %w", err)
	}

	return &DockerRunner{
		client: cli,
		cfg:    cfg,
		pull: retry.New[struct{}](retry.Config{
			MaxAttempts:   3,
			InitialDelay:  time.Second,
			MaxDelay:      10 * time.Second,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
		}),
		logger: logger,
	}, nil
}

// Close closes the Docker client
func (r *DockerRunner) Close() error {
	return r.client.Close()
}

func (r *DockerRunner) Run(ctx context.Context, c Command) (*ExecResult, error) {
	img, ok := r.cfg.Images[c.Language]
	if !ok {
		return nil, fmt.Errorf("%w: no image configured for %s", ErrSpawn, c.Language)
	}
	if err := r.ensureImage(ctx, img); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
	}

	hostDir, err := filepath.Abs(c.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", ErrSpawn, c.Dir, err)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = r.cfg.Timeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	containerCfg := &container.Config{
		Image:           img,
		Cmd:             append([]string{path.Base(filepath.ToSlash(c.Program))}, c.Args...),
		Env:             c.Env,
		WorkingDir:      workspaceDir,
		NetworkDisabled: r.cfg.NetworkOff,
		Tty:             false,
		Labels: map[string]string{
			"courseforge.run":  "true",
			"courseforge.lang": c.Language,
		},
	}
	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{{
			Type:   mount.TypeBind,
			Source: hostDir,
			Target: workspaceDir,
		}},
		Resources: container.Resources{
			Memory:   int64(r.cfg.MemoryMB) * 1024 * 1024,
			NanoCPUs: int64(r.cfg.CPULimit * 1e9),
		},
	}
	if r.cfg.NetworkOff {
		hostCfg.NetworkMode = "none"
	}

	resp, err := r.client.ContainerCreate(runCtx, containerCfg, hostCfg, nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("%w: create container: %w", ErrSpawn, err)
	}
	defer func() {
		rmCtx, rmCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer rmCancel()
		if err := r.client.ContainerRemove(rmCtx, resp.ID, container.RemoveOptions{Force: true}); err != nil {
			r.logger.Warn("remove container", "id", resp.ID, "error", err)
		}
	}()

	start := time.Now()
	if err := r.client.ContainerStart(runCtx, resp.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("%w: start container: %w", ErrSpawn, err)
	}

	result := &ExecResult{ExitCode: -1}
	statusCh, errCh := r.client.ContainerWait(runCtx, resp.ID, container.WaitConditionNotRunning)
	select {
	case st := <-statusCh:
		result.ExitCode = int(st.StatusCode)
	case err := <-errCh:
		if !errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("wait for container: %w", err)
		}
		result.TimedOut = true
		r.logger.Warn("test container killed after timeout", "image", img, "timeout", timeout)
	}
	result.Duration = time.Since(start)

	logCtx, logCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer logCancel()
	logs, err := r.client.ContainerLogs(logCtx, resp.ID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		r.logger.Warn("read container logs", "id", resp.ID, "error", err)
		return result, nil
	}
	defer logs.Close()

	var stderr, combined bytes.Buffer
	if _, err := stdcopy.StdCopy(&combined, io.MultiWriter(&stderr, &combined), logs); err != nil {
		r.logger.Warn("demux container logs", "id", resp.ID, "error", err)
	}
	result.Stderr = stderr.String()
	result.Output = combined.String()

	return result, nil
}

func (r *DockerRunner) ensureImage(ctx context.Context, img string) error {
	if _, err := r.client.ImageInspect(ctx, img); err == nil {
		return nil
	}

	r.logger.Info("pulling image", "image", img)
	_, err := r.pull.Do(ctx, func(ctx context.Context) (struct{}, error) {
		reader, err := r.client.ImagePull(ctx, img, image.PullOptions{})
		if err != nil {
			return struct{}{}, err
		}
		defer reader.Close()
		_, err = io.Copy(io.Discard, reader)
		return struct{}{}, err
	})
	if err != nil {
		return fmt.Errorf("pull image %s: %w", img, err)
	}
	return nil
}
