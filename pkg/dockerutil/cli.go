// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

package dockerutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/reposcope/reposcope/pkg/executil"
)

// DefaultBinary is the docker CLI executable looked up in $PATH.
const DefaultBinary = "docker"

// CLI implements Client by shelling out to the docker command line.
type CLI struct {
	binary string
}

var _ Client = (*CLI)(nil)

// NewCLI returns a Client backed by the given docker binary.
// An empty binary falls back to DefaultBinary.
func NewCLI(binary string) *CLI {
	if binary == "" {
		binary = DefaultBinary
	}
	return &CLI{binary: binary}
}

func (c *CLI) ImageExists(ctx context.Context, tag string) (bool, error) {
	_, stderr, err := executil.Run(ctx, []string{c.binary, "image", "inspect", "--format", "{{.Id}}", tag})
	if err == nil {
		return true, nil
	}
	if isNotFound(stderr) {
		return false, nil
	}
	return false, fmt.Errorf("failed to inspect image %q: %w (stderr: %q)", tag, err, strings.TrimSpace(stderr))
}

func (c *CLI) BuildImage(ctx context.Context, tag string, buildContext io.Reader) (string, error) {
	// "-" reads the tar build context from stdin.
	stdout, stderr, err := executil.Run(ctx, []string{c.binary, "build", "--tag", tag, "-"},
		executil.WithStdin(buildContext))
	log := stdout + stderr
	if err != nil {
		return log, fmt.Errorf("failed to build image %q: %w", tag, err)
	}
	return log, nil
}

func (c *CLI) RunContainer(ctx context.Context, image string) (string, error) {
	stdout, stderr, err := executil.Run(ctx, []string{c.binary, "run", "--detach", image})
	if err != nil {
		return "", fmt.Errorf("failed to run a container from image %q: %w (stderr: %q)", image, err, strings.TrimSpace(stderr))
	}
	id := strings.TrimSpace(stdout)
	if id == "" {
		return "", fmt.Errorf("docker run did not print a container ID for image %q", image)
	}
	return id, nil
}

func (c *CLI) ContainerRunning(ctx context.Context, id string) (bool, error) {
	stdout, stderr, err := executil.Run(ctx, []string{c.binary, "container", "inspect", "--format", "{{.State.Running}}", id})
	if err != nil {
		if isNotFound(stderr) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect container %q: %w (stderr: %q)", id, err, strings.TrimSpace(stderr))
	}
	return strings.TrimSpace(stdout) == "true", nil
}

func (c *CLI) ContainerLogs(ctx context.Context, id string) (string, error) {
	// docker logs writes the container's stdout to stdout and its stderr
	// to stderr; the analysis tool reports progress on both.
	stdout, stderr, err := executil.Run(ctx, []string{c.binary, "logs", id})
	if err != nil {
		return "", fmt.Errorf("failed to fetch logs of container %q: %w (stderr: %q)", id, err, strings.TrimSpace(stderr))
	}
	return stdout + stderr, nil
}

func (c *CLI) Exec(ctx context.Context, id string, argv []string) (ExecResult, error) {
	args := append([]string{c.binary, "exec", id}, argv...)
	stdout, stderr, err := executil.Run(ctx, args)
	res := ExecResult{Stdout: stdout, Stderr: stderr}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("failed to exec %v in container %q: %w", argv, id, err)
	}
	return res, nil
}

func (c *CLI) StopContainer(ctx context.Context, id string) error {
	_, stderr, err := executil.Run(ctx, []string{c.binary, "stop", id})
	if err != nil && !isNotFound(stderr) {
		return fmt.Errorf("failed to stop container %q: %w (stderr: %q)", id, err, strings.TrimSpace(stderr))
	}
	return nil
}

func (c *CLI) RemoveContainer(ctx context.Context, id string) error {
	_, stderr, err := executil.Run(ctx, []string{c.binary, "rm", id})
	if err != nil && !isNotFound(stderr) {
		return fmt.Errorf("failed to remove container %q: %w (stderr: %q)", id, err, strings.TrimSpace(stderr))
	}
	return nil
}

// isNotFound matches the docker CLI diagnostics for missing images,
// containers, and inspect objects ("No such image: ...",
// "No such container: ...", "No such object: ...").
func isNotFound(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "no such ")
}
