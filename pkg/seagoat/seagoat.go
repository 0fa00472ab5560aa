// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

// Package seagoat orchestrates a sandboxed SeaGOAT analysis of a
// repository: it packages the repository into a content-addressed Docker
// image, runs the analysis container, waits for the background indexing
// to complete, and executes search queries inside the container.
package seagoat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/docker/go-units"
	"github.com/sirupsen/logrus"

	"github.com/reposcope/reposcope/pkg/dockerutil"
)

// completionMarker is printed by seagoat-server when the background
// indexing has finished. It is matched anywhere in the cumulative
// container output; a repository that legitimately prints the same
// string in its own output would be detected early. Accepted limitation
// of the text protocol.
const completionMarker = "Analyzed all chunks!"

// DefaultAnalysisTimeout is the duration to wait for the completion
// marker before Run gives up.
const DefaultAnalysisTimeout = 5 * time.Minute

// DefaultPollInterval is the pause between two container log polls.
const DefaultPollInterval = 1 * time.Second

type Status = string

const (
	StatusUnprepared Status = "Unprepared"
	StatusImageReady Status = "ImageReady"
	StatusRunning    Status = "Running"
	StatusAnalyzed   Status = "Analyzed"
	StatusFailed     Status = "Failed"
	StatusStopped    Status = "Stopped"
)

type options struct {
	analysisTimeout time.Duration
	pollInterval    time.Duration
	templateDir     string
	queryCommand    []string
}

type Opt func(*options) error

// WithAnalysisTimeout overrides DefaultAnalysisTimeout.
func WithAnalysisTimeout(d time.Duration) Opt {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("analysis timeout must be positive, got %v", d)
		}
		o.analysisTimeout = d
		return nil
	}
}

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) Opt {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("poll interval must be positive, got %v", d)
		}
		o.pollInterval = d
		return nil
	}
}

// WithTemplateDir reads the Dockerfile.seagoat and run.sh control-script
// templates from dir instead of the embedded defaults.
func WithTemplateDir(dir string) Opt {
	return func(o *options) error {
		o.templateDir = dir
		return nil
	}
}

// WithQueryCommand overrides the command executed inside the container
// for each query. The query string is appended as the last argument.
// The default is ["seagoat"].
func WithQueryCommand(argv []string) Opt {
	return func(o *options) error {
		if len(argv) == 0 {
			return errors.New("query command must not be empty")
		}
		o.queryCommand = argv
		return nil
	}
}

// Seagoat drives a single analysis instance. One Seagoat owns at most
// one container at any time; it must not be used concurrently from
// multiple goroutines without external serialization. The cached image
// is shared with other orchestrators and processes and is never removed.
type Seagoat struct {
	repoPath string
	docker   dockerutil.Client
	opts     options

	mu          sync.Mutex
	status      Status
	tag         string
	containerID string

	closeOnce sync.Once
	closeErr  error
}

// New creates an orchestrator for the repository at repoPath.
// The repository is snapshotted lazily, at Prepare time.
func New(repoPath string, docker dockerutil.Client, opts ...Opt) (*Seagoat, error) {
	fi, err := os.Stat(repoPath)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("repository path %q is not a directory", repoPath)
	}
	o := options{
		analysisTimeout: DefaultAnalysisTimeout,
		pollInterval:    DefaultPollInterval,
		queryCommand:    []string{"seagoat"},
	}
	for _, f := range opts {
		if err := f(&o); err != nil {
			return nil, err
		}
	}
	return &Seagoat{
		repoPath: repoPath,
		docker:   docker,
		opts:     o,
		status:   StatusUnprepared,
	}, nil
}

// Status returns the current lifecycle state.
func (sg *Seagoat) Status() Status {
	sg.mu.Lock()
	defer sg.mu.Unlock()
	return sg.status
}

// Tag returns the content-addressed image tag. Empty before Prepare.
func (sg *Seagoat) Tag() string {
	sg.mu.Lock()
	defer sg.mu.Unlock()
	return sg.tag
}

// Prepare packages the repository and ensures the analysis image exists,
// building it if the content-addressed tag is not cached yet. Prepare is
// idempotent: once the image is resolved, further calls are no-ops and
// nothing is ever rebuilt.
func (sg *Seagoat) Prepare(ctx context.Context) error {
	sg.mu.Lock()
	defer sg.mu.Unlock()
	return sg.prepareLocked(ctx)
}

func (sg *Seagoat) prepareLocked(ctx context.Context) error {
	if sg.status != StatusUnprepared {
		return nil
	}

	contextTar, err := buildContext(sg.repoPath, sg.opts.templateDir)
	if err != nil {
		return err
	}
	tag := imageTag(contextTar)

	exists, err := sg.docker.ImageExists(ctx, tag)
	if err != nil {
		return err
	}
	if exists {
		logrus.Infof("Found cached analysis image %q", tag)
	} else {
		logrus.Infof("Building analysis image %q (build context: %s)",
			tag, units.BytesSize(float64(len(contextTar))))
		buildLog, err := sg.docker.BuildImage(ctx, tag, bytes.NewReader(contextTar))
		if err != nil {
			return &BuildError{Tag: tag, Log: buildLog, Err: err}
		}
	}

	sg.tag = tag
	sg.status = StatusImageReady
	return nil
}

// Run launches the analysis container and blocks until the background
// indexing completes. It calls Prepare itself if needed. On success the
// orchestrator is Analyzed and Search may be called. On timeout the
// container is deliberately left running so that Close can reclaim it.
func (sg *Seagoat) Run(ctx context.Context) error {
	sg.mu.Lock()
	defer sg.mu.Unlock()

	switch sg.status {
	case StatusAnalyzed:
		return nil
	case StatusRunning, StatusFailed, StatusStopped:
		return fmt.Errorf("cannot run from status %q", sg.status)
	}

	if err := sg.prepareLocked(ctx); err != nil {
		return err
	}

	logrus.Infof("Starting analysis container from image %q", sg.tag)
	id, err := sg.docker.RunContainer(ctx, sg.tag)
	if err != nil {
		return err
	}
	sg.containerID = id
	sg.status = StatusRunning

	logrus.Info("Waiting for the analysis to complete")
	if err := sg.waitForAnalysis(ctx); err != nil {
		if !errors.Is(err, ErrTimeout) {
			sg.status = StatusFailed
		}
		return err
	}
	sg.status = StatusAnalyzed
	logrus.Info("Analysis complete")
	return nil
}

// waitForAnalysis polls the container's cumulative output until the
// completion marker appears. The completion signal is only observable as
// unstructured text on the container's output stream, so polling with
// incremental diffing is the only available mechanism.
func (sg *Seagoat) waitForAnalysis(ctx context.Context) error {
	deadline := time.Now().Add(sg.opts.analysisTimeout)
	var seen int

	for {
		logs, err := sg.docker.ContainerLogs(ctx, sg.containerID)
		if err != nil {
			return err
		}
		// Only the suffix not yet observed is forwarded to the logger.
		if len(logs) > seen {
			for _, line := range strings.Split(strings.TrimRight(logs[seen:], "\n"), "\n") {
				logrus.Debugf("[analysis] %s", line)
			}
			seen = len(logs)
		}

		if strings.Contains(logs, completionMarker) {
			return nil
		}

		running, err := sg.docker.ContainerRunning(ctx, sg.containerID)
		if err != nil {
			return err
		}
		if !running {
			return &InstanceExitedError{Output: logs}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("no completion marker after %v: %w", sg.opts.analysisTimeout, ErrTimeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sg.opts.pollInterval):
		}
	}
}

// Search executes one query inside the running container and parses the
// hits. It returns ErrNotReady unless the analysis has completed.
//
// A query command that exits non-zero is degraded to an empty result:
// the diagnostic output is logged at warn level and no error is
// returned. See the package documentation for the rationale.
func (sg *Seagoat) Search(ctx context.Context, query string) ([]Hit, error) {
	sg.mu.Lock()
	defer sg.mu.Unlock()

	if sg.status != StatusAnalyzed {
		return nil, fmt.Errorf("status is %q: %w", sg.status, ErrNotReady)
	}

	argv := append(append([]string{}, sg.opts.queryCommand...), query)
	res, err := sg.docker.Exec(ctx, sg.containerID, argv)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		logrus.Warnf("Query %q exited with code %d: %s", query, res.ExitCode, strings.TrimSpace(res.Stdout+res.Stderr))
		return []Hit{}, nil
	}
	return parseSearchResults(res.Stdout), nil
}

// Close stops and removes the analysis container. It is idempotent and
// safe to call from any state: when no container was ever started, or
// when the container is already gone, Close is a silent no-op. The
// cached image is deliberately preserved so later runs hit the cache.
func (sg *Seagoat) Close() error {
	sg.closeOnce.Do(func() {
		sg.mu.Lock()
		defer sg.mu.Unlock()
		if sg.containerID == "" {
			sg.status = StatusStopped
			return
		}
		logrus.Infof("Stopping and removing container %q", shortID(sg.containerID))
		// Teardown must proceed even if the surrounding context is gone.
		ctx := context.Background()
		err := sg.docker.StopContainer(ctx, sg.containerID)
		sg.closeErr = errors.Join(err, sg.docker.RemoveContainer(ctx, sg.containerID))
		sg.containerID = ""
		sg.status = StatusStopped
	})
	return sg.closeErr
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
