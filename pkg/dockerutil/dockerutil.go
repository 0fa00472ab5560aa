// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

// Package dockerutil abstracts the container runtime used for sandboxed
// repository analysis.
//
// The Client interface is intentionally narrow: it covers exactly the
// operations the analysis orchestrator needs (build, cache lookup, run,
// state, cumulative logs, one-shot exec, stop, remove). Keeping it an
// interface isolates the unstructured text protocol of the underlying
// runtime, so a structured status channel could replace it without
// touching callers.
package dockerutil

import (
	"context"
	"io"
)

// ExecResult is the outcome of a one-shot command execution inside a
// running container.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Client is the container runtime boundary.
type Client interface {
	// ImageExists reports whether an image with the given tag is present
	// in the local image store.
	ImageExists(ctx context.Context, tag string) (bool, error)

	// BuildImage builds an image from the tar build context and tags it.
	// The returned log contains the build output; it is populated on
	// failure too.
	BuildImage(ctx context.Context, tag string, buildContext io.Reader) (log string, err error)

	// RunContainer starts a detached container from the image and returns
	// its ID.
	RunContainer(ctx context.Context, image string) (id string, err error)

	// ContainerRunning reports whether the container is still in the
	// running state. A removed or unknown container counts as not running.
	ContainerRunning(ctx context.Context, id string) (bool, error)

	// ContainerLogs returns the container's cumulative output (stdout and
	// stderr combined) since it started.
	ContainerLogs(ctx context.Context, id string) (string, error)

	// Exec runs argv synchronously inside the running container.
	// A non-zero exit code of argv is reported via ExecResult, not err.
	Exec(ctx context.Context, id string, argv []string) (ExecResult, error)

	// StopContainer stops the container. An already removed container is
	// not an error.
	StopContainer(ctx context.Context, id string) error

	// RemoveContainer removes the container. An already removed container
	// is not an error.
	RemoveContainer(ctx context.Context, id string) error
}
