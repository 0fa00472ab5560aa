// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

package seagoat

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned by Search when the analysis has not
	// completed yet (Run has not been called, or has not returned).
	ErrNotReady = errors.New("analysis is not complete; call Run before Search")

	// ErrTimeout is returned (wrapped) by Run when the completion marker
	// did not appear within the analysis timeout. The container is left
	// running; Close reclaims it.
	ErrTimeout = errors.New("timed out waiting for the analysis to complete")
)

// BuildError is returned when the image build fails. Log carries the
// build diagnostic output. No image is tagged on failure, so the cache
// never holds a partial entry.
type BuildError struct {
	Tag string
	Log string
	Err error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("failed to build image %q: %v", e.Tag, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// InstanceExitedError is returned when the analysis container stops
// before printing the completion marker. Output is the last observed
// container output.
type InstanceExitedError struct {
	Output string
}

func (e *InstanceExitedError) Error() string {
	return fmt.Sprintf("container stopped unexpectedly during analysis; last output:\n%s", e.Output)
}
