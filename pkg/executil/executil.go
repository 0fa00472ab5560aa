// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

// Package executil runs external commands with separately captured
// stdout and stderr.
package executil

import (
	"bytes"
	"context"
	"io"
	"os/exec"
)

type options struct {
	dir   string
	stdin io.Reader
}

type Opt func(*options) error

// WithDir runs the command in the given working directory.
func WithDir(dir string) Opt {
	return func(o *options) error {
		o.dir = dir
		return nil
	}
}

// WithStdin feeds r to the command's standard input.
func WithStdin(r io.Reader) Opt {
	return func(o *options) error {
		o.stdin = r
		return nil
	}
}

// Run executes args[0] with args[1:] and returns the captured stdout and
// stderr. The error is the raw *exec.ExitError (or start failure), so
// callers can inspect the exit code with errors.As.
func Run(ctx context.Context, args []string, opts ...Opt) (stdout, stderr string, err error) {
	var o options
	for _, f := range opts {
		if err := f(&o); err != nil {
			return "", "", err
		}
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = o.dir
	cmd.Stdin = o.stdin
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.String(), errBuf.String(), err
}
