// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

package dockerutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

// stubDocker writes an executable shell script standing in for the
// docker CLI and returns a Client backed by it.
func stubDocker(t *testing.T, script string) *CLI {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "docker")
	assert.NilError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return NewCLI(path)
}

func TestNewCLIDefaultBinary(t *testing.T) {
	assert.Equal(t, NewCLI("").binary, DefaultBinary)
	assert.Equal(t, NewCLI("podman").binary, "podman")
}

func TestImageExists(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		c := stubDocker(t, `echo "sha256:deadbeef"`)
		ok, err := c.ImageExists(context.Background(), "img:tag")
		assert.NilError(t, err)
		assert.Assert(t, ok)
	})

	t.Run("not found", func(t *testing.T) {
		c := stubDocker(t, `echo "Error: No such image: img:tag" >&2; exit 1`)
		ok, err := c.ImageExists(context.Background(), "img:tag")
		assert.NilError(t, err)
		assert.Assert(t, !ok)
	})

	t.Run("daemon error", func(t *testing.T) {
		c := stubDocker(t, `echo "Cannot connect to the Docker daemon" >&2; exit 1`)
		_, err := c.ImageExists(context.Background(), "img:tag")
		assert.ErrorContains(t, err, "failed to inspect image")
	})
}

func TestBuildImageReadsContextFromStdin(t *testing.T) {
	c := stubDocker(t, `cat >/dev/null; echo "Successfully built"`)
	log, err := c.BuildImage(context.Background(), "img:tag", strings.NewReader("tar bytes"))
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(log, "Successfully built"))
}

func TestBuildImageFailureKeepsLog(t *testing.T) {
	c := stubDocker(t, `echo "Step 3/7"; echo "pip failed" >&2; exit 1`)
	log, err := c.BuildImage(context.Background(), "img:tag", strings.NewReader(""))
	assert.ErrorContains(t, err, "failed to build image")
	assert.Assert(t, strings.Contains(log, "Step 3/7"))
	assert.Assert(t, strings.Contains(log, "pip failed"))
}

func TestRunContainerTrimsID(t *testing.T) {
	c := stubDocker(t, `echo "c0ffee123456"`)
	id, err := c.RunContainer(context.Background(), "img:tag")
	assert.NilError(t, err)
	assert.Equal(t, id, "c0ffee123456")
}

func TestContainerRunning(t *testing.T) {
	t.Run("running", func(t *testing.T) {
		c := stubDocker(t, `echo "true"`)
		running, err := c.ContainerRunning(context.Background(), "c0ffee")
		assert.NilError(t, err)
		assert.Assert(t, running)
	})

	t.Run("exited", func(t *testing.T) {
		c := stubDocker(t, `echo "false"`)
		running, err := c.ContainerRunning(context.Background(), "c0ffee")
		assert.NilError(t, err)
		assert.Assert(t, !running)
	})

	t.Run("removed", func(t *testing.T) {
		c := stubDocker(t, `echo "Error: No such container: c0ffee" >&2; exit 1`)
		running, err := c.ContainerRunning(context.Background(), "c0ffee")
		assert.NilError(t, err)
		assert.Assert(t, !running)
	})
}

func TestContainerLogsCombinesStreams(t *testing.T) {
	c := stubDocker(t, `echo "out line"; echo "err line" >&2`)
	logs, err := c.ContainerLogs(context.Background(), "c0ffee")
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(logs, "out line"))
	assert.Assert(t, strings.Contains(logs, "err line"))
}

func TestExecMapsExitCode(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := stubDocker(t, `echo "a.py:1:import os"`)
		res, err := c.Exec(context.Background(), "c0ffee", []string{"seagoat", "q"})
		assert.NilError(t, err)
		assert.Equal(t, res.ExitCode, 0)
		assert.Equal(t, res.Stdout, "a.py:1:import os\n")
	})

	t.Run("non-zero exit is not a Go error", func(t *testing.T) {
		c := stubDocker(t, `echo "boom" >&2; exit 3`)
		res, err := c.Exec(context.Background(), "c0ffee", []string{"seagoat", "q"})
		assert.NilError(t, err)
		assert.Equal(t, res.ExitCode, 3)
		assert.Equal(t, res.Stderr, "boom\n")
	})
}

func TestStopAndRemoveTolerateMissingContainer(t *testing.T) {
	c := stubDocker(t, `echo "Error response from daemon: No such container: c0ffee" >&2; exit 1`)
	assert.NilError(t, c.StopContainer(context.Background(), "c0ffee"))
	assert.NilError(t, c.RemoveContainer(context.Background(), "c0ffee"))
}
