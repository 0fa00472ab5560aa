// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

package repofs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func newTestRepo(t *testing.T, files map[string]string) *Repo {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		assert.NilError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		assert.NilError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	repo, err := New(dir)
	assert.NilError(t, err)
	return repo
}

func TestNewRejectsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	assert.NilError(t, os.WriteFile(file, nil, 0o644))

	_, err := New(file)
	assert.ErrorContains(t, err, "not a directory")
}

func TestReadFiles(t *testing.T) {
	repo := newTestRepo(t, map[string]string{
		"a.txt":     "one\ntwo\nthree\n",
		"no-eol.md": "first\nlast",
	})

	chunks := repo.ReadFiles([]string{"a.txt", "no-eol.md", "missing.go"})
	assert.Equal(t, len(chunks), 3)

	assert.DeepEqual(t, chunks[0], FileChunk{
		FilePath: "a.txt", StartLine: 1, EndLine: 3, Content: "one\ntwo\nthree\n",
	})
	assert.DeepEqual(t, chunks[1], FileChunk{
		FilePath: "no-eol.md", StartLine: 1, EndLine: 2, Content: "first\nlast",
	})
	assert.Equal(t, chunks[2].Error, "File not found: missing.go")
	assert.Equal(t, chunks[2].StartLine, 0)
	assert.Equal(t, chunks[2].EndLine, 0)
}

func TestReadFilesEmptyFile(t *testing.T) {
	repo := newTestRepo(t, map[string]string{"empty": ""})

	chunks := repo.ReadFiles([]string{"empty"})
	assert.DeepEqual(t, chunks[0], FileChunk{
		FilePath: "empty", StartLine: 1, EndLine: 0, Content: "",
	})
}

func TestReadFileLines(t *testing.T) {
	repo := newTestRepo(t, map[string]string{
		"f.txt": "l1\nl2\nl3\nl4\nl5\n",
	})

	testCases := []struct {
		name       string
		start, end int
		expected   FileChunk
	}{
		{
			name: "interior range", start: 2, end: 4,
			expected: FileChunk{FilePath: "f.txt", StartLine: 2, EndLine: 4, Content: "l2\nl3\nl4\n"},
		},
		{
			name: "whole file", start: 1, end: 5,
			expected: FileChunk{FilePath: "f.txt", StartLine: 1, EndLine: 5, Content: "l1\nl2\nl3\nl4\nl5\n"},
		},
		{
			name: "end clamped down", start: 4, end: 99,
			expected: FileChunk{FilePath: "f.txt", StartLine: 4, EndLine: 5, Content: "l4\nl5\n"},
		},
		{
			name: "start clamped up", start: -3, end: 2,
			expected: FileChunk{FilePath: "f.txt", StartLine: 1, EndLine: 2, Content: "l1\nl2\n"},
		},
		{
			name: "start past end of file", start: 99, end: 100,
			expected: FileChunk{FilePath: "f.txt", StartLine: 5, EndLine: 5, Content: "l5\n"},
		},
		{
			name: "inverted range collapses to start", start: 4, end: 2,
			expected: FileChunk{FilePath: "f.txt", StartLine: 4, EndLine: 4, Content: "l4\n"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.DeepEqual(t, repo.ReadFileLines("f.txt", tc.start, tc.end), tc.expected)
		})
	}
}

func TestReadFileLinesMissingFile(t *testing.T) {
	repo := newTestRepo(t, nil)
	chunk := repo.ReadFileLines("gone.txt", 1, 10)
	assert.Equal(t, chunk.Error, "File not found: gone.txt")
}

func TestReadFileLinesEmptyFile(t *testing.T) {
	repo := newTestRepo(t, map[string]string{"empty": ""})
	assert.DeepEqual(t, repo.ReadFileLines("empty", 1, 10), FileChunk{
		FilePath: "empty", StartLine: 1, EndLine: 1, Content: "",
	})
}

func TestPathTraversalStaysInsideRoot(t *testing.T) {
	repo := newTestRepo(t, map[string]string{"inside.txt": "safe\n"})

	// "../" sequences resolve against the root, not the parent.
	chunk := repo.ReadFileLines("../../inside.txt", 1, 1)
	assert.Equal(t, chunk.Error, "")
	assert.Equal(t, chunk.Content, "safe\n")
}

func TestReadDirs(t *testing.T) {
	repo := newTestRepo(t, map[string]string{
		"src/main.go":  "package main\n",
		"src/util.go":  "package main\n",
		"docs/read.md": "# docs\n",
	})

	listings := repo.ReadDirs([]string{"src", "nope"})
	assert.Equal(t, len(listings), 2)

	assert.DeepEqual(t, listings[0], DirEntries{
		DirPath: "src", Entries: []string{"main.go", "util.go"},
	})
	assert.Equal(t, listings[1].DirPath, "nope")
	assert.Equal(t, len(listings[1].Entries), 0)
	assert.Assert(t, strings.HasPrefix(listings[1].Error, "Error reading directory:"))
}

func TestTree(t *testing.T) {
	repo := newTestRepo(t, map[string]string{
		"src/main.go":         "package main\n",
		"src/inner/util.go":   "package inner\n",
		"src/inner/deep/f.go": "package deep\n",
	})

	t.Run("depth 1", func(t *testing.T) {
		res := repo.Tree("src", 1)
		assert.Equal(t, res.Error, "")
		assert.DeepEqual(t, res.Tree, []string{"src", "src/inner", "src/main.go"})
	})

	t.Run("depth 2 descends one level further", func(t *testing.T) {
		res := repo.Tree("src", 2)
		assert.DeepEqual(t, res.Tree, []string{
			"src", "src/inner", "src/inner/deep", "src/inner/util.go", "src/main.go",
		})
	})

	t.Run("missing directory", func(t *testing.T) {
		res := repo.Tree("nope", 1)
		assert.Equal(t, res.Error, "Error: Directory not found at 'nope'")
		assert.Equal(t, len(res.Tree), 0)
	})

	t.Run("file is not a tree root", func(t *testing.T) {
		res := repo.Tree("src/main.go", 1)
		assert.Equal(t, res.Error, "Error: Directory not found at 'src/main.go'")
	})
}

func TestTreeEntryCap(t *testing.T) {
	files := map[string]string{}
	for i := range 150 {
		files[fmt.Sprintf("big/f%03d.txt", i)] = "x"
	}
	repo := newTestRepo(t, files)

	res := repo.Tree("big", 1)
	assert.Equal(t, res.Error, "")
	assert.Equal(t, len(res.Tree), MaxTreeEntries)
	assert.Equal(t, res.Tree[0], "big")
}
