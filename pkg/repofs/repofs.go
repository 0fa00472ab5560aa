// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

// Package repofs provides contained read-only access to a repository
// directory. All paths are interpreted relative to the repository root
// and are joined with filepath-securejoin, so traversal sequences
// cannot escape the root.
//
// Per-path failures are reported in-band, in the Error field of the
// result, rather than as Go errors: a batch request over many paths
// must not fail as a whole because one path is bad.
package repofs

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// MaxTreeEntries caps the number of paths returned by a single Tree
// call, counting the root entry.
const MaxTreeEntries = 100

// FileChunk is a contiguous, 1-based inclusive line range of a file.
// A whole-file chunk has StartLine 1 and EndLine equal to the line
// count. A failed read has a zeroed range and a non-empty Error.
type FileChunk struct {
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Content   string `json:"content"`
	Error     string `json:"error,omitempty"`
}

// DirEntries is a non-recursive listing of a single directory.
type DirEntries struct {
	DirPath string   `json:"dir_path"`
	Entries []string `json:"entries"`
	Error   string   `json:"error,omitempty"`
}

// DirTree is a depth-limited walk rooted at DirPath. Tree holds paths
// relative to the repository root, the walk root itself first.
type DirTree struct {
	DirPath string   `json:"dir_path"`
	Tree    []string `json:"tree"`
	Error   string   `json:"error,omitempty"`
}

// Repo is a read-only view of a repository directory.
type Repo struct {
	root string
}

// New validates that root is a directory and returns a view of it.
func New(root string) (*Repo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(absRoot)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("repository path %q is not a directory", root)
	}
	return &Repo{root: absRoot}, nil
}

// Root returns the absolute repository root.
func (r *Repo) Root() string {
	return r.root
}

// join resolves a repository-relative path inside the root.
func (r *Repo) join(rel string) (string, error) {
	return securejoin.SecureJoin(r.root, rel)
}

// ReadFiles reads whole files. Each requested path yields exactly one
// chunk, in request order; unreadable paths yield a chunk with Error
// set instead of failing the batch.
func (r *Repo) ReadFiles(filePaths []string) []FileChunk {
	chunks := make([]FileChunk, 0, len(filePaths))
	for _, filePath := range filePaths {
		chunks = append(chunks, r.readFile(filePath))
	}
	return chunks
}

func (r *Repo) readFile(filePath string) FileChunk {
	abs, err := r.join(filePath)
	if err != nil {
		return fileChunkError(filePath, fmt.Sprintf("Error reading file: %v", err))
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return fileChunkError(filePath, fmt.Sprintf("File not found: %s", filePath))
		}
		return fileChunkError(filePath, fmt.Sprintf("Error reading file: %v", err))
	}
	content := string(b)
	return FileChunk{
		FilePath:  filePath,
		StartLine: 1,
		EndLine:   countLines(content),
		Content:   content,
	}
}

// ReadFileLines reads a clamped 1-based inclusive line range. Both
// bounds are forced into the file's range: StartLine of the result is
// max(1, min(start, lines)) and EndLine is max(StartLine, min(end,
// lines)). An empty file yields an empty chunk with range 1..1.
func (r *Repo) ReadFileLines(filePath string, startLine, endLine int) FileChunk {
	abs, err := r.join(filePath)
	if err != nil {
		return fileChunkError(filePath, fmt.Sprintf("Error reading file: %v", err))
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return fileChunkError(filePath, fmt.Sprintf("File not found: %s", filePath))
		}
		return fileChunkError(filePath, fmt.Sprintf("Error reading file: %v", err))
	}
	lines := splitLines(string(b))

	start := max(1, min(startLine, len(lines)))
	end := max(start, min(endLine, len(lines)))

	var content string
	if start <= len(lines) {
		content = strings.Join(lines[start-1:end], "")
	}
	return FileChunk{
		FilePath:  filePath,
		StartLine: start,
		EndLine:   end,
		Content:   content,
	}
}

// ReadDirs lists directories non-recursively, one listing per
// requested path, in request order.
func (r *Repo) ReadDirs(dirPaths []string) []DirEntries {
	listings := make([]DirEntries, 0, len(dirPaths))
	for _, dirPath := range dirPaths {
		listings = append(listings, r.readDir(dirPath))
	}
	return listings
}

func (r *Repo) readDir(dirPath string) DirEntries {
	abs, err := r.join(dirPath)
	if err != nil {
		return DirEntries{DirPath: dirPath, Entries: []string{}, Error: fmt.Sprintf("Error reading directory: %v", err)}
	}
	ents, err := os.ReadDir(abs)
	if err != nil {
		return DirEntries{DirPath: dirPath, Entries: []string{}, Error: fmt.Sprintf("Error reading directory: %v", err)}
	}
	names := make([]string, len(ents))
	for i, ent := range ents {
		names[i] = ent.Name()
	}
	return DirEntries{DirPath: dirPath, Entries: names}
}

// Tree walks dirPath up to depth levels below it and returns the
// visited paths, the walk root first, capped at MaxTreeEntries total.
// Entries within a directory are visited in name order. Subtrees that
// become unreadable mid-walk are skipped silently.
func (r *Repo) Tree(dirPath string, depth int) DirTree {
	abs, err := r.join(dirPath)
	if err != nil {
		return DirTree{DirPath: dirPath, Tree: []string{}, Error: fmt.Sprintf("Error processing directory '%s': %v", dirPath, err)}
	}
	fi, err := os.Stat(abs)
	if err != nil || !fi.IsDir() {
		return DirTree{DirPath: dirPath, Tree: []string{}, Error: fmt.Sprintf("Error: Directory not found at '%s'", dirPath)}
	}

	tree := []string{dirPath}
	r.walkTree(&tree, abs, dirPath, 1, depth)
	return DirTree{DirPath: dirPath, Tree: tree}
}

func (r *Repo) walkTree(tree *[]string, absDir, relDir string, level, depth int) {
	if len(*tree) >= MaxTreeEntries || level > depth {
		return
	}
	ents, err := os.ReadDir(absDir)
	if err != nil {
		return
	}
	sort.Slice(ents, func(i, j int) bool { return ents[i].Name() < ents[j].Name() })
	for _, ent := range ents {
		if len(*tree) >= MaxTreeEntries {
			return
		}
		rel := path.Join(relDir, ent.Name())
		*tree = append(*tree, rel)
		if ent.IsDir() {
			r.walkTree(tree, filepath.Join(absDir, ent.Name()), rel, level+1, depth)
		}
	}
}

func fileChunkError(filePath, msg string) FileChunk {
	return FileChunk{FilePath: filePath, Error: msg}
}

// countLines counts lines the way a line-oriented reader does: a
// trailing newline does not open a final empty line.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// splitLines splits content into lines that keep their trailing
// newline, so joining a sub-range reproduces the original bytes.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
