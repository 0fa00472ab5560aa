// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

// Package rri provides the "Repository Read Interface":
// MCP (Model Context Protocol) tool definitions for reading and
// semantically searching a repository. Only read tools are defined;
// the interface deliberately has no way to mutate the repository.
//
// All paths in parameters and results are relative to the repository
// root. Per-path failures are reported in-band in the result's error
// fields, so a batch call never fails as a whole because of one bad
// path.
package rri

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/reposcope/reposcope/pkg/repofs"
)

var ReadFiles = &mcp.Tool{
	Name:        "read_files",
	Description: `Read multiple files from the repository. Returns the entire content of each file with its line range.`,
}

type ReadFilesParams struct {
	FilePaths []string `json:"file_paths" jsonschema:"Paths of the files to read, relative to the repository root."`
}

type ReadFilesResult struct {
	Files []repofs.FileChunk `json:"files" jsonschema:"One chunk per requested path, in request order."`
}

var ReadFileLines = &mcp.Tool{
	Name:        "read_file_lines",
	Description: `Read a line range of a single file from the repository. Out-of-range bounds are clamped to the file.`,
}

type ReadFileLinesParams struct {
	FilePath  string `json:"file_path" jsonschema:"Path of the file to read, relative to the repository root."`
	StartLine int    `json:"start_line" jsonschema:"First line to read, 1-based inclusive."`
	EndLine   int    `json:"end_line" jsonschema:"Last line to read, 1-based inclusive."`
}

var ReadDirs = &mcp.Tool{
	Name:        "read_dirs",
	Description: `List entries of multiple directories relative to the repository root (non-recursive).`,
}

type ReadDirsParams struct {
	DirPaths []string `json:"dir_paths" jsonschema:"Paths of the directories to list, relative to the repository root."`
}

type ReadDirsResult struct {
	Dirs []repofs.DirEntries `json:"dirs" jsonschema:"One listing per requested path, in request order."`
}

var TreeDir = &mcp.Tool{
	Name:        "tree_dir",
	Description: `List directory entries relative to the repository root, recursing up to the given depth. Max entries is 100.`,
}

type TreeDirParams struct {
	DirPath string `json:"dir_path" jsonschema:"Path of the directory to walk, relative to the repository root."`
	Depth   int    `json:"depth,omitempty" jsonschema:"How many levels to descend below dir_path. Defaults to 1."`
}

var Search = &mcp.Tool{
	Name: "search",
	Description: `Searches the repository using a natural language query. You can mix regular expressions with natural language.

**Query Examples:**

- **Natural Language:**
    - "Where are the numbers rounded"
- **Natural Language + Regex:**
    - "function calc_.* that deals with taxes"
    - "function db_.* that initializes database"
- **Regex:**
    - "class .*Service implements .*Discount"
    - "function (get|create|update|delete)Category"
`,
}

type SearchParams struct {
	Query string `json:"query" jsonschema:"The natural-language query, optionally mixed with regular expressions."`
}

// SearchResult is one line-ranged code excerpt matching the query.
type SearchResult struct {
	File      string `json:"file" jsonschema:"Path of the matching file, relative to the repository root."`
	StartLine int    `json:"start_line" jsonschema:"First matching line, 1-based inclusive."`
	EndLine   int    `json:"end_line" jsonschema:"Last matching line, 1-based inclusive."`
	Code      string `json:"code" jsonschema:"The matching source lines, joined with newlines."`
}

type SearchResults struct {
	Results []SearchResult `json:"results" jsonschema:"Matching excerpts, best matches first."`
	Error   string         `json:"error,omitempty" jsonschema:"Set when the query could not be executed; Results is then empty."`
}
