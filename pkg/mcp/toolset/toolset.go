// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

// Package toolset implements the rri tools over a repofs view and a
// seagoat analysis instance.
package toolset

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/reposcope/reposcope/pkg/mcp/rri"
	"github.com/reposcope/reposcope/pkg/repofs"
	"github.com/reposcope/reposcope/pkg/seagoat"
)

// Searcher executes one semantic query. *seagoat.Seagoat satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string) ([]seagoat.Hit, error)
}

func New(repo *repofs.Repo, searcher Searcher) *ToolSet {
	return &ToolSet{
		repo:     repo,
		searcher: searcher,
	}
}

type ToolSet struct {
	repo     *repofs.Repo
	searcher Searcher
}

func (ts *ToolSet) RegisterServer(server *mcp.Server) error {
	mcp.AddTool(server, rri.ReadFiles, ts.ReadFiles)
	mcp.AddTool(server, rri.ReadFileLines, ts.ReadFileLines)
	mcp.AddTool(server, rri.ReadDirs, ts.ReadDirs)
	mcp.AddTool(server, rri.TreeDir, ts.TreeDir)
	mcp.AddTool(server, rri.Search, ts.Search)
	return nil
}

func (ts *ToolSet) ReadFiles(_ context.Context,
	_ *mcp.CallToolRequest, args rri.ReadFilesParams,
) (*mcp.CallToolResult, *rri.ReadFilesResult, error) {
	res := &rri.ReadFilesResult{
		Files: ts.repo.ReadFiles(args.FilePaths),
	}
	return &mcp.CallToolResult{
		StructuredContent: res,
	}, res, nil
}

func (ts *ToolSet) ReadFileLines(_ context.Context,
	_ *mcp.CallToolRequest, args rri.ReadFileLinesParams,
) (*mcp.CallToolResult, *repofs.FileChunk, error) {
	chunk := ts.repo.ReadFileLines(args.FilePath, args.StartLine, args.EndLine)
	return &mcp.CallToolResult{
		StructuredContent: &chunk,
	}, &chunk, nil
}

func (ts *ToolSet) ReadDirs(_ context.Context,
	_ *mcp.CallToolRequest, args rri.ReadDirsParams,
) (*mcp.CallToolResult, *rri.ReadDirsResult, error) {
	res := &rri.ReadDirsResult{
		Dirs: ts.repo.ReadDirs(args.DirPaths),
	}
	return &mcp.CallToolResult{
		StructuredContent: res,
	}, res, nil
}

func (ts *ToolSet) TreeDir(_ context.Context,
	_ *mcp.CallToolRequest, args rri.TreeDirParams,
) (*mcp.CallToolResult, *repofs.DirTree, error) {
	depth := args.Depth
	if depth == 0 {
		depth = 1
	}
	tree := ts.repo.Tree(args.DirPath, depth)
	return &mcp.CallToolResult{
		StructuredContent: &tree,
	}, &tree, nil
}

// Search degrades failures to an in-band error with empty results, so
// an agent can keep using the read tools when the analysis instance is
// unavailable.
func (ts *ToolSet) Search(ctx context.Context,
	_ *mcp.CallToolRequest, args rri.SearchParams,
) (*mcp.CallToolResult, *rri.SearchResults, error) {
	res := &rri.SearchResults{Results: []rri.SearchResult{}}
	if ts.searcher == nil {
		res.Error = "search is not available: no analysis instance"
	} else if hits, err := ts.searcher.Search(ctx, args.Query); err != nil {
		res.Error = err.Error()
	} else {
		res.Results = make([]rri.SearchResult, len(hits))
		for i, h := range hits {
			res.Results[i] = rri.SearchResult{
				File:      h.File,
				StartLine: h.StartLine,
				EndLine:   h.EndLine,
				Code:      h.Code,
			}
		}
	}
	return &mcp.CallToolResult{
		StructuredContent: res,
	}, res, nil
}
