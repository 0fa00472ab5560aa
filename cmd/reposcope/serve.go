// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/reposcope/reposcope/pkg/mcp/toolset"
	"github.com/reposcope/reposcope/pkg/repofs"
	"github.com/reposcope/reposcope/pkg/version"
)

func newServer(repoName string) *mcp.Server {
	impl := &mcp.Implementation{
		Name:    "reposcope-" + repoName,
		Title:   "Reposcope, read-only repository tools with sandboxed semantic search",
		Version: version.Version,
	}
	serverOpts := &mcp.ServerOptions{
		Instructions: `This MCP server provides read-only tools for exploring a repository,
plus a semantic search tool backed by a SeaGOAT index built inside a Docker container.
No tool can modify the repository.
`,
	}
	if runtime.GOOS != "linux" {
		serverOpts.Instructions += fmt.Sprintf(`
NOTE: the analysis container runs Linux, while the host OS is %s.
`, cases.Title(language.English).String(runtime.GOOS))
	}
	return mcp.NewServer(impl, serverOpts)
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve REPO",
		Short: "Serve the repository tools over stdio",
		Long: `Serve the repository tools over stdio.

Blocks until the semantic index is built, then speaks MCP on stdin/stdout.
Expected to be executed via an AI agent, not by a human.`,
		Args: cobra.ExactArgs(1),
		RunE: serveAction,
	}
	cmd.Flags().Bool("no-search", false, "Serve only the read tools, without building the semantic index")
	return cmd
}

func serveAction(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	noSearch, err := cmd.Flags().GetBool("no-search")
	if err != nil {
		return err
	}

	sg, repoPath, err := newOrchestrator(args[0])
	if err != nil {
		return err
	}
	repo, err := repofs.New(repoPath)
	if err != nil {
		return err
	}

	var searcher toolset.Searcher
	if noSearch {
		logrus.Info("Skipping the semantic index; serving read tools only")
	} else {
		defer func() {
			if err := sg.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to clean up the analysis container")
			}
		}()
		if err := sg.Run(ctx); err != nil {
			return err
		}
		searcher = sg
	}

	server := newServer(filepath.Base(repoPath))
	ts := toolset.New(repo, searcher)
	if err := ts.RegisterServer(server); err != nil {
		return err
	}
	logrus.Infof("Serving MCP for %q over stdio", repoPath)
	return server.Run(ctx, &mcp.StdioTransport{})
}
