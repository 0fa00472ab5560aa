// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/reposcope/reposcope/pkg/mcp/toolset"
)

func newInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show information about the MCP server",
		Args:  cobra.NoArgs,
		RunE:  infoAction,
	}
	return cmd
}

func infoAction(cmd *cobra.Command, _ []string) error {
	info, err := inspectInfo(cmd.Context())
	if err != nil {
		return err
	}
	j, err := json.MarshalIndent(info, "", "    ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(j))
	return err
}

type Info struct {
	Tools []*mcp.Tool `json:"tools"`
}

// inspectInfo lists the tools by talking to the server over in-memory
// transports, so the output matches what an agent would see.
func inspectInfo(ctx context.Context) (*Info, error) {
	server := newServer("info")
	ts := toolset.New(nil, nil)
	if err := ts.RegisterServer(server); err != nil {
		return nil, err
	}
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		return nil, err
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "client"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		return nil, err
	}
	toolsResult, err := clientSession.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, err
	}
	if err = clientSession.Close(); err != nil {
		return nil, err
	}
	if err = serverSession.Wait(); err != nil {
		return nil, err
	}
	return &Info{Tools: toolsResult.Tools}, nil
}
