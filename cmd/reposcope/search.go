// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search REPO QUERY",
		Short: "Run a one-shot semantic query against a repository",
		Long: `Run a one-shot semantic query against a repository.

Builds the analysis image if needed, waits for the index, runs the
query, prints the hits as JSON, and removes the container. The image is
kept for later runs.`,
		Args: cobra.ExactArgs(2),
		RunE: searchAction,
	}
	cmd.Flags().Bool("plain", false, "Print hits as file:line:code lines instead of JSON")
	return cmd
}

func searchAction(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	plain, err := cmd.Flags().GetBool("plain")
	if err != nil {
		return err
	}

	sg, _, err := newOrchestrator(args[0])
	if err != nil {
		return err
	}
	defer func() {
		if err := sg.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to clean up the analysis container")
		}
	}()

	if err := sg.Run(ctx); err != nil {
		return err
	}
	hits, err := sg.Search(ctx, args[1])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if plain {
		for _, h := range hits {
			fmt.Fprintf(w, "%s:%d-%d:%s\n", h.File, h.StartLine, h.EndLine, h.Code)
		}
		return nil
	}
	j, err := json.MarshalIndent(hits, "", "    ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(j))
	return err
}
