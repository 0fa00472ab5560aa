// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newPrepareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepare REPO",
		Short: "Build (or reuse) the analysis image without starting a container",
		Long: `Build (or reuse) the analysis image without starting a container.

The image tag is derived from the repository content, so a later serve
or search over unchanged content reuses the image instead of rebuilding.`,
		Args: cobra.ExactArgs(1),
		RunE: prepareAction,
	}
	return cmd
}

func prepareAction(cmd *cobra.Command, args []string) error {
	sg, _, err := newOrchestrator(args[0])
	if err != nil {
		return err
	}
	if err := sg.Prepare(cmd.Context()); err != nil {
		return err
	}
	logrus.Infof("Image %q is ready", sg.Tag())
	return nil
}
