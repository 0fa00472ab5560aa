// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/reposcope/reposcope/pkg/config"
	"github.com/reposcope/reposcope/pkg/dockerutil"
	"github.com/reposcope/reposcope/pkg/seagoat"
	"github.com/reposcope/reposcope/pkg/version"
)

func main() {
	// A canceled context unwinds the serve loop so that the deferred
	// container cleanup still runs on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp().ExecuteContext(ctx)
	stop()
	if err != nil {
		logrus.Fatal(err)
	}
}

func newApp() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "reposcope",
		Short:   "Reposcope: read-only repository tools with sandboxed semantic search",
		Version: strings.TrimPrefix(version.Version, "v"),
		Example: `  Build (or reuse) the analysis image for a repository:
  $ reposcope prepare ~/src/myrepo

  Run a one-shot query:
  $ reposcope search ~/src/myrepo "where are the taxes calculated"

  Serve the tools over stdio for an AI agent:
  $ reposcope serve ~/src/myrepo`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	rootCmd.PersistentFlags().String("log-level", "", "Set the logging level [trace, debug, info, warn, error]")
	rootCmd.PersistentFlags().String("log-format", "text", "Set the logging format [text, json]")
	rootCmd.PersistentFlags().Bool("debug", false, "Debug mode")
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return processGlobalFlags(rootCmd)
	}
	rootCmd.AddCommand(
		newServeCommand(),
		newPrepareCommand(),
		newSearchCommand(),
		newInfoCommand(),
		newGenDocCommand(),
	)
	return rootCmd
}

func processGlobalFlags(rootCmd *cobra.Command) error {
	// --log-level overrides --debug
	if debug, _ := rootCmd.Flags().GetBool("debug"); debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	l, _ := rootCmd.Flags().GetString("log-level")
	if l != "" {
		lvl, err := logrus.ParseLevel(l)
		if err != nil {
			return err
		}
		logrus.SetLevel(lvl)
	}

	logFormat, _ := rootCmd.Flags().GetString("log-format")
	switch logFormat {
	case "json":
		formatter := new(logrus.JSONFormatter)
		logrus.StandardLogger().SetFormatter(formatter)
	case "text":
		// logrus use text format by default.
		if runtime.GOOS == "windows" && isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			formatter := new(logrus.TextFormatter)
			// the default setting does not recognize cygwin on windows
			formatter.ForceColors = true
			logrus.StandardLogger().SetFormatter(formatter)
		}
	default:
		return fmt.Errorf("unsupported log-format: %q", logFormat)
	}
	return nil
}

// newOrchestrator resolves the repository path, loads its optional
// config file, and wires up the orchestrator.
func newOrchestrator(repoPath string) (*seagoat.Seagoat, string, error) {
	repoPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, "", err
	}
	fi, err := os.Stat(repoPath)
	if err != nil {
		return nil, "", err
	}
	if !fi.IsDir() {
		return nil, "", fmt.Errorf("path %q is not a directory", repoPath)
	}

	cfg, err := config.LoadForRepo(repoPath)
	if err != nil {
		return nil, "", err
	}
	opts, err := cfg.SeagoatOpts()
	if err != nil {
		return nil, "", err
	}
	docker := dockerutil.NewCLI(cfg.Docker)
	sg, err := seagoat.New(repoPath, docker, opts...)
	if err != nil {
		return nil, "", err
	}
	return sg, repoPath, nil
}
