// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for nbstrap.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"nbstrap/internal/config"
	"nbstrap/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// Verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "nbstrap",
		Short: "Provision Python notebook environments",
		Long: TitleStyle.Render("nbstrap") + SubtitleStyle.Render(" - Provision Python notebook environments") + `

nbstrap creates an isolated Python virtual environment, installs the
dependencies declared in a requirements file, and registers the environment
as a Jupyter kernel - in one fail-fast pipeline.

Interpreter selection probes PATH for a preferred Python version and falls
back to the generic python3 when it is missing. Every later step targets the
environment through explicit paths; nothing relies on shell activation.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Put a requirements.txt next to your notebooks
  2. Run: nbstrap up
  3. Pick the registered kernel in Jupyter

` + SubtitleStyle.Render("Examples:") + `
  nbstrap up                       Provision with defaults
  nbstrap up --python python3.12   Prefer a specific interpreter
  nbstrap up --watch               Re-sync deps when requirements change
  nbstrap doctor                   Inspect the current provisioning state
  nbstrap config init              Write a starter nbstrap.toml`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/nbstrap/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newCompletionCommand())
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// fang.Execute provides styled help/errors; version goes through
	// fang.WithVersion since fang overrides rootCmd.Version.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// initRootConfig applies the --config override and config-driven defaults.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	cfg, err := config.Load()
	if err != nil {
		// Always surface config loading errors to the user
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}

	// Apply verbose from config if not set via flag
	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
