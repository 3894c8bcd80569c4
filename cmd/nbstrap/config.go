// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"nbstrap/internal/config"
	"nbstrap/internal/issue"
	"nbstrap/internal/project"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `nbstrap config` command tree.
func newConfigCommand() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage nbstrap configuration",
		Long: `Manage nbstrap configuration.

User-level configuration is stored in:
  - Linux: ~/.config/nbstrap/config.cue
  - macOS: ~/Library/Application Support/nbstrap/config.cue
  - Windows: %APPDATA%\nbstrap\config.cue

Per-project settings live in nbstrap.toml in the project directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the user config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigFilePath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a starter nbstrap.toml in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initProjectFile()
		},
	})

	return cfgCmd
}

func showConfig() error {
	cfg, err := config.Load()
	if err != nil {
		if entry := issue.Get(issue.ConfigLoadFailedId); entry != nil {
			if rendered, renderErr := entry.Render("dark"); renderErr == nil {
				fmt.Fprint(os.Stderr, rendered)
			}
		}
		return err
	}

	fmt.Println(TitleStyle.Render("Effective configuration"))
	fmt.Printf("  python.preferred:    %s\n", cfg.Python.Preferred)
	fmt.Printf("  python.fallback:     %s\n", cfg.Python.Fallback)
	fmt.Printf("  venv_dir:            %s\n", cfg.VenvDir)
	fmt.Printf("  requirements:        %s\n", cfg.Requirements)
	fmt.Printf("  kernel.name:         %s\n", cfg.Kernel.Name)
	fmt.Printf("  kernel.display_name: %s\n", cfg.Kernel.DisplayName)
	fmt.Printf("  notebook_packages:   %s\n", strings.Join(cfg.NotebookPackages, ", "))
	return nil
}

// initProjectFile writes a starter project file seeded from the user-level
// configuration.
func initProjectFile() error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}

	path, err := project.Write(wd, &project.Project{
		Python:       cfg.Python.Preferred,
		VenvDir:      cfg.VenvDir,
		Requirements: cfg.Requirements,
		Kernel: project.Kernel{
			Name:        cfg.Kernel.Name,
			DisplayName: cfg.Kernel.DisplayName,
		},
	})
	if err != nil {
		return reportError(err)
	}

	fmt.Println(SuccessStyle.Render("Created ") + CmdStyle.Render(path))
	return nil
}
