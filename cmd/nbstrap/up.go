// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"nbstrap/internal/bootstrap"
	"nbstrap/internal/config"
	"nbstrap/internal/issue"
	"nbstrap/internal/project"
	"nbstrap/internal/watch"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	upPython       string
	upVenvDir      string
	upRequirements string
	upKernelName   string
	upDisplayName  string
	upSkipKernel   bool
	upDryRun       bool
	upWatch        bool

	upCmd = &cobra.Command{
		Use:   "up",
		Short: "Provision the environment and register its kernel",
		Long: `Run the full bootstrap pipeline:

  1. Select a Python interpreter (preferred version, else python3)
  2. Report the selected interpreter's version
  3. Create the virtual environment (reused when it already exists)
  4. Upgrade pip inside the environment
  5. Install the requirements file plus notebook packages
  6. Register the environment as a user-scoped Jupyter kernel

The pipeline stops at the first failing step and names it. Settings come
from flags, then nbstrap.toml in the working directory, then the user
config file, then built-in defaults.`,
		Args: cobra.NoArgs,
		RunE: runUp,
	}
)

func init() {
	upCmd.Flags().StringVar(&upPython, "python", "", "preferred interpreter identifier or path")
	upCmd.Flags().StringVar(&upVenvDir, "venv-dir", "", "virtual environment directory")
	upCmd.Flags().StringVar(&upRequirements, "requirements", "", "requirements file path")
	upCmd.Flags().StringVar(&upKernelName, "kernel-name", "", "internal kernel name")
	upCmd.Flags().StringVar(&upDisplayName, "display-name", "", "kernel display label")
	upCmd.Flags().BoolVar(&upSkipKernel, "skip-kernel", false, "skip kernel registration")
	upCmd.Flags().BoolVar(&upDryRun, "dry-run", false, "print the plan without running anything")
	upCmd.Flags().BoolVar(&upWatch, "watch", false, "keep running and re-sync deps when the requirements file changes")
}

func runUp(cmd *cobra.Command, _ []string) error {
	opts, err := resolveUpOptions(cmd)
	if err != nil {
		return reportError(err)
	}

	b := bootstrap.New(opts)

	if upDryRun {
		printPlan(b.Plan())
		return nil
	}

	outcome := b.Run(cmd.Context())
	if !outcome.Success() {
		return reportStepFailure(outcome)
	}

	fmt.Println(SuccessStyle.Render("✓ Environment ready.") +
		" Virtual environment at " + CmdStyle.Render(opts.VenvDir) + ".")
	if !opts.SkipKernel {
		fmt.Println("  Kernel " + CmdStyle.Render(opts.KernelName) +
			" registered as " + CmdStyle.Render(opts.KernelDisplayName) + ".")
	}

	if upWatch {
		return watchRequirements(cmd, b, opts)
	}
	return nil
}

// resolveUpOptions layers settings: flags > nbstrap.toml > user config >
// built-in defaults.
func resolveUpOptions(cmd *cobra.Command) (bootstrap.Options, error) {
	cfg, err := config.Load()
	if err != nil {
		// Already warned during init; fall back to defaults.
		cfg = config.DefaultConfig()
	}

	wd, err := os.Getwd()
	if err != nil {
		return bootstrap.Options{}, fmt.Errorf("failed to determine working directory: %w", err)
	}

	proj, _, err := project.Load(wd)
	if err != nil {
		return bootstrap.Options{}, err
	}

	opts := bootstrap.Options{
		Preferred:         cfg.Python.Preferred,
		Fallback:          cfg.Python.Fallback,
		VenvDir:           cfg.VenvDir,
		Requirements:      cfg.Requirements,
		NotebookPackages:  cfg.NotebookPackages,
		KernelName:        cfg.Kernel.Name,
		KernelDisplayName: cfg.Kernel.DisplayName,
		WorkDir:           wd,
		Stdout:            os.Stdout,
		Stderr:            os.Stderr,
		Logger:            newLogger(),
	}

	if proj != nil {
		if proj.Python != "" {
			opts.Preferred = proj.Python
		}
		if proj.Fallback != "" {
			opts.Fallback = proj.Fallback
		}
		if proj.VenvDir != "" {
			opts.VenvDir = proj.VenvDir
		}
		if proj.Requirements != "" {
			opts.Requirements = proj.Requirements
		}
		if proj.Kernel.Name != "" {
			opts.KernelName = proj.Kernel.Name
		}
		if proj.Kernel.DisplayName != "" {
			opts.KernelDisplayName = proj.Kernel.DisplayName
		}
		opts.ExtraPackages = proj.ExtraPackages
		opts.PostUpHook = proj.Hooks.PostUp
	}

	flags := cmd.Flags()
	if flags.Changed("python") {
		opts.Preferred = upPython
	}
	if flags.Changed("venv-dir") {
		opts.VenvDir = upVenvDir
	}
	if flags.Changed("requirements") {
		opts.Requirements = upRequirements
	}
	if flags.Changed("kernel-name") {
		opts.KernelName = upKernelName
	}
	if flags.Changed("display-name") {
		opts.KernelDisplayName = upDisplayName
	}
	opts.SkipKernel = upSkipKernel

	return opts, nil
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "nbstrap"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func printPlan(planned []bootstrap.PlannedStep) {
	fmt.Println(TitleStyle.Render("Plan") + SubtitleStyle.Render(" (dry run, nothing executed)"))
	for i, step := range planned {
		fmt.Printf("  %d. %s\n     %s\n", i+1, step.Name, CmdStyle.Render(step.Command))
	}
}

// reportStepFailure prints the failing step with its diagnostic and, when
// the error maps to a catalog entry, the rendered guidance.
func reportStepFailure(outcome *bootstrap.Outcome) error {
	fmt.Fprintf(os.Stderr, "\n%s step %q failed: %s\n",
		ErrorStyle.Render("Error:"),
		outcome.FailedStep,
		formatErrorForDisplay(outcome.Err, verbose))

	if id := classifyStepIssue(outcome.FailedStep); id != 0 {
		if entry := issue.Get(id); entry != nil {
			if rendered, renderErr := entry.Render("dark"); renderErr == nil {
				fmt.Fprint(os.Stderr, rendered)
			}
		}
	}

	return &ExitError{Code: 1, Err: outcome.Err}
}

func reportError(err error) error {
	fmt.Fprintf(os.Stderr, "\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
	return &ExitError{Code: 1, Err: err}
}

// classifyStepIssue maps a failed pipeline step to its issue catalog entry.
func classifyStepIssue(stepName string) issue.Id {
	switch stepName {
	case bootstrap.StepSelectInterpreter:
		return issue.PythonNotFoundId
	case bootstrap.StepCreateVenv:
		return issue.VenvCreateFailedId
	case bootstrap.StepUpgradeInstaller:
		return issue.InstallerUpgradeFailedId
	case bootstrap.StepInstallDeps:
		return issue.DependencyInstallFailedId
	case bootstrap.StepRegisterKernel:
		return issue.KernelRegisterFailedId
	case bootstrap.StepRunPostUpHook:
		return issue.HookSyntaxErrorId
	default:
		return 0
	}
}

// watchRequirements blocks, re-running the dependency-sync steps whenever
// the requirements file changes.
func watchRequirements(cmd *cobra.Command, b *bootstrap.Bootstrapper, opts bootstrap.Options) error {
	reqPath := opts.Requirements
	if reqPath == "" {
		return errors.New("--watch requires a requirements file")
	}

	absReq, err := filepath.Abs(reqPath)
	if err != nil {
		return fmt.Errorf("failed to resolve requirements path: %w", err)
	}
	baseDir := filepath.Dir(absReq)
	fileName := filepath.Base(absReq)

	logger := newLogger()
	logger.Infof("watching %s; press Ctrl-C to stop", reqPath)

	w, err := watch.New(watch.Config{
		BaseDir:  baseDir,
		Patterns: []string{fileName},
		OnChange: func(ctx context.Context, _ []string) error {
			logger.Infof("%s changed; re-syncing dependencies", fileName)
			if err := b.Sync(ctx); err != nil {
				logger.Errorf("re-sync failed: %s", formatErrorForDisplay(err, verbose))
				return err
			}
			logger.Info("dependencies in sync")
			return nil
		},
	})
	if err != nil {
		return reportError(err)
	}

	return w.Run(cmd.Context())
}
