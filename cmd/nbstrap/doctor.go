// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"nbstrap/internal/kernel"
	"nbstrap/internal/python"
	"nbstrap/internal/venv"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the current provisioning state",
	Long: `Inspect the host and project without changing anything:

  - which Python interpreter would be selected, and its version
  - whether the virtual environment exists
  - whether the requirements file is readable
  - whether the kernel registration exists

Exits non-zero when any check fails.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	opts, err := resolveUpOptions(cmd)
	if err != nil {
		return reportError(err)
	}

	fmt.Println(TitleStyle.Render("nbstrap doctor"))
	healthy := true

	// Interpreter selection.
	interp, err := python.Find(opts.Preferred, opts.Fallback)
	switch {
	case err != nil:
		healthy = false
		printCheck(false, fmt.Sprintf("no interpreter found (tried %s, %s)", opts.Preferred, opts.Fallback))
	case interp.UsedFallback:
		printCheck(true, fmt.Sprintf("interpreter: %s (fallback; %s not on PATH)", interp.Command, opts.Preferred))
	default:
		printCheck(true, "interpreter: "+interp.Command)
	}
	if interp != nil {
		if version, verr := interp.Version(cmd.Context()); verr == nil {
			fmt.Println("    " + SubtitleStyle.Render(version))
		}
	}

	// Virtual environment.
	env := venv.New(opts.VenvDir)
	if env.Exists() {
		printCheck(true, "virtual environment: "+env.Root)
	} else {
		healthy = false
		printCheck(false, fmt.Sprintf("virtual environment missing at %s (run 'nbstrap up')", env.Root))
	}

	// Requirements file.
	if _, err := os.Stat(opts.Requirements); err == nil {
		printCheck(true, "requirements file: "+opts.Requirements)
	} else {
		healthy = false
		printCheck(false, "requirements file missing: "+opts.Requirements)
	}

	// Kernel registration.
	if opts.SkipKernel {
		fmt.Println("  " + SubtitleStyle.Render("- kernel registration skipped (--skip-kernel)"))
	} else {
		spec, err := kernel.Lookup(opts.KernelName)
		switch {
		case err != nil:
			healthy = false
			printCheck(false, "kernel lookup failed: "+err.Error())
		case spec == nil:
			healthy = false
			printCheck(false, fmt.Sprintf("kernel %q not registered (run 'nbstrap up')", opts.KernelName))
		default:
			printCheck(true, fmt.Sprintf("kernel %q registered as %q", opts.KernelName, spec.DisplayName))
		}
	}

	if !healthy {
		return &ExitError{Code: 1, Err: fmt.Errorf("doctor found problems")}
	}
	fmt.Println(SuccessStyle.Render("All checks passed."))
	return nil
}

func printCheck(ok bool, msg string) {
	if ok {
		fmt.Println("  " + SuccessStyle.Render("✓") + " " + msg)
		return
	}
	fmt.Println("  " + ErrorStyle.Render("✗") + " " + msg)
}
