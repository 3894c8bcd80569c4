// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"nbstrap/internal/hooks"
	"nbstrap/internal/kernel"
	"nbstrap/internal/pip"
	"nbstrap/internal/python"
	"nbstrap/internal/venv"

	"github.com/charmbracelet/log"
)

// Step names, also surfaced in failure diagnostics.
const (
	StepSelectInterpreter = "select interpreter"
	StepReportVersion     = "report interpreter version"
	StepCreateVenv        = "create virtual environment"
	StepUpgradeInstaller  = "upgrade package installer"
	StepInstallDeps       = "install dependencies"
	StepRegisterKernel    = "register kernel"
	StepRunPostUpHook     = "run post_up hook"
)

type (
	// Options configures a Bootstrapper. Every step receives its inputs
	// from here; nothing is taken from ambient process state besides PATH
	// during interpreter selection.
	Options struct {
		// Preferred and Fallback are the interpreter identifiers probed
		// on PATH, in that order.
		Preferred string
		Fallback  string

		// VenvDir is the virtual environment path.
		VenvDir string
		// Requirements is the dependency declaration file. Its contents
		// are opaque to nbstrap.
		Requirements string

		// NotebookPackages are installed alongside the requirements so
		// the environment can back a notebook kernel.
		NotebookPackages []string
		// ExtraPackages come from the project file.
		ExtraPackages []string

		// KernelName and KernelDisplayName identify the registration.
		KernelName        string
		KernelDisplayName string
		// SkipKernel omits the registration step.
		SkipKernel bool

		// PostUpHook is a POSIX shell snippet run after a successful
		// provision. Empty means no hook.
		PostUpHook string
		// WorkDir is the directory hooks run in. Empty means the
		// current directory.
		WorkDir string

		// Stdout and Stderr receive the invoked tools' output.
		Stdout io.Writer
		Stderr io.Writer

		// Logger receives step progress. nil constructs a default
		// stderr logger.
		Logger *log.Logger
	}

	// Bootstrapper runs the provisioning pipeline. State resolved by early
	// steps (the selected interpreter, the environment layout) feeds the
	// later ones.
	Bootstrapper struct {
		opts   Options
		logger *log.Logger

		interp    *python.Interpreter
		env       *venv.Env
		installer *pip.Installer
	}

	// PlannedStep describes one step for dry-run output.
	PlannedStep struct {
		Name    string
		Command string
	}
)

// New returns a Bootstrapper for the given options.
func New(opts Options) *Bootstrapper {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "nbstrap"})
	}
	if opts.KernelName == "" {
		opts.KernelName = kernel.DefaultName
	}
	if opts.KernelDisplayName == "" {
		opts.KernelDisplayName = kernel.DefaultDisplayName
	}

	env := venv.New(opts.VenvDir)
	installer := pip.NewInstaller(env)
	installer.Stdout = opts.Stdout
	installer.Stderr = opts.Stderr

	return &Bootstrapper{
		opts:      opts,
		logger:    logger,
		env:       env,
		installer: installer,
	}
}

// Env returns the environment layout the pipeline targets.
func (b *Bootstrapper) Env() *venv.Env {
	return b.env
}

// Interpreter returns the selected interpreter, or nil before selection.
func (b *Bootstrapper) Interpreter() *python.Interpreter {
	return b.interp
}

// Run executes the full pipeline. Hook syntax is checked up front so a
// broken hook fails before any provisioning work starts.
func (b *Bootstrapper) Run(ctx context.Context) *Outcome {
	if err := hooks.Validate("post_up", b.opts.PostUpHook); err != nil {
		return &Outcome{FailedStep: StepRunPostUpHook, Err: err}
	}
	return runSteps(ctx, b.steps())
}

// Sync re-runs only the dependency steps (installer upgrade and install)
// against an already-provisioned environment. Used by watch mode. The
// interpreter and environment must have been resolved by a prior Run.
func (b *Bootstrapper) Sync(ctx context.Context) error {
	if !b.env.Exists() {
		return fmt.Errorf("virtual environment %s does not exist; run the full pipeline first", b.env.Root)
	}
	outcome := runSteps(ctx, []Step{
		{Name: StepUpgradeInstaller, Run: b.upgradeInstaller},
		{Name: StepInstallDeps, Run: b.installDeps},
	})
	return outcome.Err
}

// Plan returns the steps and the commands they would run, without executing
// anything. Interpreter identifiers are shown unresolved since selection
// itself is part of the plan.
func (b *Bootstrapper) Plan() []PlannedStep {
	preferred := b.opts.Preferred
	if preferred == "" {
		preferred = python.DefaultPreferred
	}
	fallback := b.opts.Fallback
	if fallback == "" {
		fallback = python.DefaultFallback
	}
	interp := "<python>"

	planned := []PlannedStep{
		{Name: StepSelectInterpreter, Command: fmt.Sprintf("probe PATH for %s, then %s", preferred, fallback)},
		{Name: StepReportVersion, Command: interp + " --version"},
		{Name: StepCreateVenv, Command: fmt.Sprintf("%s -m venv %s", interp, b.env.Root)},
		{Name: StepUpgradeInstaller, Command: fmt.Sprintf("%s -m pip install --upgrade pip", b.env.Python())},
		{Name: StepInstallDeps, Command: fmt.Sprintf("%s -m pip install %s", b.env.Python(), strings.Join(b.installArgs(), " "))},
	}
	if !b.opts.SkipKernel {
		planned = append(planned, PlannedStep{
			Name: StepRegisterKernel,
			Command: fmt.Sprintf("%s -m ipykernel install --user --name %s --display-name %q",
				b.env.Python(), b.opts.KernelName, b.opts.KernelDisplayName),
		})
	}
	if strings.TrimSpace(b.opts.PostUpHook) != "" {
		planned = append(planned, PlannedStep{Name: StepRunPostUpHook, Command: "sh: " + firstLine(b.opts.PostUpHook)})
	}
	return planned
}

func (b *Bootstrapper) steps() []Step {
	steps := []Step{
		{Name: StepSelectInterpreter, Run: b.selectInterpreter},
		{Name: StepReportVersion, Run: b.reportVersion},
		{Name: StepCreateVenv, Run: b.createVenv},
		{Name: StepUpgradeInstaller, Run: b.upgradeInstaller},
		{Name: StepInstallDeps, Run: b.installDeps},
	}
	if !b.opts.SkipKernel {
		steps = append(steps, Step{Name: StepRegisterKernel, Run: b.registerKernel})
	}
	if strings.TrimSpace(b.opts.PostUpHook) != "" {
		steps = append(steps, Step{Name: StepRunPostUpHook, Run: b.runPostUpHook})
	}
	return steps
}

// selectInterpreter probes PATH. The fallback path emits exactly one warning
// naming both identifiers; this is the pipeline's only fail-open branch.
func (b *Bootstrapper) selectInterpreter(context.Context) error {
	interp, err := python.Find(b.opts.Preferred, b.opts.Fallback)
	if err != nil {
		return err
	}
	if interp.UsedFallback {
		preferred := b.opts.Preferred
		if preferred == "" {
			preferred = python.DefaultPreferred
		}
		b.logger.Warnf("%s not found on PATH; falling back to %s", preferred, interp.Command)
	}
	b.logger.Debugf("selected interpreter %s (%s)", interp.Command, interp.Path)
	b.interp = interp
	return nil
}

func (b *Bootstrapper) reportVersion(ctx context.Context) error {
	version, err := b.interp.Version(ctx)
	if err != nil {
		return err
	}
	b.logger.Infof("using %s", version)
	return nil
}

// createVenv materializes the environment, reusing an existing one. Reuse
// keeps re-runs cheap and makes the step idempotent.
func (b *Bootstrapper) createVenv(ctx context.Context) error {
	if b.env.Exists() {
		b.logger.Infof("reusing existing virtual environment at %s", b.env.Root)
		return nil
	}
	b.logger.Infof("creating virtual environment at %s", b.env.Root)
	return b.env.Create(ctx, b.interp, b.opts.Stdout, b.opts.Stderr)
}

func (b *Bootstrapper) upgradeInstaller(ctx context.Context) error {
	b.logger.Debug("upgrading pip")
	return b.installer.UpgradeSelf(ctx)
}

func (b *Bootstrapper) installDeps(ctx context.Context) error {
	b.logger.Infof("installing dependencies from %s", b.opts.Requirements)
	packages := append(append([]string{}, b.opts.NotebookPackages...), b.opts.ExtraPackages...)
	return b.installer.Install(ctx, b.opts.Requirements, packages)
}

func (b *Bootstrapper) registerKernel(ctx context.Context) error {
	b.logger.Infof("registering kernel %q (%s)", b.opts.KernelName, b.opts.KernelDisplayName)
	registrar := kernel.NewRegistrar(b.env)
	registrar.Name = b.opts.KernelName
	registrar.DisplayName = b.opts.KernelDisplayName
	registrar.Stdout = b.opts.Stdout
	registrar.Stderr = b.opts.Stderr
	return registrar.Register(ctx)
}

func (b *Bootstrapper) runPostUpHook(ctx context.Context) error {
	b.logger.Debug("running post_up hook")
	runner := &hooks.Runner{
		Dir: b.opts.WorkDir,
		ExtraEnv: map[string]string{
			"NBSTRAP_VENV":   b.env.Root,
			"NBSTRAP_PYTHON": b.env.Python(),
		},
		Stdout: b.opts.Stdout,
		Stderr: b.opts.Stderr,
	}
	return runner.Run(ctx, "post_up", b.opts.PostUpHook)
}

// installArgs mirrors the pip arguments used by installDeps for dry-run
// display.
func (b *Bootstrapper) installArgs() []string {
	var args []string
	if b.opts.Requirements != "" {
		args = append(args, "-r", b.opts.Requirements)
	}
	args = append(args, b.opts.NotebookPackages...)
	args = append(args, b.opts.ExtraPackages...)
	return args
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
