// SPDX-License-Identifier: MPL-2.0

// Package pip drives the package installer inside a virtual environment.
//
// All pip invocations go through the environment's own interpreter
// ("<venv>/bin/python -m pip ..."), so the install target is an explicit
// parameter rather than whatever interpreter happens to be first on PATH.
package pip

import (
	"context"
	"io"
	"os"
	"strings"

	"nbstrap/internal/execx"
	"nbstrap/internal/issue"
	"nbstrap/internal/venv"
)

// Installer installs packages into a single virtual environment.
type Installer struct {
	env *venv.Env

	// Stdout and Stderr receive pip's streamed output. nil values fall
	// through to the process defaults.
	Stdout io.Writer
	Stderr io.Writer
}

// NewInstaller returns an Installer targeting env.
func NewInstaller(env *venv.Env) *Installer {
	return &Installer{env: env}
}

// UpgradeSelf upgrades pip itself inside the environment. Safe to repeat;
// pip treats an already-current install as a no-op.
func (i *Installer) UpgradeSelf(ctx context.Context) error {
	result := i.run(ctx, "install", "--upgrade", "pip")
	if err := result.Err(); err != nil {
		return issue.NewErrorContext().
			WithOperation("upgrade package installer").
			WithResource(i.env.Python()).
			WithSuggestion("Check network access to the package index").
			Wrap(err).
			BuildError()
	}
	return nil
}

// Install installs every requirement declared in requirementsPath plus the
// given extra packages. The requirements file's contents are opaque to
// nbstrap; pip interprets them. An empty requirementsPath installs only the
// extra packages.
func (i *Installer) Install(ctx context.Context, requirementsPath string, packages []string) error {
	args := []string{"install"}
	if requirementsPath != "" {
		if _, err := os.Stat(requirementsPath); err != nil {
			return issue.NewErrorContext().
				WithOperation("read requirements file").
				WithResource(requirementsPath).
				WithSuggestion("Create the file, or point --requirements at an existing one").
				Wrap(err).
				BuildError()
		}
		args = append(args, "-r", requirementsPath)
	}
	args = append(args, packages...)

	result := i.run(ctx, args...)
	if err := result.Err(); err != nil {
		return issue.NewErrorContext().
			WithOperation("install dependencies").
			WithResource(requirementsPath).
			WithSuggestion("pip's output above names the failing requirement").
			Wrap(err).
			BuildError()
	}
	return nil
}

// Installed returns the names of packages present in the environment,
// lowercased, via "pip list --format=freeze". Used by doctor and tests.
func (i *Installer) Installed(ctx context.Context) ([]string, error) {
	result := execx.Capture(ctx, execx.Spec{
		Path: i.env.Python(),
		Args: []string{"-m", "pip", "list", "--format=freeze"},
	})
	if err := result.Err(); err != nil {
		return nil, issue.WrapWithContext(err, "list installed packages", i.env.Python())
	}

	var names []string
	for _, line := range strings.Split(result.Output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, _, _ := strings.Cut(line, "==")
		names = append(names, strings.ToLower(name))
	}
	return names, nil
}

func (i *Installer) run(ctx context.Context, args ...string) *execx.Result {
	return execx.Run(ctx, execx.Spec{
		Path:   i.env.Python(),
		Args:   append([]string{"-m", "pip"}, args...),
		Stdout: i.Stdout,
		Stderr: i.Stderr,
	})
}
