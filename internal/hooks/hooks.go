// SPDX-License-Identifier: MPL-2.0

// Package hooks runs project-defined shell snippets through an embedded
// POSIX shell interpreter (mvdan/sh), so hooks behave the same on every
// host regardless of the login shell.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"nbstrap/internal/execx"
	"nbstrap/internal/issue"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Runner executes hook scripts in a fixed working directory with extra
// environment variables layered over the host environment.
type Runner struct {
	// Dir is the working directory for hook execution.
	Dir string
	// ExtraEnv is exported to the hook (e.g. NBSTRAP_VENV, NBSTRAP_PYTHON).
	ExtraEnv map[string]string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Validate parses the script and reports syntax errors without running it.
// Called before the pipeline starts so a broken hook never wastes a
// provision run.
func Validate(name, script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}
	if _, err := syntax.NewParser().Parse(strings.NewReader(script), name); err != nil {
		return issue.NewErrorContext().
			WithOperation("parse hook script").
			WithResource(name).
			WithSuggestion("Hooks must be valid POSIX shell; avoid bashisms").
			Wrap(err).
			BuildError()
	}
	return nil
}

// Run parses and executes the script. An empty script is a no-op.
func (r *Runner) Run(ctx context.Context, name, script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(script), name)
	if err != nil {
		return issue.WrapWithContext(err, "parse hook script", name)
	}

	env := append(os.Environ(), execx.EnvToSlice(r.ExtraEnv)...)

	opts := []interp.RunnerOption{
		interp.Dir(r.Dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(r.Stdin, r.stdout(), r.stderr()),
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return issue.WrapWithContext(err, "create hook interpreter", name)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return issue.NewErrorContext().
				WithOperation("run hook").
				WithResource(name).
				Wrap(fmt.Errorf("exit status %d", int(exitStatus))).
				BuildError()
		}
		return issue.WrapWithContext(err, "run hook", name)
	}
	return nil
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}
