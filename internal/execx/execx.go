// SPDX-License-Identifier: MPL-2.0

// Package execx runs external tools with explicit configuration.
//
// Every invocation receives the executable path, arguments, working
// directory, and environment as explicit inputs; nothing is inherited
// implicitly beyond the host environment. This keeps each bootstrap step
// independently testable instead of depending on ambient process state.
package execx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"

	"nbstrap/pkg/types"
)

type (
	// Spec describes a single external tool invocation.
	Spec struct {
		// Path is the absolute or PATH-resolvable executable to run.
		Path string
		// Args are the arguments passed to the executable (argv[1:]).
		Args []string
		// Dir is the working directory. Empty means the current directory.
		Dir string
		// ExtraEnv is merged over the inherited host environment.
		ExtraEnv map[string]string
		// Stdout and Stderr receive the process output when running
		// unbuffered. nil values default to os.Stdout / os.Stderr.
		Stdout io.Writer
		Stderr io.Writer
		// Stdin is the process input. nil means no input.
		Stdin io.Reader
	}

	// Result contains the outcome of an invocation.
	Result struct {
		ExitCode types.ExitCode
		// Output and ErrOutput hold captured stdout/stderr. They are only
		// populated by Capture.
		Output    string
		ErrOutput string
		// Error is set for infrastructure failures (executable missing,
		// context cancelled). A non-zero exit of a started process is
		// reported through ExitCode with a nil Error.
		Error error
	}
)

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code types.ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewSuccessResult creates a Result with exit code 0 and no error.
func NewSuccessResult() *Result {
	return &Result{}
}

// Success reports whether the invocation started and exited zero.
func (r *Result) Success() bool {
	return r.Error == nil && r.ExitCode.IsSuccess()
}

// Err converts a failed Result into an error. Successful results return nil.
func (r *Result) Err() error {
	if r.Error != nil {
		return r.Error
	}
	if !r.ExitCode.IsSuccess() {
		return fmt.Errorf("exit status %s", r.ExitCode)
	}
	return nil
}

// Run executes the spec, streaming output to the configured writers.
func Run(ctx context.Context, spec Spec) *Result {
	cmd := command(ctx, spec)

	cmd.Stdout = spec.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = spec.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	cmd.Stdin = spec.Stdin

	return resultOf(cmd.Run(), nil, nil)
}

// Capture executes the spec and buffers its stdout/stderr into the Result.
func Capture(ctx context.Context, spec Spec) *Result {
	cmd := command(ctx, spec)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Stdin = spec.Stdin

	return resultOf(cmd.Run(), &stdout, &stderr)
}

// command builds the exec.Cmd for a spec.
func command(ctx context.Context, spec Spec) *exec.Cmd {
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	cmd.Env = append(os.Environ(), EnvToSlice(spec.ExtraEnv)...)
	return cmd
}

// resultOf translates an exec.Cmd error into a Result.
func resultOf(err error, stdout, stderr *bytes.Buffer) *Result {
	result := &Result{}
	if stdout != nil {
		result.Output = stdout.String()
	}
	if stderr != nil {
		result.ErrOutput = stderr.String()
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = types.ExitCode(exitErr.ExitCode())
		} else {
			result.ExitCode = 1
			result.Error = fmt.Errorf("failed to execute command: %w", err)
		}
	}

	return result
}

// EnvToSlice converts an environment map to KEY=VALUE form, sorted by key so
// generated command lines are deterministic.
func EnvToSlice(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(env))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
