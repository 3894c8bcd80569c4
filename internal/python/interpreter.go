// SPDX-License-Identifier: MPL-2.0

// Package python locates Python interpreters on the host.
//
// Interpreter selection is the only decision point in the bootstrap pipeline:
// the preferred identifier is probed first, then the generic fallback. The
// selection fails open between the two and fails closed only when neither
// resolves to an executable.
package python

import (
	"context"
	"os/exec"
	"strings"

	"nbstrap/internal/execx"
	"nbstrap/internal/issue"
)

const (
	// DefaultPreferred is the interpreter identifier probed first.
	DefaultPreferred = "python3.11"
	// DefaultFallback is the generic identifier used when the preferred
	// interpreter is not on PATH.
	DefaultFallback = "python3"
)

// lookPath is swapped out by tests to control probe results.
var lookPath = exec.LookPath

// Interpreter is a resolved Python executable.
type Interpreter struct {
	// Path is the absolute path returned by the PATH probe.
	Path string
	// Command is the identifier that resolved (e.g. "python3.11").
	Command string
	// UsedFallback is true when the preferred identifier was missing and
	// the fallback was selected instead.
	UsedFallback bool
}

// Find probes PATH for the preferred identifier, then the fallback.
// Selection order is fixed; the preferred interpreter always wins when both
// are present. Returns an actionable error when neither resolves.
func Find(preferred, fallback string) (*Interpreter, error) {
	if preferred == "" {
		preferred = DefaultPreferred
	}
	if fallback == "" {
		fallback = DefaultFallback
	}

	if path, err := lookPath(preferred); err == nil {
		return &Interpreter{Path: path, Command: preferred}, nil
	}

	if path, err := lookPath(fallback); err == nil {
		return &Interpreter{Path: path, Command: fallback, UsedFallback: true}, nil
	}

	return nil, issue.NewErrorContext().
		WithOperation("locate a Python interpreter").
		WithResource(preferred + ", " + fallback).
		WithSuggestion("Install Python 3 and ensure it is on your PATH").
		WithSuggestion("Or pass an explicit interpreter with --python").
		BuildError()
}

// Version reports the interpreter's version string, e.g. "Python 3.11.9".
// This is a separate diagnostic invocation of the interpreter; selection
// itself never inspects the version.
func (i *Interpreter) Version(ctx context.Context) (string, error) {
	result := execx.Capture(ctx, execx.Spec{
		Path: i.Path,
		Args: []string{"--version"},
	})
	if err := result.Err(); err != nil {
		return "", issue.WrapWithContext(err, "query interpreter version", i.Path)
	}

	// Python 2 printed the version on stderr; Python 3.4+ uses stdout.
	version := strings.TrimSpace(result.Output)
	if version == "" {
		version = strings.TrimSpace(result.ErrOutput)
	}
	return version, nil
}
