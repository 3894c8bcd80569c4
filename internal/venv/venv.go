// SPDX-License-Identifier: MPL-2.0

// Package venv models a Python virtual environment on disk.
//
// An Env is a path layout, not a live resource: it exposes the explicit
// interpreter path inside the environment so later steps target the
// environment without any shell-style activation of the parent process.
package venv

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"nbstrap/internal/execx"
	"nbstrap/internal/issue"
	"nbstrap/internal/python"
	"nbstrap/pkg/platform"
)

// DefaultDir is the relative path where the environment is created.
const DefaultDir = ".venv"

// Env is a directory-backed isolated install scope.
type Env struct {
	// Root is the environment directory.
	Root string
}

// New returns an Env rooted at dir. An empty dir uses DefaultDir.
func New(dir string) *Env {
	if dir == "" {
		dir = DefaultDir
	}
	return &Env{Root: dir}
}

// BinDir returns the directory holding the environment's executables
// ("Scripts" on Windows, "bin" elsewhere).
func (e *Env) BinDir() string {
	if platform.IsWindows() {
		return filepath.Join(e.Root, "Scripts")
	}
	return filepath.Join(e.Root, "bin")
}

// Python returns the path of the environment's own interpreter. Every
// install and registration step runs through this path.
func (e *Env) Python() string {
	return filepath.Join(e.BinDir(), "python"+platform.ExeSuffix())
}

// Exists reports whether the environment has been materialized. The venv
// module writes pyvenv.cfg at the root on creation, so its presence is the
// marker.
func (e *Env) Exists() bool {
	info, err := os.Stat(filepath.Join(e.Root, "pyvenv.cfg"))
	return err == nil && !info.IsDir()
}

// Create materializes the environment using the given interpreter. The
// interpreter's venv module handles an existing directory gracefully, but
// callers normally check Exists first and skip the invocation entirely.
func (e *Env) Create(ctx context.Context, interp *python.Interpreter, stdout, stderr io.Writer) error {
	result := execx.Run(ctx, execx.Spec{
		Path:   interp.Path,
		Args:   []string{"-m", "venv", e.Root},
		Stdout: stdout,
		Stderr: stderr,
	})
	if err := result.Err(); err != nil {
		return issue.NewErrorContext().
			WithOperation("create virtual environment").
			WithResource(e.Root).
			WithSuggestion("On Debian/Ubuntu, install the venv module: sudo apt install python3-venv").
			WithSuggestion("Check that the target directory is writable").
			Wrap(err).
			BuildError()
	}
	return nil
}
