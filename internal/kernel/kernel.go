// SPDX-License-Identifier: MPL-2.0

// Package kernel registers a virtual environment as a Jupyter kernel and
// inspects existing user-scoped registrations.
package kernel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"nbstrap/internal/execx"
	"nbstrap/internal/issue"
	"nbstrap/internal/venv"
	"nbstrap/pkg/platform"
)

const (
	// DefaultName is the internal kernel name registered by default.
	DefaultName = "nbstrap"
	// DefaultDisplayName is the label shown in the notebook UI by default.
	DefaultDisplayName = "Python (nbstrap)"
)

type (
	// Registrar registers an environment as a user-scoped kernel.
	Registrar struct {
		env *venv.Env

		// Name is the internal kernel name (directory name under the
		// user kernels dir).
		Name string
		// DisplayName is the human-readable label.
		DisplayName string

		// Stdout and Stderr receive ipykernel's output.
		Stdout io.Writer
		Stderr io.Writer
	}

	// Spec is the subset of a kernel.json registration record that nbstrap
	// inspects.
	Spec struct {
		DisplayName string   `json:"display_name"`
		Argv        []string `json:"argv"`
		Language    string   `json:"language"`
	}
)

// NewRegistrar returns a Registrar for env with the default name and label.
func NewRegistrar(env *venv.Env) *Registrar {
	return &Registrar{
		env:         env,
		Name:        DefaultName,
		DisplayName: DefaultDisplayName,
	}
}

// Register makes the environment discoverable as a notebook kernel under the
// configured name, scoped to the invoking user. Re-registering an existing
// name overwrites the record, so the operation is idempotent.
func (r *Registrar) Register(ctx context.Context) error {
	result := execx.Run(ctx, execx.Spec{
		Path: r.env.Python(),
		Args: []string{
			"-m", "ipykernel", "install",
			"--user",
			"--name", r.Name,
			"--display-name", r.DisplayName,
		},
		Stdout: r.Stdout,
		Stderr: r.Stderr,
	})
	if err := result.Err(); err != nil {
		return issue.NewErrorContext().
			WithOperation("register kernel").
			WithResource(r.Name).
			WithSuggestion("Ensure ipykernel is installed in the environment (run the full pipeline)").
			Wrap(err).
			BuildError()
	}
	return nil
}

// UserKernelsDir returns the user-scoped Jupyter kernels directory using the
// same conventions jupyter_core applies: JUPYTER_DATA_DIR wins, then the
// platform default.
func UserKernelsDir() (string, error) {
	if dir := os.Getenv("JUPYTER_DATA_DIR"); dir != "" {
		return filepath.Join(dir, "kernels"), nil
	}

	var dataDir string
	switch runtime.GOOS {
	case platform.Windows:
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		dataDir = filepath.Join(appData, "jupyter")
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(home, "Library", "Jupyter")
	default:
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			base = filepath.Join(home, ".local", "share")
		}
		dataDir = filepath.Join(base, "jupyter")
	}

	return filepath.Join(dataDir, "kernels"), nil
}

// Lookup reads the registration record for name from the user kernels
// directory. Returns (nil, nil) when no registration exists.
func Lookup(name string) (*Spec, error) {
	kernelsDir, err := UserKernelsDir()
	if err != nil {
		return nil, err
	}

	specPath := filepath.Join(kernelsDir, name, "kernel.json")
	data, err := os.ReadFile(specPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read kernel spec %q: %w", specPath, err)
	}

	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse kernel spec %q: %w", specPath, err)
	}
	return &spec, nil
}

// Installed reports whether a user-scoped registration exists for name.
func Installed(name string) (bool, error) {
	spec, err := Lookup(name)
	if err != nil {
		return false, err
	}
	return spec != nil, nil
}
