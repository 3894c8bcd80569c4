// SPDX-License-Identifier: MPL-2.0

// Package project loads per-project settings from nbstrap.toml.
//
// The project file is optional. Values set in it override the user-level
// configuration; command-line flags override both.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"nbstrap/internal/issue"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the project file looked up in the working directory.
const FileName = "nbstrap.toml"

type (
	// Project mirrors the nbstrap.toml structure.
	Project struct {
		// Python is the preferred interpreter identifier for this project.
		Python string `toml:"python,omitempty"`
		// Fallback overrides the generic fallback identifier.
		Fallback string `toml:"fallback,omitempty"`
		// VenvDir is the virtual environment path, relative to the
		// project file.
		VenvDir string `toml:"venv_dir,omitempty"`
		// Requirements is the dependency declaration path, relative to
		// the project file.
		Requirements string `toml:"requirements,omitempty"`
		// ExtraPackages are installed in addition to the requirements
		// file and the notebook packages.
		ExtraPackages []string `toml:"extra_packages,omitempty"`

		Kernel Kernel `toml:"kernel,omitempty"`
		Hooks  Hooks  `toml:"hooks,omitempty"`
	}

	// Kernel names the kernel registration for this project.
	Kernel struct {
		Name        string `toml:"name,omitempty"`
		DisplayName string `toml:"display_name,omitempty"`
	}

	// Hooks holds shell snippets run by nbstrap's built-in interpreter.
	Hooks struct {
		// PostUp runs after a successful provision.
		PostUp string `toml:"post_up,omitempty"`
	}
)

// Load reads the project file from dir. Returns (nil, "", nil) when no
// project file exists; a present but invalid file is an error.
func Load(dir string) (*Project, string, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", nil
		}
		return nil, "", issue.WrapWithContext(err, "read project file", path)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var p Project
	if err := dec.Decode(&p); err != nil {
		ctx := issue.NewErrorContext().
			WithOperation("parse project file").
			WithResource(path).
			Wrap(err)

		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			ctx = ctx.WithSuggestion(decodeErr.String()).
				WithSuggestion(formatPosition(row, col))
		}
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			ctx = ctx.WithSuggestion("Remove the unknown keys listed above, or run 'nbstrap config init' for a valid starter file")
		}
		return nil, "", ctx.BuildError()
	}

	return &p, path, nil
}

// Write serializes p to the project file in dir, refusing to overwrite an
// existing file.
func Write(dir string, p *Project) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", issue.NewErrorContext().
			WithOperation("write project file").
			WithResource(path).
			WithSuggestion("A project file already exists; edit it instead").
			BuildError()
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return "", issue.WrapWithContext(err, "encode project file", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", issue.WrapWithContext(err, "write project file", path)
	}
	return path, nil
}

func formatPosition(row, col int) string {
	if row <= 0 {
		return "Check the project file syntax"
	}
	return fmt.Sprintf("Error location: line %d, column %d", row, col)
}
