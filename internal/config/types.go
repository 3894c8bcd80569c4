// SPDX-License-Identifier: MPL-2.0

package config

import (
	"nbstrap/internal/kernel"
	"nbstrap/internal/python"
	"nbstrap/internal/venv"
)

type (
	// Config holds user-level nbstrap configuration. Values here are
	// defaults for every project; a project's nbstrap.toml and command-line
	// flags override them.
	Config struct {
		// Python selects the interpreter identifiers probed on PATH.
		Python PythonConfig `mapstructure:"python"`

		// VenvDir is the relative path of the virtual environment.
		VenvDir string `mapstructure:"venv_dir"`

		// Requirements is the path of the dependency declaration file.
		Requirements string `mapstructure:"requirements"`

		// Kernel configures the Jupyter kernel registration.
		Kernel KernelConfig `mapstructure:"kernel"`

		// NotebookPackages are installed alongside the requirements file
		// so the environment can back a notebook kernel.
		NotebookPackages []string `mapstructure:"notebook_packages"`

		// UI holds presentation settings.
		UI UIConfig `mapstructure:"ui"`
	}

	// PythonConfig selects interpreter identifiers.
	PythonConfig struct {
		// Preferred is probed first (e.g. "python3.11").
		Preferred string `mapstructure:"preferred"`
		// Fallback is used when Preferred is not on PATH.
		Fallback string `mapstructure:"fallback"`
	}

	// KernelConfig names the kernel registration.
	KernelConfig struct {
		Name        string `mapstructure:"name"`
		DisplayName string `mapstructure:"display_name"`
	}

	// UIConfig holds presentation settings.
	UIConfig struct {
		Verbose bool `mapstructure:"verbose"`
	}
)

// DefaultConfig returns the built-in defaults applied before any config file
// or environment variable is read.
func DefaultConfig() *Config {
	return &Config{
		Python: PythonConfig{
			Preferred: python.DefaultPreferred,
			Fallback:  python.DefaultFallback,
		},
		VenvDir:      venv.DefaultDir,
		Requirements: "requirements.txt",
		Kernel: KernelConfig{
			Name:        kernel.DefaultName,
			DisplayName: kernel.DefaultDisplayName,
		},
		NotebookPackages: []string{"jupyter", "ipykernel"},
	}
}
