// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nbstrap/internal/issue"
	"nbstrap/internal/testutil"
)

func TestLoad_NoFile(t *testing.T) {
	p, path, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for a missing project file", err)
	}
	if p != nil {
		t.Errorf("Load() = %+v, want nil", p)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
}

func TestLoad_FullFile(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, FileName), `
python = "python3.12"
venv_dir = "env"
requirements = "requirements-dev.txt"
extra_packages = ["matplotlib", "seaborn"]

[kernel]
name = "analysis"
display_name = "Python (analysis)"

[hooks]
post_up = "echo ready"
`)

	p, path, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Errorf("path = %q, want %q", path, filepath.Join(dir, FileName))
	}
	if p.Python != "python3.12" {
		t.Errorf("Python = %q, want %q", p.Python, "python3.12")
	}
	if p.VenvDir != "env" {
		t.Errorf("VenvDir = %q, want %q", p.VenvDir, "env")
	}
	if p.Requirements != "requirements-dev.txt" {
		t.Errorf("Requirements = %q, want %q", p.Requirements, "requirements-dev.txt")
	}
	if len(p.ExtraPackages) != 2 || p.ExtraPackages[0] != "matplotlib" || p.ExtraPackages[1] != "seaborn" {
		t.Errorf("ExtraPackages = %v, want [matplotlib seaborn]", p.ExtraPackages)
	}
	if p.Kernel.Name != "analysis" {
		t.Errorf("Kernel.Name = %q, want %q", p.Kernel.Name, "analysis")
	}
	if p.Kernel.DisplayName != "Python (analysis)" {
		t.Errorf("Kernel.DisplayName = %q, want %q", p.Kernel.DisplayName, "Python (analysis)")
	}
	if p.Hooks.PostUp != "echo ready" {
		t.Errorf("Hooks.PostUp = %q, want %q", p.Hooks.PostUp, "echo ready")
	}
}

func TestLoad_PartialFile(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, FileName), `venv_dir = ".venv-ml"`)

	p, _, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.VenvDir != ".venv-ml" {
		t.Errorf("VenvDir = %q, want %q", p.VenvDir, ".venv-ml")
	}
	if p.Python != "" || p.Requirements != "" || p.Kernel.Name != "" {
		t.Errorf("unset fields populated: %+v", p)
	}
}

func TestLoad_SyntaxError(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, FileName), `python = "unterminated`)

	_, _, err := Load(dir)
	if err == nil {
		t.Fatal("Load() error = nil, want syntax error")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error type = %T, want *issue.ActionableError", err)
	}
	found := false
	for _, s := range ae.Suggestions {
		if strings.Contains(s, "line") {
			found = true
		}
	}
	if !found {
		t.Errorf("suggestions = %v, want one naming the error location", ae.Suggestions)
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, FileName), `pythn = "python3.12"`)

	_, _, err := Load(dir)
	if err == nil {
		t.Fatal("Load() error = nil, want unknown key error")
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := &Project{
		Python:        "python3.11",
		VenvDir:       ".venv",
		Requirements:  "requirements.txt",
		ExtraPackages: []string{"rich"},
		Kernel:        Kernel{Name: "demo", DisplayName: "Python (demo)"},
		Hooks:         Hooks{PostUp: "echo done"},
	}

	path, err := Write(dir, in)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Errorf("path = %q, want %q", path, filepath.Join(dir, FileName))
	}

	out, _, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() after Write() error = %v", err)
	}
	if out.Python != in.Python || out.VenvDir != in.VenvDir || out.Requirements != in.Requirements {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
	if out.Kernel != in.Kernel {
		t.Errorf("Kernel = %+v, want %+v", out.Kernel, in.Kernel)
	}
	if out.Hooks.PostUp != in.Hooks.PostUp {
		t.Errorf("Hooks.PostUp = %q, want %q", out.Hooks.PostUp, in.Hooks.PostUp)
	}
}

func TestWrite_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, FileName), `venv_dir = ".venv"`)

	_, err := Write(dir, &Project{})
	if err == nil {
		t.Fatal("Write() error = nil, want refusal to overwrite")
	}

	// The original file survives untouched.
	data, readErr := os.ReadFile(filepath.Join(dir, FileName))
	if readErr != nil {
		t.Fatalf("failed to read project file: %v", readErr)
	}
	if strings.TrimSpace(string(data)) != `venv_dir = ".venv"` {
		t.Errorf("project file was modified: %q", string(data))
	}
}
