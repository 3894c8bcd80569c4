// SPDX-License-Identifier: MPL-2.0

package kernel

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"nbstrap/internal/testutil"
	"nbstrap/internal/venv"
)

func TestNewRegistrar_Defaults(t *testing.T) {
	env := venv.New(filepath.Join(t.TempDir(), ".venv"))
	r := NewRegistrar(env)

	if r.Name != DefaultName {
		t.Errorf("Name = %q, want %q", r.Name, DefaultName)
	}
	if r.DisplayName != DefaultDisplayName {
		t.Errorf("DisplayName = %q, want %q", r.DisplayName, DefaultDisplayName)
	}
}

func TestRegister_Invocation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tmpDir := t.TempDir()
	env := venv.New(filepath.Join(tmpDir, ".venv"))
	if err := os.MkdirAll(env.BinDir(), 0o755); err != nil {
		t.Fatalf("failed to create bin dir: %v", err)
	}
	logPath := filepath.Join(tmpDir, "args.log")
	testutil.StubExecutable(t, env.BinDir(), "python", `echo "$@" > `+logPath)

	r := NewRegistrar(env)
	r.Name = "analysis"
	r.DisplayName = "Python (analysis)"

	if err := r.Register(context.Background()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read args log: %v", err)
	}
	got := strings.TrimSpace(string(data))
	want := "-m ipykernel install --user --name analysis --display-name Python (analysis)"
	if got != want {
		t.Errorf("invocation = %q, want %q", got, want)
	}
}

func TestRegister_Failure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tmpDir := t.TempDir()
	env := venv.New(filepath.Join(tmpDir, ".venv"))
	if err := os.MkdirAll(env.BinDir(), 0o755); err != nil {
		t.Fatalf("failed to create bin dir: %v", err)
	}
	testutil.StubExecutable(t, env.BinDir(), "python", "exit 1")

	r := NewRegistrar(env)
	if err := r.Register(context.Background()); err == nil {
		t.Fatal("Register() error = nil, want failure when ipykernel exits non-zero")
	}
}

func TestUserKernelsDir_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	defer testutil.MustSetenv(t, "JUPYTER_DATA_DIR", tmpDir)()

	dir, err := UserKernelsDir()
	if err != nil {
		t.Fatalf("UserKernelsDir() error = %v", err)
	}
	if dir != filepath.Join(tmpDir, "kernels") {
		t.Errorf("UserKernelsDir() = %q, want %q", dir, filepath.Join(tmpDir, "kernels"))
	}
}

func TestUserKernelsDir_PlatformDefault(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix-style defaults only")
	}

	defer testutil.MustSetenv(t, "JUPYTER_DATA_DIR", "")()
	defer testutil.MustSetenv(t, "XDG_DATA_HOME", "")()
	os.Unsetenv("JUPYTER_DATA_DIR")
	os.Unsetenv("XDG_DATA_HOME")

	dir, err := UserKernelsDir()
	if err != nil {
		t.Fatalf("UserKernelsDir() error = %v", err)
	}
	if !strings.HasSuffix(dir, filepath.Join("jupyter", "kernels")) {
		t.Errorf("UserKernelsDir() = %q, want a path ending in jupyter/kernels", dir)
	}
}

func TestLookup(t *testing.T) {
	tmpDir := t.TempDir()
	defer testutil.MustSetenv(t, "JUPYTER_DATA_DIR", tmpDir)()

	kernelDir := filepath.Join(tmpDir, "kernels", "analysis")
	if err := os.MkdirAll(kernelDir, 0o755); err != nil {
		t.Fatalf("failed to create kernel dir: %v", err)
	}
	testutil.MustWriteFile(t, filepath.Join(kernelDir, "kernel.json"), `{
  "argv": ["/home/u/.venv/bin/python", "-m", "ipykernel_launcher", "-f", "{connection_file}"],
  "display_name": "Python (analysis)",
  "language": "python"
}`)

	spec, err := Lookup("analysis")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if spec == nil {
		t.Fatal("Lookup() = nil, want spec")
	}
	if spec.DisplayName != "Python (analysis)" {
		t.Errorf("DisplayName = %q, want %q", spec.DisplayName, "Python (analysis)")
	}
	if spec.Language != "python" {
		t.Errorf("Language = %q, want %q", spec.Language, "python")
	}
	if len(spec.Argv) != 5 {
		t.Errorf("len(Argv) = %d, want 5", len(spec.Argv))
	}
}

func TestLookup_NotRegistered(t *testing.T) {
	defer testutil.MustSetenv(t, "JUPYTER_DATA_DIR", t.TempDir())()

	spec, err := Lookup("no-such-kernel")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if spec != nil {
		t.Errorf("Lookup() = %+v, want nil for an unregistered kernel", spec)
	}
}

func TestLookup_MalformedSpec(t *testing.T) {
	tmpDir := t.TempDir()
	defer testutil.MustSetenv(t, "JUPYTER_DATA_DIR", tmpDir)()

	kernelDir := filepath.Join(tmpDir, "kernels", "broken")
	if err := os.MkdirAll(kernelDir, 0o755); err != nil {
		t.Fatalf("failed to create kernel dir: %v", err)
	}
	testutil.MustWriteFile(t, filepath.Join(kernelDir, "kernel.json"), "{not json")

	if _, err := Lookup("broken"); err == nil {
		t.Fatal("Lookup() error = nil, want parse error")
	}
}

func TestInstalled(t *testing.T) {
	tmpDir := t.TempDir()
	defer testutil.MustSetenv(t, "JUPYTER_DATA_DIR", tmpDir)()

	ok, err := Installed("missing")
	if err != nil {
		t.Fatalf("Installed() error = %v", err)
	}
	if ok {
		t.Error("Installed() = true for a missing kernel, want false")
	}

	kernelDir := filepath.Join(tmpDir, "kernels", "present")
	if err := os.MkdirAll(kernelDir, 0o755); err != nil {
		t.Fatalf("failed to create kernel dir: %v", err)
	}
	testutil.MustWriteFile(t, filepath.Join(kernelDir, "kernel.json"), `{"display_name": "x", "argv": [], "language": "python"}`)

	ok, err = Installed("present")
	if err != nil {
		t.Fatalf("Installed() error = %v", err)
	}
	if !ok {
		t.Error("Installed() = false for a registered kernel, want true")
	}
}
