// SPDX-License-Identifier: MPL-2.0

package python

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nbstrap/internal/issue"
	"nbstrap/internal/testutil"
)

// withLookPath replaces the PATH probe for the duration of a test.
func withLookPath(t *testing.T, fn func(string) (string, error)) {
	t.Helper()
	original := lookPath
	lookPath = fn
	t.Cleanup(func() { lookPath = original })
}

func TestFind_PreferredPresent(t *testing.T) {
	withLookPath(t, func(name string) (string, error) {
		if name == "python3.11" {
			return "/usr/bin/python3.11", nil
		}
		t.Errorf("probed %q after the preferred interpreter resolved", name)
		return "", errors.New("not found")
	})

	interp, err := Find("python3.11", "python3")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if interp.Command != "python3.11" {
		t.Errorf("Command = %q, want %q", interp.Command, "python3.11")
	}
	if interp.Path != "/usr/bin/python3.11" {
		t.Errorf("Path = %q, want %q", interp.Path, "/usr/bin/python3.11")
	}
	if interp.UsedFallback {
		t.Error("UsedFallback = true with the preferred interpreter present")
	}
}

func TestFind_FallbackSelected(t *testing.T) {
	withLookPath(t, func(name string) (string, error) {
		if name == "python3" {
			return "/usr/bin/python3", nil
		}
		return "", errors.New("not found")
	})

	interp, err := Find("python3.11", "python3")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if interp.Command != "python3" {
		t.Errorf("Command = %q, want %q", interp.Command, "python3")
	}
	if !interp.UsedFallback {
		t.Error("UsedFallback = false, want true when the preferred interpreter is missing")
	}
}

func TestFind_NeitherResolves(t *testing.T) {
	withLookPath(t, func(string) (string, error) {
		return "", errors.New("not found")
	})

	_, err := Find("python3.11", "python3")
	if err == nil {
		t.Fatal("Find() error = nil, want error when no interpreter resolves")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error type = %T, want *issue.ActionableError", err)
	}
	if !strings.Contains(ae.Resource, "python3.11") || !strings.Contains(ae.Resource, "python3") {
		t.Errorf("error resource %q should name both identifiers", ae.Resource)
	}
}

func TestFind_EmptyIdentifiersUseDefaults(t *testing.T) {
	var probed []string
	withLookPath(t, func(name string) (string, error) {
		probed = append(probed, name)
		return "", errors.New("not found")
	})

	_, _ = Find("", "")

	if len(probed) != 2 || probed[0] != DefaultPreferred || probed[1] != DefaultFallback {
		t.Errorf("probed %v, want [%s %s]", probed, DefaultPreferred, DefaultFallback)
	}
}

func TestVersion_Stub(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tmpDir := t.TempDir()
	stub := testutil.StubExecutable(t, tmpDir, "python3.11",
		`echo "Python 3.11.9"`)

	interp := &Interpreter{Path: stub, Command: "python3.11"}
	version, err := interp.Version(context.Background())
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if version != "Python 3.11.9" {
		t.Errorf("Version() = %q, want %q", version, "Python 3.11.9")
	}
}

func TestVersion_StderrFallback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tmpDir := t.TempDir()
	stub := testutil.StubExecutable(t, tmpDir, "python2",
		`echo "Python 2.7.18" >&2`)

	interp := &Interpreter{Path: stub, Command: "python2"}
	version, err := interp.Version(context.Background())
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if version != "Python 2.7.18" {
		t.Errorf("Version() = %q, want %q", version, "Python 2.7.18")
	}
}

func TestFind_RealLookPath(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tmpDir := t.TempDir()
	testutil.StubExecutable(t, tmpDir, "python3.99", `echo "Python 3.99.0"`)
	t.Setenv("PATH", tmpDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	interp, err := Find("python3.99", "python3")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if interp.UsedFallback {
		t.Error("UsedFallback = true, want false with stub on PATH")
	}
	if filepath.Dir(interp.Path) != tmpDir {
		t.Errorf("Path = %q, want under %q", interp.Path, tmpDir)
	}
}
