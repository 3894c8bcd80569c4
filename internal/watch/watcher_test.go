// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"nbstrap/internal/testutil"
)

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New(Config{
		BaseDir:  t.TempDir(),
		Patterns: []string{"[invalid"},
	})
	if err == nil {
		t.Fatal("New() error = nil, want invalid pattern error")
	}
}

func TestNew_InvalidIgnorePattern(t *testing.T) {
	_, err := New(Config{
		BaseDir: t.TempDir(),
		Ignore:  []string{"[invalid"},
	})
	if err == nil {
		t.Fatal("New() error = nil, want invalid ignore pattern error")
	}
}

func TestNew_MissingBaseDir(t *testing.T) {
	_, err := New(Config{BaseDir: filepath.Join(t.TempDir(), "does-not-exist")})
	if err == nil {
		t.Fatal("New() error = nil, want error for missing directory")
	}
}

func TestIsIgnored(t *testing.T) {
	w, err := New(Config{BaseDir: t.TempDir(), Ignore: []string{"extra/**"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.fsw.Close()

	tests := []struct {
		rel  string
		want bool
	}{
		{"requirements.txt", false},
		{".venv/lib/python3.11/site-packages/x.py", true},
		{"src/__pycache__/mod.cpython-311.pyc", true},
		{".git/index", true},
		{"notes.swp", true},
		{"extra/generated.txt", true},
	}
	for _, tt := range tests {
		if got := w.isIgnored(tt.rel); got != tt.want {
			t.Errorf("isIgnored(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

func TestMatchesPatterns(t *testing.T) {
	w, err := New(Config{BaseDir: t.TempDir(), Patterns: []string{"requirements*.txt"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.fsw.Close()

	if !w.matchesPatterns("requirements.txt") {
		t.Error("matchesPatterns(requirements.txt) = false, want true")
	}
	if !w.matchesPatterns("requirements-dev.txt") {
		t.Error("matchesPatterns(requirements-dev.txt) = false, want true")
	}
	if w.matchesPatterns("README.md") {
		t.Error("matchesPatterns(README.md) = true, want false")
	}
}

func TestMatchesPatterns_EmptyMatchesAll(t *testing.T) {
	w, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.fsw.Close()

	if !w.matchesPatterns("anything.txt") {
		t.Error("matchesPatterns with no patterns = false, want true")
	}
}

func TestRun_FiresOnChange(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	reqPath := filepath.Join(dir, "requirements.txt")
	testutil.MustWriteFile(t, reqPath, "pandas\n")

	var (
		mu      sync.Mutex
		changed []string
	)
	fired := make(chan struct{}, 1)

	w, err := New(Config{
		BaseDir:  dir,
		Patterns: []string{"requirements.txt"},
		Debounce: 50 * time.Millisecond,
		Stderr:   &bytes.Buffer{},
		OnChange: func(_ context.Context, paths []string) error {
			mu.Lock()
			changed = append(changed, paths...)
			mu.Unlock()
			select {
			case fired <- struct{}{}:
			default:
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to start receiving events.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(reqPath, []byte("pandas\nduckdb\n"), 0o644); err != nil {
		t.Fatalf("failed to modify requirements: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange was not called within 5s")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v, want nil on cancellation", err)
	}

	mu.Lock()
	defer mu.Unlock()
	found := false
	for _, p := range changed {
		if p == "requirements.txt" {
			found = true
		}
	}
	if !found {
		t.Errorf("changed paths = %v, want to include requirements.txt", changed)
	}
}

func TestRun_IgnoresNonMatchingFiles(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()

	fired := make(chan struct{}, 1)
	w, err := New(Config{
		BaseDir:  dir,
		Patterns: []string{"requirements.txt"},
		Debounce: 50 * time.Millisecond,
		Stderr:   &bytes.Buffer{},
		OnChange: func(context.Context, []string) error {
			select {
			case fired <- struct{}{}:
			default:
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	testutil.MustWriteFile(t, filepath.Join(dir, "README.md"), "unrelated\n")

	select {
	case <-fired:
		t.Error("OnChange fired for a non-matching file")
	case <-time.After(500 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v, want nil on cancellation", err)
	}
}

func TestRun_SecondCallFails(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	w, err := New(Config{BaseDir: t.TempDir(), Stderr: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	if err := w.Run(ctx); err == nil {
		t.Error("second Run() error = nil, want error")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("first Run() error = %v, want nil on cancellation", err)
	}
}
