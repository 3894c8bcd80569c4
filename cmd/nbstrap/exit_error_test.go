// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitError_Error(t *testing.T) {
	t.Parallel()

	withErr := &ExitError{Code: 1, Err: errors.New("pipeline failed")}
	if got := withErr.Error(); got != "pipeline failed" {
		t.Errorf("Error() = %q, want %q", got, "pipeline failed")
	}

	withoutErr := &ExitError{Code: 3}
	if got := withoutErr.Error(); got != "exit status 3" {
		t.Errorf("Error() = %q, want %q", got, "exit status 3")
	}
}

func TestExitError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	err := &ExitError{Code: 1, Err: cause}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	bare := &ExitError{Code: 1}
	if bare.Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause is set")
	}
}

func TestExitError_ErrorsAsThroughWrapping(t *testing.T) {
	t.Parallel()

	inner := &ExitError{Code: 2, Err: errors.New("inner")}
	wrapped := fmt.Errorf("command failed: %w", inner)

	var exitErr *ExitError
	if !errors.As(wrapped, &exitErr) {
		t.Fatal("errors.As should find the ExitError through wrapping")
	}
	if exitErr.Code != 2 {
		t.Errorf("Code = %d, want 2", exitErr.Code)
	}
}
