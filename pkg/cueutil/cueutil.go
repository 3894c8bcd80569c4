// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides helpers for validating files against embedded CUE
// schemas and reporting their errors in a readable form.
package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// DefaultMaxFileSize bounds how large a user-supplied CUE file may be.
// Anything bigger is almost certainly not a hand-written config file.
const DefaultMaxFileSize = 1 << 20 // 1 MiB

// CheckFileSize returns an error when data exceeds maxSize bytes.
func CheckFileSize(data []byte, maxSize int, filename string) error {
	if len(data) > maxSize {
		return fmt.Errorf("%s: file too large (%d bytes, limit %d)", filename, len(data), maxSize)
	}
	return nil
}

// FormatError formats a CUE error with dotted-path prefixes so the user sees
// which field failed validation.
//
// Error format: <file-path>: <field-path>: <message>
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	var lines []string
	for _, e := range cueErrors {
		pathStr := formatPath(errors.Path(e))
		msg := e.Error()

		// CUE sometimes repeats the path inside the message itself.
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
		}

		if pathStr != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", pathStr, msg))
		} else {
			lines = append(lines, msg)
		}
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// formatPath converts a CUE error path (e.g. ["kernel", "name"]) to dotted
// notation with bracketed array indices ("notebook_packages[0]").
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		if isIndex(part) && i > 0 {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
