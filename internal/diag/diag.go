// Package diag defines the non-fatal diagnostics reported per document.
package diag

import (
	"fmt"
	"log/slog"
)

type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Level maps the severity onto a log level.
func (s Severity) Level() slog.Level {
	switch s {
	case Warning:
		return slog.LevelWarn
	case Error:
		return slog.LevelError
	}
	return slog.LevelInfo
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Code string

const (
	CodeInvalidDocument Code = "invalid-document"
	CodeEmptyDocument   Code = "empty-document"
	CodeGenerationError Code = "generation-error"
	CodeConfiguration   Code = "configuration"
	CodeLoader          Code = "loader"
)

type Diagnostic struct {
	Document string   `json:"document"`
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s [%s]: %s", d.Document, d.Severity, d.Code, d.Message)
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics with the given severity.
func Count(diags []Diagnostic, severity Severity) int {
	n := 0
	for _, d := range diags {
		if d.Severity == severity {
			n++
		}
	}
	return n
}
