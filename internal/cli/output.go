package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// PreflightError is a user-facing error with a hint and next step.
type PreflightError struct {
	Message  string
	Hint     string
	NextStep string
}

func (e *PreflightError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\nHint: " + e.Hint
	}
	if e.NextStep != "" {
		msg += "\nNext: " + e.NextStep
	}
	return msg
}

// IsJSONOutput reports whether --json was given.
func IsJSONOutput() bool { return jsonOutput }

// IsJSONLOutput reports whether --jsonl was given.
func IsJSONLOutput() bool { return jsonlOutput }

// WriteOutput writes v as indented JSON.
func WriteOutput(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// writeItems writes items as a JSON array, or one object per line with --jsonl.
func writeItems[T any](out io.Writer, items []T) error {
	if !IsJSONLOutput() {
		if items == nil {
			items = []T{}
		}
		return WriteOutput(out, items)
	}
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
	}
	return nil
}
