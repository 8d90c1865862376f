package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Output writes command results either styled for a terminal or as JSON.
type Output interface {
	Success(msg string)
	// Error reports err, with a suggested action when one is known.
	Error(err error)
	Warning(msg string)
	Info(msg string)
	// Table renders rows. JSON output emits an array of objects keyed by
	// lower-cased header.
	Table(t *Table)
	// JSON writes v as indented JSON regardless of the format.
	JSON(v any) error
}

// NewOutput returns the Output for format. Anything but "json" is text.
func NewOutput(w io.Writer, format string) Output {
	if format == FormatJSON {
		return NewJSONOutput(w)
	}
	return NewTTYOutput(w)
}

func encodeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// tableObjects converts a table to one map per row.
func tableObjects(t *Table) []map[string]string {
	out := make([]map[string]string, 0, len(t.rows))
	for _, row := range t.rows {
		obj := make(map[string]string, len(t.headers))
		for i, h := range t.headers {
			obj[strings.ToLower(h)] = row[i]
		}
		out = append(out, obj)
	}
	return out
}
