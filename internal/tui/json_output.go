package tui

import (
	"encoding/json"
	"io"

	whErrors "github.com/CoderDKai/workhorse/internal/errors"
)

// JSONOutput writes one JSON object per message for scripts and pipes.
type JSONOutput struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewJSONOutput creates a JSONOutput.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{w: w, encoder: json.NewEncoder(w)}
}

type jsonMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type jsonError struct {
	Type string `json:"type"`
	*whErrors.Failure
}

// Success writes {"type":"success","message":...}.
func (o *JSONOutput) Success(msg string) {
	//nolint:errchkjson // Method has no error return per interface contract
	_ = o.encoder.Encode(jsonMessage{Type: "success", Message: msg})
}

// Error writes the failure with its kind and suggested action.
func (o *JSONOutput) Error(err error) {
	//nolint:errchkjson // Method has no error return per interface contract
	_ = o.encoder.Encode(jsonError{Type: "error", Failure: whErrors.NewFailure(err)})
}

// Warning writes {"type":"warning","message":...}.
func (o *JSONOutput) Warning(msg string) {
	//nolint:errchkjson // Method has no error return per interface contract
	_ = o.encoder.Encode(jsonMessage{Type: "warning", Message: msg})
}

// Info writes {"type":"info","message":...}.
func (o *JSONOutput) Info(msg string) {
	//nolint:errchkjson // Method has no error return per interface contract
	_ = o.encoder.Encode(jsonMessage{Type: "info", Message: msg})
}

// Table writes the rows as an array of objects.
func (o *JSONOutput) Table(t *Table) {
	//nolint:errchkjson // Method has no error return per interface contract
	_ = o.encoder.Encode(tableObjects(t))
}

// JSON writes v as indented JSON.
func (o *JSONOutput) JSON(v any) error {
	return encodeIndented(o.w, v)
}
