// Package tui renders command output for workhorse.
//
// Styling uses Lip Gloss with adaptive colors for light and dark terminals.
// Every status is shown with an icon, a color and its name, so output stays
// readable when colors are off.
//
// Call CheckNoColor before printing styled text to honor NO_COLOR and
// TERM=dumb.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/CoderDKai/workhorse/internal/constants"
)

//nolint:gochecknoglobals // Package-level palette
var (
	// ColorPrimary marks running and active states.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess marks completed states.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning marks states that need attention.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError marks failed and broken states.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted marks inactive states and secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	StyleBold = lipgloss.NewStyle().Bold(true)
	StyleDim  = lipgloss.NewStyle().Faint(true)
)

// OutputStyles holds the styles for status lines.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates the status line styles.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Info:    lipgloss.NewStyle().Foreground(ColorPrimary),
		Dim:     lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// TableStyles holds the styles for table rendering.
type TableStyles struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	Dim    lipgloss.Style
}

// NewTableStyles creates the table styles.
func NewTableStyles() *TableStyles {
	return &TableStyles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		Cell: lipgloss.NewStyle(),
		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
	}
}

// CheckNoColor drops to the ASCII profile when colors are disabled.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport reports whether styled output is allowed. NO_COLOR
// disables colors when present with any value, including empty.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// WorkspaceStatusColor returns the color of a workspace status.
func WorkspaceStatusColor(status constants.WorkspaceStatus) lipgloss.AdaptiveColor {
	switch status {
	case constants.WorkspaceStatusActive:
		return ColorPrimary
	case constants.WorkspaceStatusBroken:
		return ColorError
	case constants.WorkspaceStatusArchived, constants.WorkspaceStatusInactive:
		return ColorMuted
	}
	return ColorMuted
}

// WorkspaceStatusIcon returns the icon of a workspace status.
func WorkspaceStatusIcon(status constants.WorkspaceStatus) string {
	switch status {
	case constants.WorkspaceStatusActive:
		return "●"
	case constants.WorkspaceStatusInactive:
		return "○"
	case constants.WorkspaceStatusArchived:
		return "◌"
	case constants.WorkspaceStatusBroken:
		return "✗"
	}
	return "?"
}

// ExecutionStatusColor returns the color of a script execution status.
func ExecutionStatusColor(status constants.ExecutionStatus) lipgloss.AdaptiveColor {
	switch status {
	case constants.ExecutionStatusPending, constants.ExecutionStatusRunning:
		return ColorPrimary
	case constants.ExecutionStatusCompleted:
		return ColorSuccess
	case constants.ExecutionStatusFailed:
		return ColorError
	case constants.ExecutionStatusCancelled:
		return ColorWarning
	}
	return ColorMuted
}

// ExecutionStatusIcon returns the icon of a script execution status.
func ExecutionStatusIcon(status constants.ExecutionStatus) string {
	switch status {
	case constants.ExecutionStatusPending:
		return "○"
	case constants.ExecutionStatusRunning:
		return "⟳"
	case constants.ExecutionStatusCompleted:
		return "✓"
	case constants.ExecutionStatusFailed:
		return "✗"
	case constants.ExecutionStatusCancelled:
		return "⊘"
	}
	return "?"
}

// TerminalStatusColor returns the color of a terminal session status.
func TerminalStatusColor(status constants.TerminalStatus) lipgloss.AdaptiveColor {
	switch status {
	case constants.TerminalStatusActive:
		return ColorPrimary
	case constants.TerminalStatusError:
		return ColorError
	case constants.TerminalStatusInactive, constants.TerminalStatusClosed:
		return ColorMuted
	}
	return ColorMuted
}

// StatusCell renders icon and name in color.
func StatusCell(icon, name string, color lipgloss.AdaptiveColor) string {
	return lipgloss.NewStyle().Foreground(color).Render(icon + " " + name)
}
