// Package tui provides shared theme and styles for the clawlink TUI.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/clawlink/clawlink/internal/gateway"
)

// Colors — brand palette.
var (
	ColorPrimary = lipgloss.Color("#E8590C") // claw orange
	ColorAccent  = lipgloss.Color("#6366F1") // indigo

	ColorSuccess = lipgloss.Color("#10B981") // emerald
	ColorWarning = lipgloss.Color("#F59E0B") // amber
	ColorError   = lipgloss.Color("#EF4444") // red
	ColorMuted   = lipgloss.Color("#6B7280") // gray-500
	ColorText    = lipgloss.Color("#E5E7EB") // gray-200
	ColorSubtle  = lipgloss.Color("#9CA3AF") // gray-400
)

// Shared styles used across the init wizard and chat view.
var (
	// Title is the main heading style.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)

	// Subtitle for secondary headings.
	Subtitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	// Description for helper text.
	Description = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	// Dimmed for secondary content.
	Dimmed = lipgloss.NewStyle().
		Foreground(ColorMuted)

	// Success for positive messages.
	Success = lipgloss.NewStyle().
		Foreground(ColorSuccess)

	// WarningStyle for degraded states.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// ErrorStyle for error messages (avoiding collision with builtin error).
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	// Help for keybind hints at the bottom.
	Help = lipgloss.NewStyle().
		Foreground(ColorMuted)

	// Border is a rounded border style for panels.
	Border = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(0, 1)

	// ActiveDot represents the connected state.
	ActiveDot = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Render("●")

	// InactiveDot represents the disconnected state.
	InactiveDot = lipgloss.NewStyle().
			Foreground(ColorError).
			Render("●")

	// WarnDot represents connecting/reconnecting states.
	WarnDot = lipgloss.NewStyle().
		Foreground(ColorWarning).
		Render("●")
)

// StateDot returns a colored dot for a gateway connection state.
func StateDot(state gateway.ConnectionState) string {
	switch state {
	case gateway.Connected:
		return ActiveDot
	case gateway.Connecting, gateway.Reconnecting:
		return WarnDot
	default:
		return InactiveDot
	}
}

// StateText returns a colored label for a gateway connection state.
func StateText(state gateway.ConnectionState) string {
	switch state {
	case gateway.Connected:
		return Success.Render(state.String())
	case gateway.Connecting, gateway.Reconnecting:
		return WarningStyle.Render(state.String())
	default:
		return ErrorStyle.Render(state.String())
	}
}
