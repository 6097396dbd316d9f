package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Adaptive colors keep the console readable on light terminals.
var (
	accent  = lipgloss.AdaptiveColor{Light: "#1d4ed8", Dark: "#60a5fa"}
	good    = lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#4ade80"}
	bad     = lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#f87171"}
	caution = lipgloss.AdaptiveColor{Light: "#a16207", Dark: "#facc15"}
	violet  = lipgloss.AdaptiveColor{Light: "#7e22ce", Dark: "#c084fc"}
	muted   = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	fg      = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#f3f4f6"}
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(fg)
	subtitleStyle  = lipgloss.NewStyle().Foreground(muted)
	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginTop(1)
	footerStyle    = lipgloss.NewStyle().Foreground(muted).MarginTop(1)
	dimStyle       = lipgloss.NewStyle().Foreground(muted)
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(accent)
	assistantStyle = lipgloss.NewStyle().Foreground(fg)
	proposalStyle  = lipgloss.NewStyle().Bold(true).Foreground(violet)
	readyStyle     = lipgloss.NewStyle().Foreground(good)
	failedStyle    = lipgloss.NewStyle().Foreground(bad)
	warningStyle   = lipgloss.NewStyle().Foreground(caution)

	// Table cells.
	headerCellStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
)

// Status marks shown in the STATUS columns.
const (
	runningMark = "[OK]"
	stoppedMark = "[--]"
	mixedMark   = "[~~]"
	unknownMark = "[??]"
)
