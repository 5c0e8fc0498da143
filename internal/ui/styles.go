package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme colors used throughout the UI
const (
	ColorAccent    = "86"  // Cyan/green - for titles, highlights
	ColorHighlight = "205" // Magenta - for selected items, borders
	ColorDanger    = "196" // Red - for warnings, errors
	ColorMuted     = "241" // Gray - for dimmed text, hints
	ColorText      = "252" // Light gray - for normal text
	ColorDim       = "243" // Darker gray - for very dim text
	ColorWarning   = "208" // Orange - for warning details
)

// Anomaly bucket colors, strong deficit through strong surplus.
const (
	ColorAnomalyLow2  = "160" // z <= -1.5, severe vegetation deficit
	ColorAnomalyLow1  = "208" // -1.5 < z <= -0.5
	ColorAnomalyMid   = "250" // -0.5 < z < 0.5, near the series mean
	ColorAnomalyHigh1 = "113" // 0.5 <= z < 1.5
	ColorAnomalyHigh2 = "34"  // z >= 1.5, well above the series mean
)

// Styles contains shared style definitions used across views.
var Styles = struct {
	// Title styles
	Title        lipgloss.Style // Bold accent color - for main titles
	TitleWarning lipgloss.Style // Bold danger color - for error titles

	// Box styles
	Box        lipgloss.Style // Standard box with rounded border
	BoxDanger  lipgloss.Style // Error box (danger border)
	BoxCompact lipgloss.Style // Compact box with less padding (sidebar fields)

	// Text styles
	Selected lipgloss.Style // Highlighted/selected items (bold highlight color)
	Muted    lipgloss.Style // Dimmed text (muted color)
	Normal   lipgloss.Style // Normal text (text color)
	Hint     lipgloss.Style // Help/hint text (muted color)
	Status   lipgloss.Style // Status line indicators (accent color)
	Section  lipgloss.Style // Section headers (highlight color)
	Empty    lipgloss.Style // Empty state text (muted, italic)
	Details  lipgloss.Style // Warning details (warning color)
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent)),
	TitleWarning: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorDanger)),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(1, 2).
		Margin(1),
	BoxDanger: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorDanger)).
		Padding(1, 2).
		Margin(1),
	BoxCompact: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(0, 1).
		Margin(1),
	Selected: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)),
	Hint: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Status: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccent)),
	Section: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)),
	Empty: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)).
		Italic(true),
	Details: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWarning)),
}

// anomalyStyle picks the bucket style for a z-score.
func anomalyStyle(z float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(anomalyColor(z)))
}

// anomalyColor maps a z-score to its bucket color.
func anomalyColor(z float64) string {
	switch {
	case z <= -1.5:
		return ColorAnomalyLow2
	case z <= -0.5:
		return ColorAnomalyLow1
	case z < 0.5:
		return ColorAnomalyMid
	case z < 1.5:
		return ColorAnomalyHigh1
	default:
		return ColorAnomalyHigh2
	}
}
