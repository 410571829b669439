package cli

import "github.com/charmbracelet/lipgloss"

// Adaptive colors for light and dark terminals.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Semantic styles for CLI output.
var (
	styleBrand   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleLabel   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleHint    = lipgloss.NewStyle().Foreground(colorDim)
)

// Entity state badge styles.
var (
	badgeOn      = lipgloss.NewStyle().Foreground(colorGreen)
	badgeOff     = lipgloss.NewStyle().Foreground(colorDim)
	badgeUnknown = lipgloss.NewStyle().Foreground(colorYellow)
)

func stateBadge(state string) string {
	switch state {
	case "on", "open", "unlocked", "playing", "home":
		return badgeOn.Render(state)
	case "off", "closed", "locked", "paused", "not_home":
		return badgeOff.Render(state)
	case "unknown", "unavailable":
		return badgeUnknown.Render(state)
	default:
		return styleValue.Render(state)
	}
}
