package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")
	Yellow   = lipgloss.Color("#f9e2af")

	App = lipgloss.NewStyle().
		Background(Base).
		Foreground(Text).
		Padding(1, 2)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	PaneActive = Pane.BorderForeground(Lavender)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)

	// One accent per session state so the tracker pane reads at a glance.
	Working         = lipgloss.NewStyle().Foreground(Green).Bold(true)
	OnBreak         = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Procrastinating = lipgloss.NewStyle().Foreground(Red).Bold(true)
	Idle            = lipgloss.NewStyle().Foreground(Subtext0)

	PromptBox = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(Yellow).
			Background(Mantle).
			Foreground(Text).
			Padding(1, 2)
)

// StateStyle maps a tracker state name to its accent style.
func StateStyle(state string) lipgloss.Style {
	switch state {
	case "working":
		return Working
	case "on_break":
		return OnBreak
	case "procrastinating":
		return Procrastinating
	default:
		return Idle
	}
}
