package tui

import "github.com/charmbracelet/lipgloss"

const accentColor = lipgloss.Color("#a0263a")

//nolint:gochecknoglobals // Shared lipgloss styles.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginBottom(1)

	NameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	MessageStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	ActivePageStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(accentColor).
			Padding(0, 1)

	PageStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Padding(0, 1)

	DisabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(0, 1)
)
