package styles

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	PrimaryColor = lipgloss.Color("#2AA9A0")
	AccentColor  = lipgloss.Color("#874BFD")
	MutedColor   = lipgloss.Color("#626262")
	ErrorColor   = lipgloss.Color("9")
	SuccessColor = lipgloss.Color("#00FF77")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	ContainerStyle = lipgloss.NewStyle().
			Padding(1, 2)

	SidebarStyle = lipgloss.NewStyle().
			Width(32).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(AccentColor).
			Padding(1, 2)

	ThreadStyle = lipgloss.NewStyle().
			Width(64).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(AccentColor).
			Padding(1, 2)

	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(AccentColor).
				Bold(true).
				Padding(0, 1)

	UnreadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	SenderStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(PrimaryColor).
			BorderLeft(true).
			PaddingLeft(1)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a")).
			Italic(true)

	GroupHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(AccentColor).
				MarginTop(1)

	ToastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(PrimaryColor).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			MarginTop(1)

	StatusInfoStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)

	StatusSuccessStyle = lipgloss.NewStyle().
				Foreground(SuccessColor)
)
