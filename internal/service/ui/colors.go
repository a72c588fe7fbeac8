package ui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle ANSI 6 (Cyan) reads well on light and dark terminals
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle ANSI 8 (Bright Black) keeps descriptions quiet
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	UserStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	AssistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	PendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	RecordingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	AlertStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder())
	StatusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	HelpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
