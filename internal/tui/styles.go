package tui

import "github.com/charmbracelet/lipgloss"

var (
	WelcomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	UserIconStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	PromptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("183"))
	InputStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	CursorStyle   = lipgloss.NewStyle().Reverse(true)

	PlaceholderStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Italic(true)
	PlaceholderCursorStyle = PlaceholderStyle.Reverse(true)

	FooterHead = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	FooterMeta = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	ErrorLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	HeadingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("222")).Bold(true)
	BulletStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("180"))

	CompletionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	CompletionSelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62"))
)
