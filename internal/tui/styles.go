package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorPrimary = lipgloss.Color("#7C3AED")
	colorSuccess = lipgloss.Color("#22C55E")
	colorWarning = lipgloss.Color("#F59E0B")
	colorDanger  = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 1)

	styleHelp = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	styleRowSelected = lipgloss.NewStyle().
				Background(lipgloss.Color("#1F2937")).
				Foreground(lipgloss.Color("#FFFFFF"))

	styleSupported   = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleUnsupported = lipgloss.NewStyle().Foreground(colorMuted)
	styleError       = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	styleNotice      = lipgloss.NewStyle().Foreground(colorWarning)

	styleDetailBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2)

	styleLabel = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(16)

	styleValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))
)

// ProtocolBadge 标记协议是否可以生成配置
func ProtocolBadge(protocol string, ok bool) string {
	if ok {
		return styleSupported.Render("● " + protocol)
	}
	return styleUnsupported.Render("○ " + protocol)
}
