package main

import "github.com/charmbracelet/lipgloss"

var (
	styleHighlight = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22C55E"))
	styleFailure   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	styleMuted     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)
