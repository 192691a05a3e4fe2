package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View 实现 tea.Model
func (m Model) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(styleHeader.Width(width).Render("  sub2xray · select a server"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styleError.Render(fmt.Sprintf("  Error: %v", m.err)))
		b.WriteString("\n\n")
	}
	if m.loading {
		b.WriteString(styleHelp.Render("Loading..."))
		b.WriteString("\n\n")
	}

	switch m.view {
	case ViewDetail:
		b.WriteString(m.renderDetail())
	default:
		b.WriteString(m.renderList())
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(styleNotice.Render("  " + m.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styleHelp.Render("[↑/↓] Navigate  [Enter] Build  [i] Details  [r] Reload  [q] Quit"))
	return b.String()
}

func (m Model) renderList() string {
	if len(m.records) == 0 {
		if m.loading {
			return ""
		}
		return styleHelp.Render("No servers found. Run `sub2xray decode` first.") + "\n"
	}

	visible := m.height - 8
	if visible < 5 {
		visible = 5
	}
	start := 0
	if m.selected >= visible {
		start = m.selected - visible + 1
	}
	end := start + visible
	if end > len(m.records) {
		end = len(m.records)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}
	if len(m.records) > visible {
		b.WriteString(styleHelp.Render(fmt.Sprintf("Showing %d-%d of %d servers", start+1, end, len(m.records))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderRow(i int) string {
	rec := m.records[i]
	index := rec.Index
	if index == 0 {
		index = i + 1
	}
	badge := ProtocolBadge(fmt.Sprintf("%-10s", rec.Protocol), supported(rec))
	row := fmt.Sprintf("  %02d  %s  %-28s  %s:%s", index, badge, truncate(rec.Note, 28), rec.Addr, rec.Port)
	if i == m.selected {
		return styleRowSelected.Render("›" + row[1:])
	}
	return row
}

func (m Model) renderDetail() string {
	if len(m.records) == 0 {
		return ""
	}
	rec := m.records[m.selected]

	lines := []string{
		detailLine("Note", rec.Note),
		detailLine("Protocol", string(rec.Protocol)),
		detailLine("Address", rec.Addr),
		detailLine("Port", rec.Port),
		detailLine("Credential", mask(rec.UUID)),
	}
	if rec.Method != "" {
		lines = append(lines, detailLine("Method", rec.Method))
	}
	keys := make([]string, 0, len(rec.Options))
	for k := range rec.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, detailLine(k, rec.Option(k)))
	}
	if !supported(rec) {
		lines = append(lines, "", styleNotice.Render("config builder does not support this protocol"))
	}
	return styleDetailBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) + "\n"
}

func detailLine(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, styleLabel.Render(label), styleValue.Render(value))
}

// mask 只显示凭据的首尾字符。
func mask(s string) string {
	if len(s) <= 6 {
		return strings.Repeat("*", len(s))
	}
	return s[:3] + strings.Repeat("*", len(s)-6) + s[len(s)-3:]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
