package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case recordsLoadedMsg:
		m.loading = false
		m.records = msg.records
		m.err = nil
		if m.selected >= len(m.records) {
			m.selected = 0
		}
		return m, nil

	case errorMsg:
		m.loading = false
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.view == ViewList && len(m.records) > 0 {
			m.selected--
			if m.selected < 0 {
				m.selected = len(m.records) - 1
			}
		}

	case key.Matches(msg, m.keys.Down):
		if m.view == ViewList && len(m.records) > 0 {
			m.selected++
			if m.selected >= len(m.records) {
				m.selected = 0
			}
		}

	case key.Matches(msg, m.keys.Detail):
		if len(m.records) > 0 {
			m.view = ViewDetail
		}

	case key.Matches(msg, m.keys.Back):
		m.view = ViewList

	case key.Matches(msg, m.keys.Choose):
		return m.handleChoose()

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.loadRecords()
	}
	return m, nil
}

// handleChoose 只接受能生成配置的协议。
func (m Model) handleChoose() (tea.Model, tea.Cmd) {
	if len(m.records) == 0 {
		return m, nil
	}
	rec := m.records[m.selected]
	if !supported(rec) {
		m.notice = fmt.Sprintf("%s is not supported by the config builder", rec.Protocol)
		return m, nil
	}
	m.chosen = &rec
	return m, tea.Quit
}
