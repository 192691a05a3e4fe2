// Package tui 提供交互式服务器选择界面。
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/creamcroissant/sub2xray/internal/link"
	"github.com/creamcroissant/sub2xray/internal/xray"
)

// ViewType 表示当前视图
type ViewType int

const (
	ViewList   ViewType = iota // 服务器列表
	ViewDetail                 // 单条记录详情
)

// Loader 加载候选记录，通常是 jsonfs.Store.List。
type Loader func(ctx context.Context) ([]link.ServerRecord, error)

// Model 是服务器选择器的 TUI 模型
type Model struct {
	records  []link.ServerRecord
	selected int
	view     ViewType
	chosen   *link.ServerRecord
	loader   Loader

	// 终端尺寸
	width  int
	height int

	loading bool
	err     error
	notice  string

	keys keyMap
}

// keyMap 定义全部按键绑定
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Choose  key.Binding
	Detail  key.Binding
	Back    key.Binding
	Quit    key.Binding
	Refresh key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Choose: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "build"),
		),
		Detail: key.NewBinding(
			key.WithKeys("i", "right", "l"),
			key.WithHelp("i", "details"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace", "left", "h"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
	}
}

// NewModel 创建新的 TUI 模型
func NewModel(loader Loader) Model {
	return Model{
		loader:  loader,
		view:    ViewList,
		keys:    defaultKeyMap(),
		loading: true,
	}
}

// Chosen 返回用户确认的记录；直接退出时为 nil。
func (m Model) Chosen() *link.ServerRecord {
	return m.chosen
}

// Init 实现 tea.Model
func (m Model) Init() tea.Cmd {
	return m.loadRecords()
}

type recordsLoadedMsg struct {
	records []link.ServerRecord
}

type errorMsg struct {
	err error
}

func (m Model) loadRecords() tea.Cmd {
	loader := m.loader
	return func() tea.Msg {
		if loader == nil {
			return recordsLoadedMsg{}
		}
		records, err := loader(context.Background())
		if err != nil {
			return errorMsg{err: err}
		}
		return recordsLoadedMsg{records: records}
	}
}

func supported(rec link.ServerRecord) bool {
	return xray.Supported(rec.Protocol)
}
