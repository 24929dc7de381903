package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/ipc"
)

const statusInterval = time.Second

// clearStatusMsg clears a tab's transient status line.
type clearStatusMsg struct{}

func clearStatusAfter() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// model is the root bubbletea model for the TUI.
type model struct {
	configPath string
	result     *config.LoadResult
	loadErr    error
	ipcClient  *ipc.Client

	activeTab Tab

	statusTab   StatusTab
	presetsTab  PresetsTab
	bindingsTab BindingsTab

	// Save overlay
	originalConfig *config.Config
	saveOverlay    SaveOverlay

	width  int
	height int
}

func newModel(configPath string) model {
	m := model{
		configPath: configPath,
		activeTab:  TabStatus,
		ipcClient:  ipc.NewClient(),
	}
	m.loadConfig()

	cfg := config.DefaultConfig()
	if m.result != nil {
		cfg = m.result.Config
	}
	m.originalConfig = cloneConfig(cfg)

	m.statusTab = NewStatusTab(m.ipcClient)
	m.presetsTab = NewPresetsTab(m.ipcClient, cfg)
	m.bindingsTab = NewBindingsTab(cfg)
	return m
}

func (m *model) loadConfig() {
	var res *config.LoadResult
	var err error
	if m.configPath == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(m.configPath)
	}
	if err != nil {
		m.loadErr = err
		return
	}
	m.result = res
}

func (m model) config() *config.Config {
	return m.presetsTab.cfg
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return m.statusTab.Init()
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Status polling runs regardless of the visible tab.
	switch msg.(type) {
	case statusTickMsg, statusResultMsg:
		var cmd tea.Cmd
		m.statusTab, cmd = m.statusTab.Update(msg)
		return m, cmd
	case clearStatusMsg:
		m.statusTab, _ = m.statusTab.Update(msg)
		m.presetsTab, _ = m.presetsTab.Update(msg)
		return m, nil
	}

	if m.saveOverlay.Active() {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			m.saveOverlay = m.saveOverlay.Update(msg, m.config(), m.configPath, m.ipcClient, m.statusTab.Connected())
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = cloneConfig(m.config())
			}
		case tea.WindowSizeMsg:
			m.resize(msg)
		}
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+s" {
		m.saveOverlay.Show(m.originalConfig, m.config())
		return m, nil
	}

	// An open form consumes every key except ctrl+c.
	capturing := (m.activeTab == TabPresets && m.presetsTab.editing) ||
		(m.activeTab == TabBindings && m.bindingsTab.editing)
	if capturing {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		case tea.WindowSizeMsg:
			m.resize(msg)
			return m, nil
		}
		var cmd tea.Cmd
		switch m.activeTab {
		case TabPresets:
			m.presetsTab, cmd = m.presetsTab.Update(msg)
		case TabBindings:
			m.bindingsTab, cmd = m.bindingsTab.Update(msg)
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "f1":
			m.activeTab = TabStatus
			return m, nil
		case "f2":
			m.activeTab = TabPresets
			return m, nil
		case "f3":
			m.activeTab = TabBindings
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.resize(msg)
		return m, nil
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabStatus:
		m.statusTab, cmd = m.statusTab.Update(msg)
	case TabPresets:
		m.presetsTab, cmd = m.presetsTab.Update(msg)
	case TabBindings:
		m.bindingsTab, cmd = m.bindingsTab.Update(msg)
	}
	return m, cmd
}

func (m *model) resize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	// status bar, tab bar with margin, help bar
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	sub := tea.WindowSizeMsg{Width: m.width, Height: h}
	m.statusTab, _ = m.statusTab.Update(sub)
	m.presetsTab, _ = m.presetsTab.Update(sub)
	m.bindingsTab, _ = m.bindingsTab.Update(sub)
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.statusTab.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.activeTab, m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch {
	case m.saveOverlay.Active():
		content = m.saveOverlay.View(m.width, contentHeight)
	case m.activeTab == TabStatus:
		content = m.statusTab.View()
	case m.activeTab == TabPresets:
		content = m.presetsTab.View()
	case m.activeTab == TabBindings:
		content = m.bindingsTab.View()
	}
	if m.loadErr != nil {
		content = errStyle.Render("config: "+m.loadErr.Error()+" (editing defaults)") + "\n" + content
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
