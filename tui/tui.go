// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Provides an interactive board for the referral pipeline and task queue
package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/warmpath/workspace"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewBoard ViewMode = iota
	ViewDetail
	ViewDashboard
	ViewConfirmDelete
)

// Tab selects what the board lists
type Tab int

const (
	TabPipeline Tab = iota
	TabTasks
	TabOverdue
)

var tabNames = []string{"Pipeline", "Tasks", "Overdue"}

// Model is the main bubbletea model
type Model struct {
	ws       *workspace.Workspace
	viewMode ViewMode
	tab      Tab

	selectedRow int
	selectedID  string

	// Detail view template cycling
	templateIndex int

	status string

	width  int
	height int
}

// NewModel creates a new TUI model
func NewModel(ws *workspace.Workspace) Model {
	return Model{
		ws:       ws,
		viewMode: ViewBoard,
		tab:      TabPipeline,
		width:    100,
		height:   30,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewBoard:
		return m.renderBoardView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewDashboard:
		return m.renderDashboardView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if m.viewMode != ViewConfirmDelete {
			return m, tea.Quit
		}
	}

	switch m.viewMode {
	case ViewBoard:
		return m.handleBoardKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewDashboard:
		return m.handleDashboardKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

// report sets the status line from the result of a mutation. A persistence
// failure still shows the change as done, with the warning appended.
func (m *Model) report(done string, err error) {
	switch {
	case err == nil:
		m.status = done
	case errors.Is(err, workspace.ErrPersistence):
		m.status = done + " (not saved: " + m.ws.LastWarning() + ")"
	default:
		m.status = "Error: " + err.Error()
	}
}

// Run starts the TUI on the alternate screen.
func Run(ws *workspace.Workspace) error {
	p := tea.NewProgram(NewModel(ws), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)
