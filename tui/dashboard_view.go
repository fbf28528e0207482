package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/warmpath/viz"
)

func (m Model) renderDashboardView() string {
	var s strings.Builder
	s.WriteString(viz.RenderDashboard(viz.GenerateDashboardStats(m.ws)))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("Esc: Back • q: Quit"))
	return s.String()
}

func (m Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" || msg.String() == "g" {
		m.viewMode = ViewBoard
	}
	return m, nil
}
