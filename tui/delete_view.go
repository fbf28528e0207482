// ABOUTME: Remove confirmation view for TUI
// ABOUTME: Confirms removing a referral; its tasks stay in the queue
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmDeleteView() string {
	r, ok := m.ws.Referral(m.selectedID)
	if !ok {
		return fmt.Sprintf("Referral %s no longer exists.", m.selectedID)
	}

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Remove (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		warningStyle.Render("⚠  REMOVE REFERRAL  ⚠"),
		"",
		fmt.Sprintf("Remove %s (via %s) from the pipeline?", r.Prospect.Name, r.ClientName),
		"",
		"Open tasks for this referral are kept.",
		"",
		buttons,
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		confirmBoxStyle.Render(content),
	)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		r, _ := m.ws.Referral(m.selectedID)
		_, err := m.ws.RemoveReferral(m.selectedID)
		m.report("✓ Removed "+r.Prospect.Name, err)
		m.viewMode = ViewBoard
		m.selectedID = ""
		if m.selectedRow >= m.rowCount() && m.selectedRow > 0 {
			m.selectedRow--
		}
	case "n", "N", "esc":
		m.viewMode = ViewBoard
	}

	return m, nil
}
