package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	title    = "✦ Multimodal RAG Medical Chatbot"
	subtitle = "Text • Voice • Vision powered by AI"
)

// View renders the whole screen.
func (m Model) View() string {
	sections := []string{m.headerView(), m.bodyView()}

	if m.state.Image != nil {
		sections = append(sections, m.theme.Staged.Render("📎 "+imageLine(m.state.Image)+"  ctrl+x to remove"))
	}

	if notice := m.notices.Current(); notice != "" {
		sections = append(sections, m.theme.Notice.Render(notice)+" "+m.theme.Help.Render("esc to dismiss"))
	}

	sections = append(sections, m.statusView(), m.inputView(), m.theme.Help.Render(m.keys.helpLine()))

	return strings.Join(sections, "\n")
}

func (m Model) headerView() string {
	header := lipgloss.JoinVertical(lipgloss.Center,
		m.theme.Title.Render(title),
		m.theme.Subtitle.Render(subtitle),
	)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, header) + "\n"
}

func (m Model) bodyView() string {
	if !m.showRobot {
		return m.list.View()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.Panel.Render(m.robot.View()),
		" ",
		m.list.View(),
	)
}

func (m Model) statusView() string {
	switch {
	case m.state.Pending:
		return m.theme.Disabled.Render("Waiting for the answer...")
	case m.state.Recording:
		return m.theme.Recording.Render("● Recording... ctrl+r to stop")
	case m.choosingImage:
		return m.theme.Help.Render("Enter the image file to attach. esc cancels.")
	default:
		return ""
	}
}

func (m Model) inputView() string {
	if m.choosingImage {
		return m.path.View()
	}
	if m.state.Pending {
		return m.theme.Disabled.Render(m.input.Prompt + inputPlaceholder)
	}
	return m.input.View()
}
