package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/papercomputeco/medchat/pkg/conversation"
)

const (
	userLabel    = "You"
	botLabel     = "MedBot"
	sourcesTitle = "Referenced Sources"
	typingLabel  = "Thinking..."

	maxChipWidth = 40
)

// MessageList renders the conversation log in a scrollable viewport. It
// scrolls to the bottom whenever the log's version changes.
type MessageList struct {
	theme    Theme
	viewport viewport.Model
	spinner  spinner.Model

	renderer      *glamour.TermRenderer
	rendererWidth int

	messages []conversation.Message
	pending  bool

	// rendered caches message blocks by ID and width. Messages never change.
	rendered map[string]string

	// version is the log version last rendered.
	version uint64
}

// NewMessageList creates an empty list.
func NewMessageList(theme Theme) MessageList {
	return MessageList{
		theme:    theme,
		rendered: make(map[string]string),
		viewport: viewport.New(80, 20),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(theme.Typing),
		),
	}
}

// SetSize resizes the viewport and re-renders.
func (l *MessageList) SetSize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if width == l.viewport.Width && height == l.viewport.Height {
		return
	}
	if width != l.viewport.Width {
		clear(l.rendered)
	}
	l.viewport.Width = width
	l.viewport.Height = height
	l.refresh()
}

// Sync replaces what is shown. The list scrolls to the bottom when version
// differs from the last one seen. The returned command runs the typing
// indicator while a reply is pending.
func (l *MessageList) Sync(messages []conversation.Message, version uint64, pending bool) tea.Cmd {
	if l.messages != nil && version == l.version && pending == l.pending {
		return nil
	}

	var cmd tea.Cmd
	if pending && !l.pending {
		cmd = l.spinner.Tick
	}

	scroll := version != l.version || pending != l.pending

	l.messages = messages
	l.pending = pending
	l.version = version
	l.refresh()

	if scroll {
		l.viewport.GotoBottom()
	}

	return cmd
}

// Version is the log version last rendered.
func (l *MessageList) Version() uint64 {
	return l.version
}

// Update animates the typing indicator and scrolls on mouse and key input.
func (l *MessageList) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !l.pending {
			return nil
		}
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		l.refresh()
		return cmd
	default:
		var cmd tea.Cmd
		l.viewport, cmd = l.viewport.Update(msg)
		return cmd
	}
}

// ScrollUp moves up half a page.
func (l *MessageList) ScrollUp() {
	l.viewport.HalfPageUp()
}

// ScrollDown moves down half a page.
func (l *MessageList) ScrollDown() {
	l.viewport.HalfPageDown()
}

// AtBottom reports whether the last line is visible.
func (l *MessageList) AtBottom() bool {
	return l.viewport.AtBottom()
}

// View renders the viewport.
func (l MessageList) View() string {
	return l.viewport.View()
}

func (l *MessageList) refresh() {
	atBottom := l.viewport.AtBottom()
	l.viewport.SetContent(l.Render(l.messages, l.pending))
	if atBottom {
		l.viewport.GotoBottom()
	}
}

// Render draws the messages and, while pending, the typing indicator.
func (l *MessageList) Render(messages []conversation.Message, pending bool) string {
	width := l.viewport.Width
	blocks := make([]string, 0, len(messages)+1)

	for _, m := range messages {
		cacheKey := fmt.Sprintf("%s/%d", m.ID, width)
		block, ok := l.rendered[cacheKey]
		if !ok {
			block = l.renderMessage(m, width)
			l.rendered[cacheKey] = block
		}
		blocks = append(blocks, block)
	}

	if pending {
		indicator := l.theme.BotBadge.Render(botLabel) + " " +
			l.spinner.View() + " " + l.theme.Typing.Render(typingLabel)
		blocks = append(blocks, indicator)
	}

	return strings.Join(blocks, "\n\n")
}

func (l *MessageList) renderMessage(m conversation.Message, width int) string {
	bubbleWidth := max(width*3/4, 20)
	inner := max(bubbleWidth-4, 10)

	var parts []string

	if m.Image != nil {
		parts = append(parts, l.theme.Attachment.Render(imageLine(m.Image)))
	}

	if m.Role == conversation.RoleBot {
		parts = append(parts, l.markdown(m.Content, inner))
	} else {
		parts = append(parts, lipgloss.NewStyle().Width(inner).Render(m.Content))
	}

	if m.HasSources() {
		parts = append(parts, "", l.theme.SourceTitle.Render(sourcesTitle), l.chips(m.Sources, inner))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.Role == conversation.RoleUser {
		bubble := l.theme.UserBubble.MaxWidth(bubbleWidth).Render(content)
		block := lipgloss.JoinVertical(lipgloss.Right, l.theme.UserBadge.Render(userLabel), bubble)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
	}

	bubble := l.theme.BotBubble.MaxWidth(bubbleWidth).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, l.theme.BotBadge.Render(botLabel), bubble)
}

// markdown renders bot content, falling back to plain wrapped text.
func (l *MessageList) markdown(content string, width int) string {
	if l.renderer == nil || l.rendererWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(l.theme.GlamourStyle),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			l.renderer = nil
			return lipgloss.NewStyle().Width(width).Render(content)
		}
		l.renderer = r
		l.rendererWidth = width
	}

	out, err := l.renderer.Render(content)
	if err != nil {
		return lipgloss.NewStyle().Width(width).Render(content)
	}
	return strings.Trim(out, "\n")
}

// chips lays out one chip per source, wrapping onto new lines at width.
func (l *MessageList) chips(sources []string, width int) string {
	var lines []string
	var line string

	for _, src := range sources {
		chip := l.theme.SourceChip.Render("▤ " + ansi.Truncate(src, maxChipWidth, "…"))

		if line != "" && ansi.StringWidth(line)+1+ansi.StringWidth(chip) > width {
			lines = append(lines, line)
			line = ""
		}
		if line != "" {
			line += " "
		}
		line += chip
	}
	if line != "" {
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func imageLine(img *conversation.Image) string {
	return fmt.Sprintf("[image] %s (%s, %s)", img.Name, img.MIMEType, humanSize(img.Size))
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
