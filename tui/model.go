// Package tui is the interactive terminal front end of medchat.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/papercomputeco/medchat/pkg/conversation"
	"github.com/papercomputeco/medchat/pkg/robot"
)

const (
	inputPlaceholder = "Ask your medical question..."
	pathPlaceholder  = "path/to/image.png"

	headerHeight = 3
)

type (
	changedMsg     struct{}
	noticeMsg      struct{}
	imageLoadedMsg struct {
		image *conversation.Image
		err   error
	}
	replyMsg struct {
		message conversation.Message
	}
)

// Model is the Bubble Tea model of the chat screen. The controller owns all
// conversation state; the model mirrors it after every change notification.
type Model struct {
	ctx     context.Context
	ctrl    *conversation.Controller
	notices *NoticeBoard
	logger  *zap.Logger
	keys    KeyMap
	theme   Theme

	input         textinput.Model
	path          textinput.Model
	choosingImage bool

	list      MessageList
	robot     robot.Animator
	showRobot bool

	width  int
	height int
	state  conversation.State
}

// NewModel creates the chat screen for ctrl. Notices raised through notices
// are shown in a dismissible banner.
func NewModel(ctx context.Context, ctrl *conversation.Controller, notices *NoticeBoard, cfg Config, logger *zap.Logger) Model {
	theme := DetectTheme()
	if cfg.Theme != nil {
		theme = *cfg.Theme
	}

	input := textinput.New()
	input.Placeholder = inputPlaceholder
	input.Prompt = "› "
	input.PromptStyle = theme.Prompt
	input.Focus()

	path := textinput.New()
	path.Placeholder = pathPlaceholder
	path.Prompt = "Image path: "
	path.PromptStyle = theme.Prompt

	m := Model{
		ctx:       ctx,
		ctrl:      ctrl,
		notices:   notices,
		logger:    logger,
		keys:      DefaultKeyMap(),
		theme:     theme,
		input:     input,
		path:      path,
		list:      NewMessageList(theme),
		robot:     robot.NewAnimator(32, 16, robot.WithFPS(cfg.RobotFPS)),
		showRobot: cfg.ShowRobot,
		width:     80,
		height:    24,
	}
	if m.showRobot {
		m.robot, _ = m.robot.Start()
	}
	m.sync()

	return m
}

// Init starts the input cursor, the change listeners and the robot.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.waitForChange(),
		m.waitForNotice(),
	}
	if m.showRobot {
		cmds = append(cmds, m.robot.Init())
	}
	return tea.Batch(cmds...)
}

// Update handles input and asynchronous results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case changedMsg:
		cmd := m.sync()
		return m, tea.Batch(cmd, m.waitForChange())

	case noticeMsg:
		m.layout()
		return m, m.waitForNotice()

	case imageLoadedMsg:
		if msg.err != nil && !errors.Is(msg.err, conversation.ErrImageDiscarded) {
			m.notices.Notify(fmt.Sprintf("Could not load image: %v", msg.err))
		}
		return m, nil

	case replyMsg:
		m.logger.Debug("reply shown", zap.String("id", msg.message.ID))
		cmd := m.sync()
		return m, cmd

	case robot.FrameMsg:
		var cmd tea.Cmd
		m.robot, cmd = m.robot.Update(msg)
		return m, cmd

	case spinner.TickMsg, tea.MouseMsg:
		cmd := m.list.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.choosingImage {
		return m.handlePathKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Dismiss):
		m.notices.Dismiss()
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.ToggleRobot):
		return m.toggleRobot()
	case key.Matches(msg, m.keys.ScrollUp):
		m.list.ScrollUp()
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.list.ScrollDown()
		return m, nil
	}

	// Input affordances are disabled while a reply is pending.
	if m.ctrl.Pending() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		reply, ok := m.ctrl.Submit(m.ctx)
		if !ok {
			return m, nil
		}
		m.input.Reset()
		cmd := m.sync()
		return m, tea.Batch(cmd, m.awaitReply(reply))

	case key.Matches(msg, m.keys.AttachImage):
		m.choosingImage = true
		m.path.Reset()
		m.input.Blur()
		cmd := m.path.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.RemoveImage):
		m.ctrl.RemoveImage()
		cmd := m.sync()
		return m, cmd

	case key.Matches(msg, m.keys.Record):
		m.ctrl.ToggleRecording(m.ctx)
		cmd := m.sync()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != m.state.Text {
		m.ctrl.UpdateText(value)
		m.state.Text = value
	}
	return m, cmd
}

func (m Model) handlePathKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.choosingImage = false
		m.path.Blur()
		cmd := m.input.Focus()
		return m, cmd

	case tea.KeyEnter:
		m.choosingImage = false
		m.path.Blur()
		path := expandHome(strings.TrimSpace(m.path.Value()))
		focus := m.input.Focus()
		return m, tea.Batch(focus, m.awaitImage(m.ctrl.SelectImage(path)))
	}

	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m Model) toggleRobot() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.showRobot {
		m.robot = m.robot.Stop()
	} else {
		m.robot, cmd = m.robot.Start()
	}
	m.showRobot = !m.showRobot
	m.layout()
	return m, cmd
}

// sync copies the controller state into the model.
func (m *Model) sync() tea.Cmd {
	m.state = m.ctrl.Snapshot()
	if m.state.Text != m.input.Value() {
		m.input.SetValue(m.state.Text)
		m.input.CursorEnd()
	}
	m.layout()
	return m.list.Sync(m.state.Messages, m.state.Version, m.state.Pending)
}

// layout sizes the message list and robot panel to what is left after the
// header and footer.
func (m *Model) layout() {
	bodyHeight := max(m.height-headerHeight-m.footerHeight(), 3)

	listWidth := m.width
	if m.showRobot {
		robotWidth := m.robotWidth()
		listWidth = max(m.width-robotWidth-1, 20)
		m.robot = m.robot.Resize(robotWidth, bodyHeight)
	}

	m.input.Width = max(m.width-4, 10)
	m.path.Width = max(m.width-16, 10)
	m.list.SetSize(listWidth, bodyHeight)
}

func (m Model) robotWidth() int {
	return min(max(m.width/3, 16), 44)
}

func (m Model) footerHeight() int {
	h := 3 // status, input, help
	if m.state.Image != nil {
		h++
	}
	if m.notices.Current() != "" {
		h++
	}
	return h
}

func (m Model) waitForChange() tea.Cmd {
	ctx, changes := m.ctx, m.ctrl.Changes()
	return func() tea.Msg {
		select {
		case <-changes:
			return changedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) waitForNotice() tea.Cmd {
	ctx, changes := m.ctx, m.notices.Changes()
	return func() tea.Msg {
		select {
		case <-changes:
			return noticeMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) awaitImage(f *conversation.Future[*conversation.Image]) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		img, err := f.Await(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return imageLoadedMsg{image: img, err: err}
	}
}

func (m Model) awaitReply(f *conversation.Future[conversation.Message]) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		msg, err := f.Await(ctx)
		if err != nil {
			return nil
		}
		return replyMsg{message: msg}
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
