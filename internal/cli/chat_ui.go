package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/raphaelgruber/zizi-chat/internal/conversation"
	"github.com/raphaelgruber/zizi-chat/internal/models"
)

// focusArea says which part of the screen receives keys.
type focusArea int

const (
	focusInput focusArea = iota
	focusThread
)

// outcomeMsg carries a resolved request back to the update loop.
type outcomeMsg conversation.Outcome

// chatModel is the bubbletea model for the chat screen.
type chatModel struct {
	conv     *conversation.Conversation
	snap     conversation.Snapshot
	input    textinput.Model
	spinner  spinner.Model
	keys     keyMap
	theme    Theme
	botName  string
	timeout  time.Duration
	focus    focusArea
	selected int
	width    int
	height   int
	spinning bool
}

// newChatModel creates a chat model bound to conv.
func newChatModel(conv *conversation.Conversation, botName string, timeout time.Duration) chatModel {
	input := textinput.New()
	input.Placeholder = "Type your message..."
	input.Prompt = "› "
	input.CharLimit = 2000
	input.Focus()

	return chatModel{
		conv:     conv,
		snap:     conv.Snapshot(),
		input:    input,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		keys:     defaultKeyMap(),
		theme:    defaultTheme,
		botName:  botName,
		timeout:  timeout,
		selected: conversation.NoIndex,
		width:    80,
		height:   24,
	}
}

// Init implements tea.Model. The input is focused at construction.
func (m chatModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and returns the updated model.
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.conv.Close()
			return m, tea.Quit
		}
		if m.focus == focusThread {
			return m.updateThread(msg)
		}
		return m.updateInput(msg)

	case outcomeMsg:
		m.conv.Resolve(conversation.Outcome(msg))
		m.snap = m.conv.Snapshot()
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) updateInput(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Send):
		req := m.conv.Submit(m.input.Value())
		if req == nil {
			return m, nil
		}
		m.input.Reset()
		m.snap = m.conv.Snapshot()
		cmd := tea.Batch(m.send(req), m.startSpinner())
		return m, cmd

	case key.Matches(msg, m.keys.Focus):
		bots := m.snap.BotIndices()
		if len(bots) == 0 {
			return m, nil
		}
		m.focus = focusThread
		m.selected = bots[len(bots)-1]
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) updateThread(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.focus = focusInput
		m.selected = conversation.NoIndex
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Up):
		m.selected = m.step(-1)

	case key.Matches(msg, m.keys.Down):
		m.selected = m.step(1)

	case key.Matches(msg, m.keys.ThumbsUp):
		return m, m.send(m.conv.Feedback(m.selected, models.ThumbsUp))

	case key.Matches(msg, m.keys.ThumbsDown):
		return m, m.send(m.conv.Feedback(m.selected, models.ThumbsDown))

	case key.Matches(msg, m.keys.Regenerate):
		req := m.conv.Regenerate(m.selected)
		if req == nil {
			return m, nil
		}
		m.snap = m.conv.Snapshot()
		cmd := tea.Batch(m.send(req), m.startSpinner())
		return m, cmd
	}
	return m, nil
}

// step moves the selection by delta bot messages, clamped to the ends.
func (m chatModel) step(delta int) int {
	bots := m.snap.BotIndices()
	if len(bots) == 0 {
		return conversation.NoIndex
	}
	pos := len(bots) - 1
	for i, idx := range bots {
		if idx == m.selected {
			pos = i
			break
		}
	}
	pos += delta
	if pos < 0 {
		pos = 0
	}
	if pos >= len(bots) {
		pos = len(bots) - 1
	}
	return bots[pos]
}

// send runs the request off the update loop. A nil request is a no-op.
func (m chatModel) send(req *conversation.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return outcomeMsg(req.Do(ctx))
	}
}

// startSpinner kicks off the spinner unless it is already ticking.
func (m *chatModel) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m chatModel) busy() bool {
	return m.snap.Loading || m.snap.Regenerating != conversation.NoIndex
}

// View renders the chat screen.
func (m chatModel) View() tea.View {
	return tea.NewView(m.render())
}

// render builds the display string.
func (m chatModel) render() string {
	title := m.theme.titleStyle().Render(m.botName)

	sendHint := "enter ↵ Send"
	if m.snap.Loading {
		sendHint = m.spinner.View() + " Sending..."
	}
	inputLine := fmt.Sprintf("%s  %s", m.input.View(), m.theme.hintStyle().Render(sendHint))

	help := renderHelp(m.keys.inputHelp(), m.theme)
	if m.focus == focusThread {
		help = renderHelp(m.keys.threadHelp(), m.theme)
	}

	thread := renderThread(m.snap, threadView{
		theme:    m.theme,
		botName:  m.botName,
		width:    m.width,
		selected: m.selected,
	})

	// title, blank, thread, blank, input, help
	threadHeight := m.height - 5
	if threadHeight < 3 {
		threadHeight = 3
	}

	return strings.Join([]string{
		title,
		"",
		tailLines(thread, threadHeight),
		"",
		inputLine,
		help,
	}, "\n")
}

// RunChatUI runs the interactive chat screen until the user quits.
func RunChatUI(conv *conversation.Conversation, botName string, timeout time.Duration) error {
	p := tea.NewProgram(newChatModel(conv, botName, timeout))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}
