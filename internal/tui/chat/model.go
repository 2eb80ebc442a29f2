// Package chat implements the interactive chat TUI: a transcript viewport
// over a textarea, fed by gateway chat and agent stream events.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clawlink/clawlink/internal/gateway"
	"github.com/clawlink/clawlink/internal/protocol"
	"github.com/clawlink/clawlink/internal/tui"
)

// line is one rendered transcript entry.
type line struct {
	role string // "you", "assistant", "system"
	text string
}

// Model is the root chat TUI model.
type Model struct {
	client *gateway.Client

	vp    viewport.Model
	input textarea.Model

	lines     []line
	streaming string // partial assistant text for the in-flight run
	runID     string // in-flight run, empty when idle
	state     gateway.ConnectionState

	width    int
	height   int
	ready    bool
	quitting bool
}

// ChatEventMsg wraps a chat lifecycle event from the gateway.
type ChatEventMsg struct {
	Event protocol.ChatEventPayload
}

// AgentEventMsg wraps an agent stream event from the gateway.
type AgentEventMsg struct {
	Event protocol.AgentEventPayload
}

// StateMsg carries a connection state snapshot.
type StateMsg struct {
	State gateway.ConnectionState
}

// sendResultMsg is the outcome of a chat.send RPC.
type sendResultMsg struct {
	runID string
	err   error
}

// historyMsg carries the initial transcript fetch.
type historyMsg struct {
	messages []protocol.ChatMessage
	err      error
}

// NewModel creates a chat model bound to a connected gateway client.
func NewModel(client *gateway.Client) Model {
	input := textarea.New()
	input.Placeholder = "Type a message..."
	input.Prompt = "> "
	input.SetHeight(2)
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.Focus()

	return Model{
		client: client,
		input:  input,
		state:  client.State(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.loadHistory())
}

// loadHistory fetches the recent transcript once at startup.
func (m Model) loadHistory() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		msgs, err := client.ChatHistory(ctx, 50)
		return historyMsg{messages: msgs, err: err}
	}
}

// send issues the chat.send RPC off the Update goroutine.
func (m Model) send(text string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 40*time.Second)
		defer cancel()
		runID, err := client.SendChat(ctx, text)
		return sendResultMsg{runID: runID, err: err}
	}
}

// abort cancels the in-flight run.
func (m Model) abort() tea.Cmd {
	client := m.client
	runID := m.runID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := client.AbortChat(ctx, runID); err != nil {
			return sendResultMsg{err: err}
		}
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - m.input.Height() - 4
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.vp = viewport.New(m.width, vpHeight)
			m.ready = true
		} else {
			m.vp.Width = m.width
			m.vp.Height = vpHeight
		}
		m.input.SetWidth(m.width - 4)
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c"))):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
			if m.runID != "" {
				return m, m.abort()
			}
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.runID != "" {
				return m, nil
			}
			m.input.Reset()
			m.lines = append(m.lines, line{role: "you", text: text})
			m.runID = "pending" // block double-send until the ack arrives
			m.refreshViewport()
			return m, m.send(text)
		}

	case historyMsg:
		if msg.err == nil {
			for _, hm := range msg.messages {
				role := "assistant"
				if hm.Role == "user" {
					role = "you"
				}
				m.lines = append(m.lines, line{role: role, text: hm.Content})
			}
			m.refreshViewport()
		}
		return m, nil

	case sendResultMsg:
		if msg.err != nil {
			m.runID = ""
			m.streaming = ""
			m.lines = append(m.lines, line{role: "system", text: "send failed: " + msg.err.Error()})
			m.refreshViewport()
			return m, nil
		}
		if msg.runID != "" {
			m.runID = msg.runID
		}
		return m, nil

	case AgentEventMsg:
		if msg.Event.Stream == "assistant" && msg.Event.Data.Text != "" {
			m.streaming = msg.Event.Data.Text
			m.refreshViewport()
		}
		return m, nil

	case ChatEventMsg:
		return m.handleChatEvent(msg.Event)

	case StateMsg:
		m.state = msg.State
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleChatEvent folds a lifecycle event into the transcript.
func (m Model) handleChatEvent(evt protocol.ChatEventPayload) (tea.Model, tea.Cmd) {
	switch evt.State {
	case "final":
		text := m.streaming
		if text == "" {
			text = "(empty reply)"
		}
		m.lines = append(m.lines, line{role: "assistant", text: text})
	case "aborted":
		m.lines = append(m.lines, line{role: "system", text: "run aborted"})
	case "error":
		msg := evt.ErrorMessage
		if msg == "" {
			msg = "unknown error"
		}
		m.lines = append(m.lines, line{role: "system", text: "run failed: " + msg})
	default:
		// "delta" and unknown states leave the transcript alone; the
		// streaming text already tracks deltas via agent events.
		return m, nil
	}
	m.streaming = ""
	m.runID = ""
	m.refreshViewport()
	return m, nil
}

// refreshViewport re-renders the transcript and scrolls to the bottom.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	var b strings.Builder
	for _, l := range m.lines {
		b.WriteString(m.renderLine(l))
		b.WriteString("\n")
	}
	if m.streaming != "" {
		b.WriteString(tui.Subtitle.Render("assistant ") + tui.Dimmed.Render("(streaming)"))
		b.WriteString("\n")
		b.WriteString(m.streaming)
		b.WriteString("\n")
	}
	m.vp.SetContent(lipgloss.NewStyle().Width(m.vp.Width).Render(b.String()))
	m.vp.GotoBottom()
}

func (m *Model) renderLine(l line) string {
	switch l.role {
	case "you":
		return tui.Title.Render("you") + "\n" + l.text + "\n"
	case "assistant":
		return tui.Subtitle.Render("assistant") + "\n" + l.text + "\n"
	default:
		return tui.Dimmed.Render(l.text) + "\n"
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	status := fmt.Sprintf("%s %s", tui.StateDot(m.state), tui.StateText(m.state))
	if m.client.PairingRequired() {
		status += "  " + tui.WarningStyle.Render("pairing required — approve this device on the gateway")
	}
	if m.runID != "" {
		status += "  " + tui.Dimmed.Render("thinking... (esc to abort)")
	}

	helpBar := tui.Help.Render("enter send · esc abort/quit · ctrl+c quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		status,
		m.vp.View(),
		m.input.View(),
		helpBar,
	)
}
