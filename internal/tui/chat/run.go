package chat

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/clawlink/clawlink/internal/gateway"
)

// Run starts the chat TUI against a client whose supervisor loop is already
// running. It blocks until the user quits; the client keeps its connection.
func Run(client *gateway.Client) error {
	m := NewModel(client)
	p := tea.NewProgram(m, tea.WithAltScreen())

	chatCh := client.SubscribeChat()
	agentCh := client.SubscribeAgent()
	defer client.UnsubscribeChat(chatCh)
	defer client.UnsubscribeAgent(agentCh)

	// Forward gateway events to the TUI. The buses close the channels on
	// client shutdown, which ends the forwarders.
	go func() {
		for evt := range chatCh {
			p.Send(ChatEventMsg{Event: evt})
		}
	}()
	go func() {
		for evt := range agentCh {
			p.Send(AgentEventMsg{Event: evt})
		}
	}()

	// Poll the connection state so the status line tracks reconnects.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p.Send(StateMsg{State: client.State()})
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
