package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ProgramNavigator forwards navigation requests to a running program.
// Requests made before Attach are dropped.
type ProgramNavigator struct {
	mu sync.Mutex
	p  *tea.Program
}

// Attach binds the navigator to p.
func (n *ProgramNavigator) Attach(p *tea.Program) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.p = p
}

// Navigate implements executor.Navigator.
func (n *ProgramNavigator) Navigate(view string) {
	n.mu.Lock()
	p := n.p
	n.mu.Unlock()
	if p != nil {
		p.Send(NavigateMsg{View: view})
	}
}

// RunChat runs the full-screen chat console until the operator quits.
func RunChat(ctx context.Context, session Session, clusters ClusterSource, nav *ProgramNavigator) error {
	m := NewModel(ctx, session, clusters)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if nav != nil {
		nav.Attach(p)
		defer nav.Attach(nil)
	}

	finalModel, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}

	if fm, ok := finalModel.(Model); ok && fm.Err != nil {
		return fm.Err
	}
	return nil
}
