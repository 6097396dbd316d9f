package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/cluster"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/command"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/conversation"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/executor"
)

// View names.
const (
	ViewChat     = "chat"
	ViewClusters = executor.ViewClusters
)

const tickInterval = 250 * time.Millisecond

// Session is the conversation the chat model drives.
type Session interface {
	Send(ctx context.Context, text string) (conversation.Message, error)
	Confirm(ctx context.Context, msgID string) (command.ExecutionResult, error)
	Cancel(msgID string) error
	Pending() []*executor.Proposal
	Log() *conversation.Log
	Busy() bool
}

// ClusterSource supplies the cluster view.
type ClusterSource interface {
	Refresh(ctx context.Context) []cluster.Cluster
	Selected() (cluster.Cluster, bool)
}

// Model is the Bubble Tea model for the chat console.
type Model struct {
	ctx      context.Context
	session  Session
	clusters ClusterSource

	input   textinput.Model
	spinner spinner.Model

	CurrentView string
	Messages    []conversation.Message
	Clusters    []cluster.Cluster
	RefreshedAt time.Time

	Width  int
	Height int
	Err    error
}

// NewModel creates a chat model. clusters may be nil, in which case the
// cluster view stays empty.
func NewModel(ctx context.Context, session Session, clusters ClusterSource) Model {
	in := textinput.New()
	in.Placeholder = "Ask the assistant..."
	in.Prompt = "> "
	in.CharLimit = 2000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = warningStyle

	return Model{
		ctx:         ctx,
		session:     session,
		clusters:    clusters,
		input:       in,
		spinner:     sp,
		CurrentView: ViewChat,
		Messages:    session.Log().Messages(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, tickCmd(), m.refreshCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m Model) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		msg, err := m.session.Send(m.ctx, text)
		return AnswerMsg{Message: msg, Err: err}
	}
}

func (m Model) confirmCmd(msgID string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.session.Confirm(m.ctx, msgID)
		return OutcomeMsg{Result: res, Err: err}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	if m.clusters == nil {
		return nil
	}
	return func() tea.Msg {
		return ClustersMsg{Clusters: m.clusters.Refresh(m.ctx), At: time.Now()}
	}
}

// latestPending returns the most recent proposal awaiting a decision.
func (m Model) latestPending() (*executor.Proposal, bool) {
	pending := m.session.Pending()
	if len(pending) == 0 {
		return nil, false
	}
	return pending[len(pending)-1], true
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.input.Width = max(msg.Width-4, 10)

	case AnswerMsg:
		m.Messages = m.session.Log().Messages()
		if msg.Err != nil {
			m.Err = msg.Err
		}

	case OutcomeMsg:
		m.Messages = m.session.Log().Messages()
		if msg.Err != nil {
			m.Err = msg.Err
		}

	case NavigateMsg:
		m.CurrentView = msg.View
		if msg.View == ViewClusters {
			return m, m.refreshCmd()
		}

	case ClustersMsg:
		m.Clusters = msg.Clusters
		m.RefreshedAt = msg.At

	case TickMsg:
		m.Messages = m.session.Log().Messages()
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.CurrentView == ViewChat {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		if m.CurrentView == ViewChat {
			m.CurrentView = ViewClusters
			return m, m.refreshCmd()
		}
		m.CurrentView = ViewChat
		return m, nil
	}

	if m.CurrentView == ViewClusters {
		switch msg.String() {
		case "r":
			return m, m.refreshCmd()
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "enter":
		text := m.input.Value()
		if strings.TrimSpace(text) == "" || m.session.Busy() {
			return m, nil
		}
		m.input.Reset()
		m.Err = nil
		return m, m.sendCmd(text)
	case "ctrl+y":
		p, ok := m.latestPending()
		if !ok || m.session.Busy() {
			return m, nil
		}
		m.Err = nil
		return m, m.confirmCmd(p.MessageID)
	case "ctrl+n":
		p, ok := m.latestPending()
		if !ok {
			return m, nil
		}
		if err := m.session.Cancel(p.MessageID); err != nil {
			m.Err = err
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
