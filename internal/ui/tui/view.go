package tui

import (
	"strings"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/cluster"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/conversation"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("CloudWeave"))
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("operator console"))
	b.WriteString("\n\n")

	switch m.CurrentView {
	case ViewClusters:
		renderClusterView(&b, m)
	default:
		renderChatView(&b, m)
	}

	if m.Err != nil {
		b.WriteString("\n")
		b.WriteString(failedStyle.Render("Error: " + m.Err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(footerStyle.Render(footerHelp(m)))
	b.WriteString("\n")
	return b.String()
}

func renderChatView(b *strings.Builder, m Model) {
	msgs := visibleMessages(m.Messages, m.Height)
	b.WriteString(RenderConversation(msgs))
	b.WriteString("\n")

	if m.session.Log().Loading() || m.session.Busy() {
		b.WriteString(m.spinner.View())
		b.WriteString(dimStyle.Render(" working..."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
}

// visibleMessages keeps the tail of the log that fits the window. A zero
// height shows everything.
func visibleMessages(msgs []conversation.Message, height int) []conversation.Message {
	if height <= 0 {
		return msgs
	}
	budget := height - 8
	if budget < 1 {
		budget = 1
	}
	start := len(msgs)
	used := 0
	for start > 0 {
		lines := strings.Count(msgs[start-1].Text, "\n") + 1
		if used+lines > budget && start < len(msgs) {
			break
		}
		used += lines
		start--
	}
	return msgs[start:]
}

func renderClusterView(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("Clusters"))
	b.WriteString("\n")

	var (
		c        cluster.Cluster
		selected bool
	)
	if m.clusters != nil {
		c, selected = m.clusters.Selected()
	}
	if selected {
		key := c.Key()
		b.WriteString(RenderClusters(m.Clusters, &key))
		b.WriteString("\n\n")
		b.WriteString(RenderClusterDetail(c))
	} else {
		b.WriteString(RenderClusters(m.Clusters, nil))
	}
	b.WriteString("\n")

	if !m.RefreshedAt.IsZero() {
		b.WriteString(dimStyle.Render("Last refresh " + m.RefreshedAt.Format("15:04:05")))
		b.WriteString("\n")
	}
}

func footerHelp(m Model) string {
	if m.CurrentView == ViewClusters {
		return "r refresh | tab chat | q quit"
	}
	help := "enter send | tab clusters | esc quit"
	if len(m.session.Pending()) > 0 {
		help = "ctrl+y confirm | ctrl+n cancel | " + help
	}
	return help
}
