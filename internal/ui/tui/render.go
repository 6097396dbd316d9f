package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/cluster"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/conversation"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/provider"
)

// RenderMessage renders one conversation message on one or more lines.
func RenderMessage(m conversation.Message) string {
	if m.Role == conversation.RoleUser {
		return userStyle.Render("you") + "  " + m.Text
	}

	var body string
	switch m.Kind {
	case conversation.KindProposal:
		body = proposalStyle.Render(m.Text)
	case conversation.KindPlaceholder:
		body = warningStyle.Render(m.Text)
	case conversation.KindNotice:
		body = dimStyle.Render(m.Text)
	case conversation.KindOutcome:
		if m.Result != nil && m.Result.Success {
			body = readyStyle.Render(m.Text)
		} else {
			body = failedStyle.Render(m.Text)
		}
	default:
		body = assistantStyle.Render(m.Text)
	}
	return dimStyle.Render("ai ") + "  " + indentContinuation(body, 5)
}

func indentContinuation(s string, n int) string {
	pad := strings.Repeat(" ", n)
	return strings.ReplaceAll(s, "\n", "\n"+pad)
}

// RenderConversation renders every message, one block per message.
func RenderConversation(msgs []conversation.Message) string {
	blocks := make([]string, len(msgs))
	for i, m := range msgs {
		blocks[i] = RenderMessage(m)
	}
	return strings.Join(blocks, "\n")
}

func statusMark(s cluster.Status) string {
	switch s {
	case cluster.StatusActive:
		return readyStyle.Render(runningMark + " active")
	case cluster.StatusStopped:
		return failedStyle.Render(stoppedMark + " stopped")
	default:
		return warningStyle.Render(mixedMark + " mixed")
	}
}

func instanceMark(s provider.Status) string {
	switch s {
	case provider.StatusRunning:
		return readyStyle.Render(runningMark + " running")
	case provider.StatusStopped:
		return failedStyle.Render(stoppedMark + " stopped")
	default:
		return dimStyle.Render(unknownMark + " unknown")
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		})
}

// RenderClusters renders clusters as a table. The selected cluster, if any,
// is marked with an asterisk.
func RenderClusters(clusters []cluster.Cluster, selected *cluster.Key) string {
	if len(clusters) == 0 {
		return subtitleStyle.Render("No clusters found.")
	}
	t := newTable("", "CLUSTER", "PROVIDER", "NODES", "CPU", "RAM (GB)", "STATUS")
	for _, c := range clusters {
		marker := ""
		if selected != nil && *selected == c.Key() {
			marker = "*"
		}
		t.Row(
			marker,
			c.BaseName,
			string(c.Provider),
			strconv.Itoa(len(c.Instances)),
			strconv.Itoa(c.CPUTotal),
			formatGB(c.RAMTotal),
			statusMark(c.ObservedStatus()),
		)
	}
	return t.String()
}

// RenderClusterDetail renders a cluster's header and its members.
func RenderClusterDetail(c cluster.Cluster) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s)", c.BaseName, c.Provider)))
	b.WriteString(" ")
	b.WriteString(statusMark(c.ObservedStatus()))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("%d nodes, %d vCPU, %s GB RAM", len(c.Instances), c.CPUTotal, formatGB(c.RAMTotal))))
	b.WriteString("\n")
	b.WriteString(RenderInstances(c.Instances))
	return b.String()
}

// RenderInstances renders instances as a table.
func RenderInstances(instances []provider.Instance) string {
	if len(instances) == 0 {
		return subtitleStyle.Render("No instances found.")
	}
	t := newTable("NAME", "ID", "PROVIDER", "STATUS", "LOCATION", "CPU", "RAM (GB)", "DISK (GB)", "IP", "TYPE")
	for _, i := range instances {
		disk := ""
		if i.DiskGB > 0 {
			disk = strconv.Itoa(i.DiskGB)
		}
		t.Row(
			i.Name,
			i.ID,
			string(i.Provider),
			instanceMark(i.Status),
			i.Location,
			strconv.Itoa(i.CPU),
			formatGB(i.RAMGB),
			disk,
			strings.Join(i.PublicIPs, ","),
			i.MachineType,
		)
	}
	return t.String()
}

// RenderInstanceTypes renders a catalog as a table.
func RenderInstanceTypes(types []provider.InstanceType) string {
	if len(types) == 0 {
		return subtitleStyle.Render("No instance types match.")
	}
	t := newTable("TYPE", "PROVIDER", "CPU", "RAM (GB)", "LOCATION")
	for _, it := range types {
		t.Row(it.Name, string(it.Provider), strconv.Itoa(it.CPU), formatGB(it.RAMGB), it.Location)
	}
	return t.String()
}

// RenderCredentials renders connection details for an instance.
func RenderCredentials(c provider.Credentials) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Credentials"))
	b.WriteString("\n")
	row := func(k, v string) {
		if v == "" {
			return
		}
		fmt.Fprintf(&b, "  %-10s %s\n", k+":", v)
	}
	row("Provider", string(c.Provider))
	row("Host", c.IP)
	row("Username", c.Username)
	row("Password", c.Password)
	row("Location", c.Location)
	row("Node", c.Node)
	if c.VMID > 0 {
		row("VMID", strconv.Itoa(c.VMID))
	}
	if c.IP != "" {
		cmd := c.SSHCommand()
		b.WriteString("\n  ")
		b.WriteString(dimStyle.Render(cmd))
		b.WriteString("\n")
	}
	return b.String()
}

func formatGB(v float64) string {
	if v <= 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
