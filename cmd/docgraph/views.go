package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-docgraph/pkg/documents"
	"github.com/dd0wney/cluso-docgraph/pkg/visualization"
)

func (m model) View() string {
	var b strings.Builder

	title := titleStyle.Render("◉ Document Graph")
	if m.pending > 0 {
		title += " " + m.spinner.View()
	}
	b.WriteString(title + "\n")
	b.WriteString(m.renderTabs() + "\n\n")

	switch m.currentView {
	case dashboardView:
		b.WriteString(m.renderDashboard())
	case documentsView:
		b.WriteString(m.renderDocuments())
	case detailView:
		b.WriteString(m.renderDetail())
	case queryView:
		b.WriteString(m.renderQuery())
	case uploadView:
		b.WriteString(m.renderUpload())
	case logsView:
		b.WriteString(m.renderLogs())
	case recalculateView:
		b.WriteString(m.renderRecalculate())
	case graphView:
		// The canvas sits at a fixed row for mouse mapping, so status and
		// errors share one line above it
		b.WriteString(m.renderGraph())
		return b.String()
	}

	b.WriteString("\n")
	if line := m.statusLine(); line != "" {
		b.WriteString(contentStyle.Render(line) + "\n")
	}
	b.WriteString(helpStyle.Render(m.viewHelp()))
	return b.String()
}

func (m model) renderTabs() string {
	current := m.tab()
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if view(i) == current {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = inactiveTabStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m model) statusLine() string {
	if m.err != nil {
		return errorStyle.Render("✗ " + m.err.Error())
	}
	if m.message != "" {
		return successStyle.Render("✓ " + m.message)
	}
	return ""
}

func (m model) viewHelp() string {
	var hint string
	switch m.currentView {
	case dashboardView:
		hint = "ctrl+r refresh"
	case documentsView:
		hint = "↑/↓ select • enter details • ctrl+r refresh"
	case detailView:
		hint = "esc back"
	case queryView:
		if m.queryFocus == queryResults {
			hint = "enter details • esc edit filters • ctrl+g graph results"
		} else {
			hint = "enter search • ctrl+n/ctrl+p field • esc results • ctrl+g graph results"
		}
	case uploadView:
		hint = "ctrl+s upload • ctrl+n/ctrl+p field"
	case logsView:
		hint = "↑/↓ scroll • ctrl+r refresh"
	case recalculateView:
		hint = "enter start"
	case graphView:
		hint = "drag nodes with the mouse • r reheat • a all documents • esc dashboard"
	}
	return hint + "\n" + m.help.View(keys)
}

func (m model) renderDashboard() string {
	if m.stats == nil {
		return contentStyle.Render("Loading...")
	}
	boxes := lipgloss.JoinHorizontal(lipgloss.Top,
		statsBoxStyle.Render(fmt.Sprintf("Documents\n\n%d", m.stats.TotalDocuments)),
		statsBoxStyle.Render(fmt.Sprintf("Categories\n\n%d", len(m.stats.Categories))),
		statsBoxStyle.Render(fmt.Sprintf("Tags\n\n%d", len(m.stats.Tags))),
		statsBoxStyle.Render(fmt.Sprintf("Uptime\n\n%s", time.Since(m.started).Truncate(time.Second))),
	)

	var recent strings.Builder
	recent.WriteString(labelStyle.Render("Recent documents") + "\n")
	if len(m.recent) == 0 {
		recent.WriteString("  none\n")
	}
	for _, d := range m.recent {
		fmt.Fprintf(&recent, "  %-8s %-10s %s\n", d.ID, d.Category, oneLine(d.Text, 50))
	}

	recent.WriteString("\n" + labelStyle.Render("Recent activity") + "\n")
	events := m.recorder.Recent(m.ui.RecentCount)
	if len(events) == 0 {
		recent.WriteString("  none\n")
	}
	for _, e := range events {
		recent.WriteString("  " + e.String() + "\n")
	}

	return contentStyle.Render(boxes + "\n\n" + recent.String())
}

func (m model) renderDocuments() string {
	return contentStyle.Render(m.docTable.View())
}

func (m model) renderDetail() string {
	if m.detail == nil {
		return contentStyle.Render("Loading...")
	}
	return contentStyle.Render(documentCard(m.detail, max(m.width-8, 40), true))
}

// documentCard renders a document; full adds the complete and original text
func documentCard(d *documents.Document, width int, full bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(d.ID) + "  " + labelStyle.Render(d.CreatedAt.Local().Format("2006-01-02 15:04")) + "\n")
	b.WriteString(labelStyle.Render("Category ") + d.Category + "\n")
	tags := make([]string, len(d.Tags))
	for i, t := range d.Tags {
		tags[i] = tagStyle.Render(t)
	}
	if len(tags) == 0 {
		tags = []string{labelStyle.Render("none")}
	}
	b.WriteString(labelStyle.Render("Tags     ") + strings.Join(tags, " ") + "\n")

	text := lipgloss.NewStyle().Width(width - 4)
	if !full {
		b.WriteString(text.Render(oneLine(d.Text, 2*width)))
		return cardStyle.Render(b.String())
	}
	b.WriteString("\n" + text.Render(d.Text))
	if d.OriginalText != "" && d.OriginalText != d.Text {
		b.WriteString("\n\n" + labelStyle.Render("Original text") + "\n" + text.Render(d.OriginalText))
	}
	return cardStyle.Render(b.String())
}

func (m model) renderQuery() string {
	labels := []string{"Text     ", "Category ", "Tags     "}
	var b strings.Builder
	for i, in := range m.queryInputs {
		b.WriteString(labelStyle.Render(labels[i]) + in.View() + "\n")
	}
	b.WriteString("\n")
	if m.lastQuery == nil {
		b.WriteString(labelStyle.Render("Enter runs the query; empty fields match everything."))
	} else {
		b.WriteString(m.queryTable.View())
	}
	return contentStyle.Render(b.String())
}

func (m model) renderUpload() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Text") + "\n" + m.uploadText.View() + "\n\n")
	b.WriteString(labelStyle.Render("Category ") + m.uploadInputs[0].View() + "\n")
	b.WriteString(labelStyle.Render("Tags     ") + m.uploadInputs[1].View())
	return contentStyle.Render(b.String())
}

func (m model) renderLogs() string {
	return contentStyle.Render(m.logTable.View())
}

func (m model) renderRecalculate() string {
	var b strings.Builder
	b.WriteString("Recalculate document relationships across the whole collection.\n\n")
	switch {
	case m.recalcRunning:
		b.WriteString(m.spinner.View() + " Recalculating...")
	case m.recalcResult != nil:
		b.WriteString(successStyle.Render(m.recalcResult.Message) + "\n")
		b.WriteString(labelStyle.Render("run " + m.recalcResult.RunID))
	default:
		b.WriteString("Press enter to start.")
	}
	return contentStyle.Render(b.String())
}

func (m model) renderGraph() string {
	p := m.graph
	width := max(m.width, 20)
	var status string
	switch {
	case p.tooSmall():
		return errorStyle.Render(oneLine(p.sizeHint(m.width, m.height), width)) +
			"\n" + helpStyle.Render(m.viewHelp())
	case p.err != nil:
		status = errorStyle.Render(oneLine("✗ "+p.err.Error(), width))
	case p.loading && p.sim == nil:
		status = "Loading " + p.title() + "..."
	case p.sim == nil:
		status = "No graph"
	default:
		g := p.sim.Graph()
		status = fmt.Sprintf("%s • %d nodes %d edges • %s α=%.3f tick %d",
			p.title(), g.Len(), len(g.Edges()), p.sim.State(), p.sim.Alpha(), p.sim.Ticks())
		if p.dragging != "" {
			status += " • dragging " + p.dragging
		}
		status = oneLine(status, width)
	}

	var b strings.Builder
	b.WriteString(status + "\n")
	b.WriteString(p.canvas.String() + "\n")
	switch {
	case p.hover != nil:
		b.WriteString(documentCard(p.hover, min(max(m.width-2, 40), 80), false))
	case p.sim != nil:
		b.WriteString(legend())
	}
	b.WriteString("\n" + helpStyle.Render(m.viewHelp()))
	return b.String()
}

func legend() string {
	kinds := []visualization.NodeKind{visualization.KindCategory, visualization.KindDocument, visualization.KindTag}
	glyphs := []string{"◉", "●", "•"}
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = glyphs[i] + " " + k.String()
	}
	return labelStyle.Render(strings.Join(parts, "   ") + "   ◆ pinned   hover a document for details")
}
