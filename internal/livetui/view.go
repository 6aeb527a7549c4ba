package livetui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jstall/jstall/utils"
)

func (m *Model) View() string {
	if m.quitting && m.err == nil {
		return ""
	}

	header := headerStyle.Render(m.title())
	uptime := mutedStyle.Render(fmt.Sprintf("uptime %s · captures %d", utils.FormatDuration(m.elapsed()), m.ticks))

	var body []string
	body = append(body, lipgloss.JoinHorizontal(lipgloss.Left, header, "  ", uptime))

	if m.err != nil {
		body = append(body, criticalStyle.Render(fmt.Sprintf("capture error: %v", m.err)))
		return boxStyle.Render(strings.Join(body, "\n"))
	}

	if m.verdict == nil {
		body = append(body, mutedStyle.Render("waiting for first capture..."))
		return boxStyle.Render(strings.Join(body, "\n"))
	}

	vStyle := verdictStyle(string(m.verdict.Verdict))
	body = append(body, vStyle.Render(fmt.Sprintf("%s (%s)", m.verdict.Verdict, m.verdict.Confidence)))

	width := m.chartWidth()
	if len(m.threadCounts) > 1 {
		body = append(body, infoStyle.Render("thread count:")+" "+sparkline(m.threadCounts, width))
		if chart := threadCountChart(m.threadCounts, width, 6); chart != "" {
			body = append(body, chart)
		}
		body = append(body, mutedStyle.Render(fmt.Sprintf("%d -> %d threads", int(m.threadCounts[0]), int(m.threadCounts[len(m.threadCounts)-1]))))
	}

	if len(m.verdict.Reasons) > 0 {
		body = append(body, infoStyle.Render("reasons:"))
		for _, r := range m.verdict.Reasons {
			body = append(body, mutedStyle.Render("  • "+r))
		}
	}

	body = append(body, mutedStyle.Render(m.help.View(keys)))

	return boxStyle.Render(strings.Join(body, "\n"))
}

func (m *Model) chartWidth() int {
	w := m.width - 20
	if w < 20 {
		w = 40
	}
	return w
}

func (m *Model) elapsed() time.Duration {
	return time.Since(m.startTime)
}
