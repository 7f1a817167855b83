package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/the-snesler/spacebot-sub001/pkg/api"
	"github.com/the-snesler/spacebot-sub001/pkg/livestate"
)

var (
	statusTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F97316"))

	statusHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FDBA74"))

	statusDim = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	statusPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F97316")).
			Padding(0, 1)
)

// RenderStatus formats a one-shot snapshot of the dashboard state for
// plain terminal output.
func RenderStatus(channels map[string]livestate.ChannelState, agents []api.Agent) string {
	var b strings.Builder
	b.WriteString(statusTitle.Render("spaceboard status"))
	b.WriteString("\n\n")

	if len(agents) > 0 {
		var lines []string
		for _, agent := range agents {
			lines = append(lines, fmt.Sprintf("%s (%s)", agent.Name, agent.Status))
		}
		b.WriteString(renderStatusPanel("agents", lines))
		b.WriteString("\n")
	}

	if len(channels) == 0 {
		b.WriteString(statusDim.Render("no channel activity"))
		b.WriteString("\n")
		return b.String()
	}

	for _, id := range sortedChannelIDs(channels) {
		ch := channels[id]
		lines := activityLines(ch)
		if ch.Typing {
			lines = append([]string{"typing..."}, lines...)
		}
		if len(lines) == 0 {
			lines = []string{statusDim.Render("idle")}
		}
		if n := len(ch.Timeline); n > 0 {
			last := ch.Timeline[n-1]
			lines = append(lines, statusDim.Render(fmt.Sprintf(
				"last: %s", timelineLine(last, 60))))
		}
		b.WriteString(renderStatusPanel(channelLine(ch), lines))
		b.WriteString("\n")
	}
	return b.String()
}

func renderStatusPanel(title string, lines []string) string {
	content := statusHeader.Render(title) + "\n" + strings.Join(lines, "\n")
	return statusPanel.Render(content)
}
