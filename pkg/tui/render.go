package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/the-snesler/spacebot-sub001/pkg/livestate"
	"github.com/the-snesler/spacebot-sub001/pkg/stream"
)

// connectionBanner formats the top-of-screen connection line. An
// initial connecting state is suppressed once cached data exists, so a
// warm dashboard never flashes a scary banner during startup races.
func connectionBanner(state stream.ConnectionState, hasData bool) (string, tcell.Style) {
	switch state {
	case stream.StateConnected:
		return "● live", StyleConnected
	case stream.StateReconnecting:
		return "◌ reconnecting...", StyleReconnecting
	case stream.StateDisconnected:
		return "○ disconnected", StyleDisconnected
	default:
		if hasData {
			return "", StyleDim
		}
		return "◌ connecting...", StyleReconnecting
	}
}

// channelLine formats one channel list entry with activity badges.
func channelLine(ch livestate.ChannelState) string {
	var badges []string
	if ch.Typing {
		badges = append(badges, "typing")
	}
	if n := len(ch.Workers); n > 0 {
		badges = append(badges, fmt.Sprintf("%dw", n))
	}
	if n := len(ch.Branches); n > 0 {
		badges = append(badges, fmt.Sprintf("%db", n))
	}
	if len(badges) == 0 {
		return ch.ChannelID
	}
	return fmt.Sprintf("%s [%s]", ch.ChannelID, strings.Join(badges, " "))
}

// sortedChannelIDs gives the channel list a stable order.
func sortedChannelIDs(channels map[string]livestate.ChannelState) []string {
	ids := make([]string, 0, len(channels))
	for id := range channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// timelineLine formats one timeline entry, truncated to width.
func timelineLine(m livestate.TimelineMessage, width int) string {
	sender := m.SenderName
	if sender == "" {
		sender = m.Role
	}
	line := fmt.Sprintf("%s: %s", sender, strings.ReplaceAll(m.Content, "\n", " "))
	return truncate(line, width)
}

// activityLines lists active workers and branches for the side panel.
func activityLines(ch livestate.ChannelState) []string {
	var lines []string
	for _, id := range sortedKeys(ch.Workers) {
		w := ch.Workers[id]
		line := fmt.Sprintf("worker %s: %s (%s)", w.ID, w.Task, w.Status)
		if w.CurrentTool != "" {
			line += " · " + w.CurrentTool
		}
		lines = append(lines, line)
	}
	for _, id := range sortedKeys(ch.Branches) {
		b := ch.Branches[id]
		line := fmt.Sprintf("branch %s: %s", b.ID, b.Description)
		if b.CurrentTool != "" {
			line += " · " + b.CurrentTool
		}
		lines = append(lines, line)
	}
	return lines
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
