package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/the-snesler/spacebot-sub001/pkg/chat"
	"github.com/the-snesler/spacebot-sub001/pkg/livestate"
	"github.com/the-snesler/spacebot-sub001/pkg/logger"
	"github.com/the-snesler/spacebot-sub001/pkg/stream"
)

const channelPaneWidth = 26

// App is the live dashboard: a read-only projection view plus a chat
// input. It never mutates projection state; every change it shows
// arrives through the projector or the chat session.
type App struct {
	screen    tcell.Screen
	conn      *stream.Connection
	projector *livestate.Projector
	session   *chat.Session

	mu       sync.Mutex
	selected int
	input    []rune
	hasData  bool
}

// NewApp creates the dashboard around an already wired connection,
// projector and chat session.
func NewApp(conn *stream.Connection, projector *livestate.Projector, session *chat.Session) (*App, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	return &App{
		screen:    screen,
		conn:      conn,
		projector: projector,
		session:   session,
	}, nil
}

// Run owns the terminal until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer a.screen.Fini()
	a.screen.SetStyle(StyleDefault)

	a.projector.OnUpdate(a.wake)
	a.session.OnUpdate(a.wake)
	a.conn.OnStateChange(func(stream.ConnectionState) { a.wake() })

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		// Fini unblocks PollEvent.
		a.screen.Fini()
	}()

	a.draw()
	for {
		switch ev := a.screen.PollEvent().(type) {
		case *tcell.EventResize:
			a.screen.Sync()
			a.draw()
		case *tcell.EventInterrupt:
			a.draw()
		case *tcell.EventKey:
			if a.handleKey(ctx, ev) {
				return nil
			}
			a.draw()
		case nil:
			return nil
		}
	}
}

// wake schedules a redraw from any goroutine.
func (a *App) wake() {
	_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// handleKey processes one key event; true means quit.
func (a *App) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return true
	case tcell.KeyTab:
		a.selected++
	case tcell.KeyBacktab:
		a.selected--
	case tcell.KeyEnter:
		text := string(a.input)
		if text != "" && !a.session.IsStreaming() {
			a.input = nil
			go func() {
				if err := a.session.Send(ctx, text); err != nil {
					logger.Error("chat turn failed: %v", err)
				}
			}()
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(a.input) > 0 {
			a.input = a.input[:len(a.input)-1]
		}
	case tcell.KeyRune:
		a.input = append(a.input, ev.Rune())
	}
	return false
}

func (a *App) draw() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.screen.Clear()
	width, height := a.screen.Size()
	if width <= 0 || height < 4 {
		a.screen.Show()
		return
	}

	channels := a.projector.Channels()
	if len(channels) > 0 {
		a.hasData = true
	}
	ids := sortedChannelIDs(channels)
	if len(ids) > 0 {
		a.selected = ((a.selected % len(ids)) + len(ids)) % len(ids)
	} else {
		a.selected = 0
	}

	a.drawBanner(width)
	a.drawChannels(ids, channels, height)
	if len(ids) > 0 {
		a.drawChannel(channels[ids[a.selected]], width, height)
	}
	a.drawChat(width, height)
	a.drawInput(width, height)

	a.screen.Show()
}

func (a *App) drawBanner(width int) {
	banner, style := connectionBanner(a.conn.State(), a.hasData)
	a.drawText(0, 0, width, "spaceboard", StyleDim)
	if banner != "" {
		a.drawText(width-len([]rune(banner))-1, 0, width, banner, style)
	}
}

func (a *App) drawChannels(ids []string, channels map[string]livestate.ChannelState, height int) {
	a.drawText(0, 1, channelPaneWidth, "channels", StyleDim)
	for i, id := range ids {
		row := 2 + i
		if row >= height-2 {
			break
		}
		style := StyleChannel
		if i == a.selected {
			style = StyleSelected
		}
		a.drawText(1, row, channelPaneWidth-1, channelLine(channels[id]), style)
	}
}

// drawChannel renders the selected channel's activity and timeline in
// the upper right pane.
func (a *App) drawChannel(ch livestate.ChannelState, width, height int) {
	x := channelPaneWidth + 1
	paneWidth := width - x
	row := 1

	if ch.Typing {
		a.drawText(x, row, paneWidth, "typing...", StyleTyping)
		row++
	}
	for _, line := range activityLines(ch) {
		if row >= height/2 {
			break
		}
		style := StyleWorker
		if len(line) > 0 && line[0] == 'b' {
			style = StyleBranch
		}
		a.drawText(x, row, paneWidth, truncate(line, paneWidth), style)
		row++
	}

	// Most recent timeline entries, newest at the bottom.
	bottom := height/2 + 2
	visible := bottom - row
	timeline := ch.Timeline
	if len(timeline) > visible && visible > 0 {
		timeline = timeline[len(timeline)-visible:]
	}
	for _, m := range timeline {
		if row >= bottom {
			break
		}
		a.drawText(x, row, paneWidth, timelineLine(m, paneWidth), a.roleStyle(m.Role))
		row++
	}
}

// drawChat renders the web chat conversation in the lower right pane.
func (a *App) drawChat(width, height int) {
	x := channelPaneWidth + 1
	paneWidth := width - x
	top := height/2 + 3
	bottom := height - 2

	a.drawText(x, top-1, paneWidth, "chat", StyleDim)

	messages := a.session.Messages()
	visible := bottom - top
	if len(messages) > visible && visible > 0 {
		messages = messages[len(messages)-visible:]
	}
	row := top
	for _, m := range messages {
		if row >= bottom {
			break
		}
		line := fmt.Sprintf("%s: %s", m.Role, m.Content)
		a.drawText(x, row, paneWidth, truncate(line, paneWidth), a.roleStyle(string(m.Role)))
		row++
	}
	for _, t := range a.session.ToolActivity() {
		if row >= bottom {
			break
		}
		line := fmt.Sprintf("[%s %s]", t.Tool, t.Status)
		a.drawText(x, row, paneWidth, line, StyleWorker)
		row++
	}
}

func (a *App) drawInput(width, height int) {
	if err := a.session.Err(); err != nil {
		a.drawText(0, height-2, width, truncate(err.Error(), width), StyleError)
	}
	prompt := "> "
	a.drawText(0, height-1, width, prompt, StylePrompt)
	a.drawText(len(prompt), height-1, width-len(prompt), string(a.input), StyleDefault)
}

func (a *App) roleStyle(role string) tcell.Style {
	switch role {
	case "user":
		return StyleUserText
	case "assistant":
		return StyleAssistant
	default:
		return StyleSystemText
	}
}

func (a *App) drawText(x, y, maxWidth int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col-x >= maxWidth {
			break
		}
		a.screen.SetContent(col, y, r, nil, style)
		col++
	}
}
