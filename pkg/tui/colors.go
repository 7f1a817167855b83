package tui

import "github.com/gdamore/tcell/v2"

// Color constants for the dashboard theme
var (
	// Message colors
	ColorUserText      = tcell.NewRGBColor(255, 176, 0)   // Warm amber - user messages
	ColorAssistantText = tcell.NewRGBColor(0, 255, 135)   // Mint green - assistant messages
	ColorSystemText    = tcell.NewRGBColor(255, 255, 128) // Pale yellow - system messages

	// Activity colors
	ColorTyping = tcell.NewRGBColor(255, 192, 203) // Pink - typing indicator
	ColorWorker = tcell.NewRGBColor(0, 191, 255)   // Deep sky blue - worker badges
	ColorBranch = tcell.NewRGBColor(218, 112, 214) // Orchid - branch badges

	// Connection banner colors
	ColorConnected    = tcell.NewRGBColor(144, 238, 144) // Light green
	ColorReconnecting = tcell.NewRGBColor(255, 218, 185) // Peach
	ColorDisconnected = tcell.NewRGBColor(255, 99, 71)   // Tomato

	// UI element colors
	ColorDimText     = tcell.NewRGBColor(169, 169, 169) // Dark gray - secondary text
	ColorPrompt      = tcell.NewRGBColor(255, 165, 0)   // Orange - input prompt
	ColorSelected    = tcell.NewRGBColor(255, 140, 0)   // Dark orange - selected channel
	ColorChannelText = tcell.NewRGBColor(255, 228, 181) // Moccasin - channel names
	ColorErrorText   = tcell.NewRGBColor(255, 182, 193) // Light pink - turn errors
)

// Style presets combining colors with text attributes
var (
	StyleDefault      = tcell.StyleDefault.Background(tcell.ColorBlack)
	StyleUserText     = StyleDefault.Foreground(ColorUserText)
	StyleAssistant    = StyleDefault.Foreground(ColorAssistantText)
	StyleSystemText   = StyleDefault.Foreground(ColorSystemText)
	StyleTyping       = StyleDefault.Foreground(ColorTyping)
	StyleWorker       = StyleDefault.Foreground(ColorWorker)
	StyleBranch       = StyleDefault.Foreground(ColorBranch)
	StyleConnected    = StyleDefault.Foreground(ColorConnected)
	StyleReconnecting = StyleDefault.Foreground(ColorReconnecting)
	StyleDisconnected = StyleDefault.Foreground(ColorDisconnected)
	StyleDim          = StyleDefault.Foreground(ColorDimText)
	StylePrompt       = StyleDefault.Foreground(ColorPrompt).Bold(true)
	StyleSelected     = StyleDefault.Foreground(ColorSelected).Bold(true)
	StyleChannel      = StyleDefault.Foreground(ColorChannelText)
	StyleError        = StyleDefault.Foreground(ColorErrorText)
)
