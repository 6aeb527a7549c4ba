package utils

import (
	"fmt"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

var (
	CriticalColor = lipgloss.Color("#CC3333")
	WarningColor  = lipgloss.Color("#FF8800")
	GoodColor     = lipgloss.Color("#228B22")
	InfoColor     = lipgloss.Color("#4682B4")
	TextColor     = lipgloss.Color("#CCCCCC")
	MutedColor    = lipgloss.Color("#888888")
)

var (
	CriticalStyle = lipgloss.NewStyle().Foreground(CriticalColor).Bold(true)
	WarningStyle  = lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	GoodStyle     = lipgloss.NewStyle().Foreground(GoodColor).Bold(true)
	InfoStyle     = lipgloss.NewStyle().Foreground(InfoColor)
	MutedStyle    = lipgloss.NewStyle().Foreground(MutedColor)
	TextStyle     = lipgloss.NewStyle().Foreground(TextColor)
)

type TerminalCapabilities struct {
	SupportsUnicode bool
	SupportsColor   bool
	Width           int
}

var termCaps *TerminalCapabilities

func init() {
	termCaps = detectTerminalCapabilities()
}

func detectTerminalCapabilities() *TerminalCapabilities {
	caps := &TerminalCapabilities{
		SupportsUnicode: true,
		SupportsColor:   true,
		Width:           80,
	}

	term := os.Getenv("TERM")
	if strings.Contains(term, "xterm") || strings.Contains(term, "color") {
		caps.SupportsColor = true
	}

	testStr := "█░"
	if utf8.RuneCountInString(testStr) != len([]rune(testStr)) {
		caps.SupportsUnicode = false
	}

	return caps
}

type ProgressBarConfig struct {
	Width     int
	FillChar  string
	EmptyChar string
	UseColor  bool
}

func GetProgressBarConfig(width int) ProgressBarConfig {
	config := ProgressBarConfig{
		Width:    width,
		UseColor: termCaps.SupportsColor,
	}

	if termCaps.SupportsUnicode {
		config.FillChar = "█"
		config.EmptyChar = "░"
	} else {
		config.FillChar = "#"
		config.EmptyChar = "-"
	}

	return config
}

// CreateProgressBar renders percentage (0..1) as a filled/empty bar.
func CreateProgressBar(percentage float64, width int, color lipgloss.Color) string {
	if width < 4 {
		return fmt.Sprintf("%.0f%%", percentage*100)
	}

	config := GetProgressBarConfig(width)

	filled := int(math.Round(percentage * float64(config.Width)))
	if filled > config.Width {
		filled = config.Width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat(config.FillChar, filled) +
		strings.Repeat(config.EmptyChar, config.Width-filled)

	if config.UseColor && color != "" {
		style := lipgloss.NewStyle().Foreground(color)
		bar = style.Render(bar)
	}

	return bar
}

func GetSeverityStyle(severity string) lipgloss.Style {
	switch strings.ToLower(severity) {
	case "critical":
		return CriticalStyle
	case "warning":
		return WarningStyle
	case "info":
		return InfoStyle
	default:
		return GoodStyle
	}
}

func GetSeverityIcon(severity string) string {
	switch strings.ToLower(severity) {
	case "critical":
		return "🔴"
	case "warning":
		return "⚠️"
	case "info":
		return "ℹ️"
	default:
		return "✅"
	}
}

// GetTrendIcon classifies a signed trend (e.g. thread-count regression
// slope) as rising, falling, or stable.
func GetTrendIcon(trend float64) string {
	if trend > 0.05 {
		return "📈"
	} else if trend < -0.05 {
		return "📉"
	}
	return "➡️"
}

func CreateStatusIndicator(status, text string, color lipgloss.Color) string {
	var icon string
	switch status {
	case "connected":
		icon = "🟢"
	case "disconnected":
		icon = "🔴"
	case "warning":
		icon = "🟡"
	case "error":
		icon = "❌"
	default:
		icon = "⚫"
	}

	style := lipgloss.NewStyle().Foreground(color).Bold(true)
	return style.Render(fmt.Sprintf("%s %s", icon, text))
}

// CreateMetricDisplay creates a formatted "name: value unit" display.
func CreateMetricDisplay(name, value, unit string, color lipgloss.Color) string {
	nameStyle := InfoStyle
	valueStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	unitStyle := MutedStyle

	return fmt.Sprintf("%s: %s%s",
		nameStyle.Render(name),
		valueStyle.Render(value),
		unitStyle.Render(unit))
}

// CreateSparkline creates a simple one-line bar chart.
func CreateSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if max == min {
		return strings.Repeat("─", width)
	}

	chars := []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

	var result strings.Builder
	for i := 0; i < width && i < len(values); i++ {
		normalized := (values[i] - min) / (max - min)

		charIndex := int(normalized * float64(len(chars)-1))
		if charIndex >= len(chars) {
			charIndex = len(chars) - 1
		}

		result.WriteString(chars[charIndex])
	}

	return result.String()
}

// TruncateString truncates a string to fit within maxWidth.
func TruncateString(s string, maxWidth int) string {
	if len(s) <= maxWidth {
		return s
	}
	if maxWidth < 4 {
		return strings.Repeat(".", maxWidth)
	}
	return s[:maxWidth-3] + "..."
}

// SanitizeString removes control characters so thread names/stack text from
// a dump can't corrupt terminal output.
func SanitizeString(s string) string {
	var result []rune
	for _, r := range s {
		if r >= 32 && r != 127 {
			result = append(result, r)
		}
	}
	return string(result)
}

// PadRight pads a string to the right to reach the specified width.
func PadRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// WrapText wraps text to fit within specified width.
func WrapText(text string, width int) []string {
	if width < 10 {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var currentLine []string
	currentLength := 0

	for _, word := range words {
		if currentLength+len(word)+len(currentLine) > width && len(currentLine) > 0 {
			lines = append(lines, strings.Join(currentLine, " "))
			currentLine = []string{word}
			currentLength = len(word)
		} else {
			currentLine = append(currentLine, word)
			currentLength += len(word)
		}
	}

	if len(currentLine) > 0 {
		lines = append(lines, strings.Join(currentLine, " "))
	}

	return lines
}
