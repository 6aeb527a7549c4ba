package livetui

import (
	"strings"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
)

// threadCountChart renders the per-capture thread-count history as a
// braille line chart.
func threadCountChart(values []float64, width, height int) string {
	if len(values) < 2 || width <= 0 || height <= 0 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		if v < minY {
			minY = v
		}
		if v > maxY {
			maxY = v
		}
	}
	if maxY == minY {
		maxY = minY + 1
	}

	chart := linechart.New(width, height, 0, float64(len(values)-1), minY, maxY)
	for i, v := range values {
		chart.Push(canvas.Float64Point{X: float64(i), Y: v})
	}
	chart.DrawBraille()
	return chart.View()
}

// sparkline renders values as a one-line bar chart, windowed to the most
// recent width samples.
func sparkline(values []float64, width int) string {
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

	start := 0
	if len(values) > width {
		start = len(values) - width
	}
	values = values[start:]

	var b strings.Builder
	for i := 0; i < width && i < len(values); i++ {
		normalized := (values[i] - min) / (max - min)
		idx := int(normalized * float64(len(chars)-1))
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteString(chars[idx])
	}
	return b.String()
}
