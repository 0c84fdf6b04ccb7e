package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Title       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	Subtle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	MetricLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	MetricValue = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ccff"))

	Warning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
	Good    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	Bad     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)
)

// MetricsTable renders name/value pairs sorted by name.
func MetricsTable(metrics map[string]float64) string {
	names := make([]string, 0, len(metrics))
	width := 0
	for name := range metrics {
		names = append(names, name)
		width = max(width, len(name))
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		label := fmt.Sprintf("%-*s", width, name)
		b.WriteString(MetricLabel.Render(label) + "  " + MetricValue.Render(fmt.Sprintf("%.6g", metrics[name])) + "\n")
	}
	return b.String()
}

// Separator is a muted rule with a centred diamond.
func Separator(width int) string {
	if width < 8 {
		width = 8
	}
	mid := width / 2
	return Subtle.Render(strings.Repeat("─", mid-3) + " ◆ " + strings.Repeat("─", width-mid-3))
}
