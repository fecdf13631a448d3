package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// titleStyle for section headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	// dimStyle for muted field labels
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for completed runs
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// costStyle for USD figures
	costStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	// boxStyle for run summary boxes
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)
)

// summaryBox renders a titled field list inside a box. Fields are
// label/value pairs rendered one per line.
func summaryBox(title string, fields [][2]string) string {
	width := 0
	for _, f := range fields {
		if len(f[0]) > width {
			width = len(f[0])
		}
	}

	var lines []string
	lines = append(lines, titleStyle.Render(title))
	for _, f := range fields {
		label := fmt.Sprintf("%-*s", width+1, f[0]+":")
		lines = append(lines, dimStyle.Render(label)+" "+f[1])
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// usd formats a cost with the precision the logs use.
func usd(v float64) string {
	return costStyle.Render(fmt.Sprintf("$%.8f", v))
}
