package output

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// RateBar renders a 0-100 failure rate as a bar, colored from green (low)
// to red (high).
// Example: "████████░░ 80.00%"
func RateBar(rate float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int((rate / 100.0) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	style := StyleSuccess
	switch {
	case rate >= 50:
		style = StyleError
	case rate >= 20:
		style = StyleWarning
	}
	return fmt.Sprintf("%s %s", style.Render(bar), StyleMuted.Render(fmt.Sprintf("%6.2f%%", rate)))
}

// Count formats n with thousands separators, e.g. 12,345.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}

// KeyValue renders one aligned "label  value" line.
func KeyValue(label, value string) string {
	return fmt.Sprintf(" %s %s", StyleLabel.Render(label), value)
}

// FileList renders the paths written by a command, one per line.
func FileList(paths []string) string {
	var sb strings.Builder
	sb.WriteString(Section("Written"))
	sb.WriteString("\n")
	for _, p := range paths {
		fmt.Fprintf(&sb, " %s %s\n", StyleSuccess.Render("✓"), p)
	}
	return sb.String()
}
