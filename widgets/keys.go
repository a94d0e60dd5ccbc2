package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

// RenderKeyHelp formats key bindings in a friendly way. A zero keyColor leaves keys unstyled.
func RenderKeyHelp(sections []KeySection, keyColor lipgloss.Color) string {
	keyStyle := lipgloss.NewStyle().Width(12)
	if keyColor != "" {
		keyStyle = keyStyle.Foreground(keyColor)
	}

	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %s %s", keyStyle.Render(k.Key), k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// RenderKeyLine renders bindings on one line: "r regenerate · q quit"
func RenderKeyLine(keys []KeyBinding, sep string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.Key + " " + k.Desc
	}
	return strings.Join(parts, sep)
}
