package effectors

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var botStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

// BotStyle renders bot text in the terminal accent style
func BotStyle(text string) string {
	return botStyle.Render(text)
}

// ShouldUseColor reports whether stdout should get ANSI styling.
// NO_COLOR disables it, CLICOLOR_FORCE forces it, otherwise only a TTY
// gets color.
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
