// Package cli holds the terminal styling shared by the command line tools.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#D97706") // amber
	accentColor  = lipgloss.Color("#10B981") // green
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#DC2626"))

	WarnStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(12)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	NoteStyle = lipgloss.NewStyle().
			Foreground(accentColor)
)

// PrintVersion prints version information.
func PrintVersion(name, version string) {
	fmt.Println(TitleStyle.Render(name))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
}

// PrintError prints an error message to stderr.
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// KeyValue writes one indented key/value row.
func KeyValue(w io.Writer, key, value string) {
	fmt.Fprintf(w, "  %s %s\n", KeyStyle.Render(key), ValueStyle.Render(value))
}
