package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA")).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

// StyledHelpPrinter returns a kong help printer that renders the command
// title, usage, arguments and flags with the package styles.
func StyledHelpPrinter(title string) kong.HelpPrinter {
	return func(_ kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		sb.WriteString(TitleStyle.Render(title))
		sb.WriteString("\n")
		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(fmt.Sprintf("%s [flags] <files> ...", ctx.Model.Name))
		sb.WriteString("\n")

		if len(ctx.Model.Node.Positional) > 0 {
			sb.WriteString(helpSectionStyle.Render("Arguments:"))
			sb.WriteString("\n")

			for _, arg := range ctx.Model.Node.Positional {
				sb.WriteString("  ")
				sb.WriteString(helpArgStyle.Render(arg.Summary()))

				if arg.Help != "" {
					sb.WriteString("  ")
					sb.WriteString(arg.Help)
				}

				sb.WriteString("\n")
			}
		}

		sb.WriteString(helpSectionStyle.Render("Flags:"))
		sb.WriteString("\n")
		sb.WriteString("  ")
		sb.WriteString(helpFlagStyle.Render("-h, --help"))
		sb.WriteString("  Show context-sensitive help.\n")

		for _, f := range ctx.Model.Node.Flags {
			if f.Name == "help" {
				continue
			}

			flagStr := "--" + f.Name
			if f.Short != 0 {
				flagStr = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
			}

			if !f.IsBool() && f.PlaceHolder != "" {
				flagStr += "=" + strings.ToUpper(f.PlaceHolder)
			}

			sb.WriteString("  ")
			sb.WriteString(helpFlagStyle.Render(flagStr))

			if f.Help != "" {
				sb.WriteString("  ")
				sb.WriteString(f.Help)
			}

			if f.HasDefault && f.Default != "" {
				sb.WriteString(" ")
				sb.WriteString(helpDefaultStyle.Render("(default: " + f.Default + ")"))
			}

			sb.WriteString("\n")
		}

		fmt.Fprint(ctx.Stdout, sb.String())

		return nil
	}
}
