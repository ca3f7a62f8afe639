package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apartsfinder/afind/internal/ui"
)

// customHelpFunc provides a colorized help output
func customHelpFunc(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "\n%s%s%s\n", ui.ColorBold+ui.ColorCyan, strings.ToUpper(cmd.Name()), ui.ColorReset)
	if cmd.Short != "" {
		fmt.Fprintln(out, cmd.Short)
	}
	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(out, "\n%s\n", wrapText(cmd.Long, 80))
	}

	printUsage(out, cmd)
	if cmd.HasExample() {
		heading(out, "Examples")
		printExamples(out, cmd.Example)
	}
	printCommands(out, cmd)

	if cmd.HasAvailableLocalFlags() {
		heading(out, "Flags")
		printFlagsTo(out, cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		heading(out, "Global Flags")
		printFlagsTo(out, cmd.InheritedFlags().FlagUsages())
	}

	if cmd.HasAvailableSubCommands() {
		footer(out, cmd, true)
	}
	fmt.Fprintln(out)
}

// customUsageFunc provides a colorized usage output
func customUsageFunc(cmd *cobra.Command) error {
	out := cmd.ErrOrStderr()

	printUsage(out, cmd)
	printCommands(out, cmd)
	if cmd.HasAvailableLocalFlags() {
		heading(out, "Flags")
		printFlagsTo(out, cmd.LocalFlags().FlagUsages())
	}
	footer(out, cmd, false)
	return nil
}

func heading(out io.Writer, title string) {
	fmt.Fprintf(out, "\n%s%s%s\n", ui.ColorBold+ui.ColorWhite, title, ui.ColorReset)
}

func printUsage(out io.Writer, cmd *cobra.Command) {
	heading(out, "Usage")
	if cmd.Runnable() {
		fmt.Fprintf(out, "  %s%s%s\n", ui.ColorCyan, cmd.UseLine(), ui.ColorReset)
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(out, "  %s%s%s %s<command>%s %s[flags]%s\n",
			ui.ColorCyan, cmd.CommandPath(), ui.ColorReset,
			ui.ColorYellow, ui.ColorReset,
			ui.ColorDim, ui.ColorReset)
	}
}

// printExamples renders "#" lines as dim comments and the rest as shell commands
func printExamples(out io.Writer, example string) {
	afterCommand := false
	for _, line := range strings.Split(example, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "#"):
			if afterCommand {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "  %s%s%s\n", ui.ColorDim, line, ui.ColorReset)
			afterCommand = false
		default:
			fmt.Fprintf(out, "  %s$ %s%s\n", ui.ColorGreen, line, ui.ColorReset)
			afterCommand = true
		}
	}
}

func printCommands(out io.Writer, cmd *cobra.Command) {
	if !cmd.HasAvailableSubCommands() {
		return
	}

	var subs []*cobra.Command
	width := 0
	for _, c := range cmd.Commands() {
		if !c.IsAvailableCommand() || c.Name() == "help" {
			continue
		}
		subs = append(subs, c)
		width = max(width, len(c.Name()))
	}

	heading(out, "Commands")
	for _, c := range subs {
		fmt.Fprintf(out, "  %s%-*s%s  %s%s%s\n",
			ui.ColorCyan, width, c.Name(), ui.ColorReset,
			ui.ColorDim, c.Short, ui.ColorReset)
	}
}

func footer(out io.Writer, cmd *cobra.Command, subcommands bool) {
	target := ""
	about := "more information."
	if subcommands {
		target = fmt.Sprintf(" %s<command>%s", ui.ColorYellow, ui.ColorReset+ui.ColorDim)
		about = "more information about a command."
	}
	fmt.Fprintf(out, "\n%sUse \"%s%s%s%s %s--help%s\" for %s%s\n",
		ui.ColorDim,
		ui.ColorCyan, cmd.CommandPath(), ui.ColorReset+ui.ColorDim,
		target,
		ui.ColorGreen, ui.ColorReset+ui.ColorDim,
		about, ui.ColorReset)
}

// printFlagsTo prints flag usages with color formatting to writer
func printFlagsTo(writer io.Writer, flagUsages string) {
	lines := strings.Split(flagUsages, "\n")

	// Find maximum flag length for alignment
	maxFlagLen := 0
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if strings.HasPrefix(trimmed, "-") {
			parts := strings.SplitN(trimmed, "  ", 2)
			if len(parts) >= 1 {
				flagPart := strings.TrimSpace(parts[0])
				if len(flagPart) > maxFlagLen {
					maxFlagLen = len(flagPart)
				}
			}
		}
	}

	// Set minimum width for alignment
	if maxFlagLen < 28 {
		maxFlagLen = 28
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		trimmed := strings.TrimLeft(line, " ")

		// Check if this is a flag definition line or a continuation
		if strings.HasPrefix(trimmed, "-") {
			parts := strings.SplitN(trimmed, "  ", 2)
			if len(parts) == 2 {
				flagPart := strings.TrimSpace(parts[0])
				descPart := strings.TrimSpace(parts[1])

				padding := strings.Repeat(" ", maxFlagLen-len(flagPart)+2)

				fmt.Fprintf(writer, "  %s%s%s%s%s%s%s\n",
					ui.ColorGreen, flagPart, ui.ColorReset,
					padding,
					ui.ColorDim, descPart, ui.ColorReset)
			} else {
				fmt.Fprintf(writer, "  %s%s%s\n", ui.ColorGreen, trimmed, ui.ColorReset)
			}
		} else {
			// Continuation line (description continues)
			indentSpaces := strings.Repeat(" ", maxFlagLen+4)
			fmt.Fprintf(writer, "%s%s%s%s\n",
				indentSpaces,
				ui.ColorDim, trimmed, ui.ColorReset)
		}
	}
}

// wrapText wraps text at the specified width while preserving paragraphs
func wrapText(text string, width int) string {
	// Split by double newlines to preserve paragraphs
	paragraphs := strings.Split(text, "\n\n")
	var wrappedParagraphs []string

	for _, para := range paragraphs {
		// Split by single newlines to preserve intentional line breaks
		lines := strings.Split(para, "\n")
		var wrappedLines []string

		for _, line := range lines {
			trimmedLine := strings.TrimSpace(line)
			if trimmedLine == "" {
				continue
			}

			// Check if this is a bullet point or list item
			if strings.HasPrefix(trimmedLine, "-") || strings.HasPrefix(trimmedLine, "•") || strings.HasPrefix(trimmedLine, "*") {
				// Don't wrap bullet points with previous content
				wrappedLines = append(wrappedLines, trimmedLine)
				continue
			}

			// Wrap regular lines
			words := strings.Fields(trimmedLine)
			if len(words) == 0 {
				continue
			}

			var currentLine strings.Builder
			for _, word := range words {
				if currentLine.Len() == 0 {
					currentLine.WriteString(word)
				} else if currentLine.Len()+1+len(word) <= width {
					currentLine.WriteString(" ")
					currentLine.WriteString(word)
				} else {
					wrappedLines = append(wrappedLines, currentLine.String())
					currentLine.Reset()
					currentLine.WriteString(word)
				}
			}

			if currentLine.Len() > 0 {
				wrappedLines = append(wrappedLines, currentLine.String())
			}
		}

		if len(wrappedLines) > 0 {
			wrappedParagraphs = append(wrappedParagraphs, strings.Join(wrappedLines, "\n"))
		}
	}

	return strings.Join(wrappedParagraphs, "\n\n")
}
