package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Color codes for terminal output.
const (
	Reset     = "\033[0m"
	Dim       = "\033[2m"
	Green     = "\033[32m"
	Blue      = "\033[34m"
	Red       = "\033[31m"
	BoldCyan  = "\033[1;36m"
	Cyan      = "\033[36m"
)

// PrintHeader prints a styled header with the question being asked.
func PrintHeader(w io.Writer, prompt string) {
	fmt.Fprintf(w, "\n%s╭─ LLM Fanout ─╮%s\n", BoldCyan, Reset)
	fmt.Fprintf(w, "%s│%s Prompt: %s%s%s\n", Cyan, Reset, Dim, truncate(prompt, 60), Reset)
	fmt.Fprintf(w, "%s╰──────────────╯%s\n\n", Cyan, Reset)
}

// PrintSuccess prints a success message.
func PrintSuccess(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s✓ %s%s\n", Green, msg, Reset)
}

// PrintError prints an error message.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s✗ %s%s\n", Red, msg, Reset)
}

// PrintProviderResponse prints one provider's answer with formatting.
func PrintProviderResponse(w io.Writer, name, providerID, content string, latencyMS int64) {
	fmt.Fprintf(w, "\n%s┌─ %s (%s) [%.1fs] ─┐%s\n",
		Blue, name, providerID, float64(latencyMS)/1000, Reset)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(w, "%s│%s %s\n", Blue, Reset, line)
	}
	fmt.Fprintf(w, "%s└─────────────────────────┘%s\n", Blue, Reset)
}

// PrintSummary prints a summary of the fan-out.
func PrintSummary(w io.Writer, total, succeeded, failed int, totalMS int64) {
	fmt.Fprintf(w, "\n%s─── Summary ───%s\n", Dim, Reset)
	fmt.Fprintf(w, "Providers queried: %d (%s%d succeeded%s, %s%d failed%s)\n",
		total,
		Green, succeeded, Reset,
		Red, failed, Reset)
	fmt.Fprintf(w, "Total time: %.1fs\n", float64(totalMS)/1000)
}

// IsTerminal checks if the given file is a terminal.
func IsTerminal(f *os.File) bool {
	stat, _ := f.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// truncate shortens a string to max length, collapsing newlines.
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if len(s) > max {
		return s[:max-1] + "…"
	}
	return s
}
