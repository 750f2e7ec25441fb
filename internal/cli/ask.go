package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/johnayoung/llm-fanout/internal/ui"
	"github.com/spf13/cobra"
)

var (
	askSystemPrompt string
	askFile         string
	askJSON         bool
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Send a prompt to every configured provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := buildOrchestrator()
		if err != nil {
			return err
		}

		prompt, err := readPrompt(args, askFile)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		showUI := ui.IsTerminal(os.Stdout) && !askJSON
		if showUI {
			ui.PrintHeader(os.Stderr, prompt)
		}

		result := orch.Ask(ctx, prompt, askSystemPrompt)

		if !showUI {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		for _, r := range result.Responses {
			if r.OK() {
				ui.PrintProviderResponse(os.Stdout, r.Name, r.ProviderID, r.Content, r.LatencyMS)
			} else {
				ui.PrintError(os.Stderr, fmt.Sprintf("%s: %s", r.Name, r.Err))
			}
		}

		ui.PrintSummary(os.Stderr, len(result.Responses), result.SuccessCount, result.ErrorCount, result.TotalLatencyMS)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVarP(&askSystemPrompt, "system", "s", "", "System prompt sent to every provider")
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "Read prompt from file")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Output JSON to stdout")
	rootCmd.AddCommand(askCmd)
}

// readPrompt resolves the prompt from: positional args > file > stdin.
func readPrompt(args []string, file string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading prompt file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.Join(lines, "\n"), nil
	}

	return "", fmt.Errorf("no prompt provided: use a positional argument, --file, or pipe to stdin")
}
