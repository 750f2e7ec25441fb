package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/johnayoung/llm-fanout/internal/ui"
	"github.com/spf13/cobra"
)

var testJSON bool

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Probe every configured provider with a lightweight query",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := buildOrchestrator()
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		statuses := orch.TestConnections(ctx)

		if testJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(statuses)
		}

		for _, s := range statuses {
			if s.OK {
				ui.PrintSuccess(os.Stdout, fmt.Sprintf("%s (%s)", s.Name, s.ProviderID))
			} else {
				ui.PrintError(os.Stdout, fmt.Sprintf("%s (%s)", s.Name, s.ProviderID))
			}
		}
		return nil
	},
}

func init() {
	testCmd.Flags().BoolVar(&testJSON, "json", false, "Output JSON to stdout")
	rootCmd.AddCommand(testCmd)
}
