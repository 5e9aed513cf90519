package main

import (
	"fmt"
	"io"
	"os"

	"github.com/shayc/aimon/internal/arbiter"
	"github.com/shayc/aimon/internal/config"
	"github.com/spf13/cobra"
)

var arbitrateSuggestions string

var arbitrateCmd = &cobra.Command{
	Use:   "arbitrate <session-id>",
	Short: "Arbitrate suggestions into a single decision",
	Long: `Read a JSON array of suggestions and select a single action for the
session. The decision is persisted with a full audit trail.

Suggestions come from --suggestions, or from stdin when the flag is
omitted. Malformed entries are coerced to safe defaults rather than
rejecting the batch.

Example:
  aimon arbitrate sess-1 --suggestions \
    '[{"source":"llm","action_type":"command","content":"go test ./...","confidence":0.9}]'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data := []byte(arbitrateSuggestions)
		if arbitrateSuggestions == "" {
			stdin, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			data = stdin
		}

		suggestions, err := arbiter.ParseSuggestions(data)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		arb, store, err := openArbiter(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := arb.Arbitrate(args[0], suggestions)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	arbitrateCmd.Flags().StringVar(&arbitrateSuggestions, "suggestions", "", "JSON array of suggestions (reads stdin when omitted)")
}
