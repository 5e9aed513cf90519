package main

import (
	"fmt"
	"strings"

	"github.com/shayc/aimon/internal/config"
	"github.com/shayc/aimon/pkg/models"
	"github.com/spf13/cobra"
)

var (
	overrideContent string
	overrideReason  string
)

var overrideCmd = &cobra.Command{
	Use:   "override <decision-id> <new-action>",
	Short: "Override a stored decision with a human action",
	Long: `Replace the action of a stored decision. The original decision is kept
in the audit trail and the override is recorded with its reason.

Example:
  aimon override a1b2c3d4 abort --reason "Tests are known-flaky, do not retry"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		action := models.ActionType(strings.ToLower(args[1]))
		if !action.Valid() {
			return fmt.Errorf("invalid action %q", args[1])
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

		decision, err := arb.Override(args[0], action, overrideContent, overrideReason)
		if err != nil {
			return err
		}
		return printJSON(decision)
	},
}

func init() {
	overrideCmd.Flags().StringVar(&overrideContent, "content", "", "Replacement action content")
	overrideCmd.Flags().StringVar(&overrideReason, "reason", "", "Why the decision is being overridden")
	overrideCmd.MarkFlagRequired("reason")
}
