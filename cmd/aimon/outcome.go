package main

import (
	"fmt"
	"strings"

	"github.com/shayc/aimon/internal/config"
	"github.com/spf13/cobra"
)

var outcomeCmd = &cobra.Command{
	Use:   "outcome <decision-id> <success|failure|ignored>",
	Short: "Record how a decision played out",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome := strings.ToLower(args[1])
		switch outcome {
		case "success", "failure", "ignored":
		default:
			return fmt.Errorf("invalid outcome %q (want success, failure, or ignored)", args[1])
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

		if err := arb.RecordOutcome(args[0], outcome); err != nil {
			return err
		}
		fmt.Printf("Recorded outcome %q for decision %s\n", outcome, args[0])
		return nil
	},
}
