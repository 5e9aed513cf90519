package main

import (
	"github.com/shayc/aimon/internal/config"
	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain <decision-id>",
	Short: "Explain a stored decision",
	Long: `Print a decision with its expanded explanation and full audit trail,
including any override and recorded outcome.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		arb, store, err := openArbiter(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		explanation, err := arb.Explain(args[0])
		if err != nil {
			return err
		}
		return printJSON(explanation)
	},
}
