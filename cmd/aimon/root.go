package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aimon",
	Short: "Decision pipeline supervisor for automated sessions",
	Long: `Aimon supervises automated development sessions. It routes session
output through configurable pipelines of decision agents, arbitrates
suggestions from multiple advisory sources into a single audited
action, and keeps token usage down with a rule-based classifier,
output filtering, and a response cache.

Core capabilities:
- Runs single, sequential, vote, and tiered decision pipelines
- Selects pipelines per session stage, with hot reload of the registry
- Arbitrates suggestions by source authority, confidence, and safety
- Persists every decision with a full audit trail in SQLite`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listPipelinesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(arbitrateCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(overrideCmd)
	rootCmd.AddCommand(outcomeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}
