package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/shayc/aimon/internal/config"
	"github.com/spf13/cobra"
)

var (
	auditLimit int
	auditJSON  bool
)

var auditCmd = &cobra.Command{
	Use:   "audit <session-id>",
	Short: "List a session's recent decisions",
	Long: `List the most recent decisions for a session, newest first.

Output formats:
  - Human-readable (default): one line per decision
  - JSON (--json flag): machine-readable summaries`,
	Args: cobra.ExactArgs(1),
	RunE: runAuditList,
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "Maximum decisions to list")
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "Output in JSON format")
}

func runAuditList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	arb, store, err := openArbiter(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := arb.Audit(args[0], auditLimit)
	if err != nil {
		return err
	}

	if auditJSON {
		return printJSON(summaries)
	}

	if len(summaries) == 0 {
		fmt.Printf("No decisions recorded for session %s\n", args[0])
		return nil
	}

	for _, s := range summaries {
		marker := color.GreenString("✓")
		if s.Overridden {
			marker = color.YellowString("⚠")
		}
		line := fmt.Sprintf("%s %s %s (%.0f%%)", marker, s.DecisionID, s.Action, s.Confidence*100)
		if s.ContentPreview != "" {
			line += " " + s.ContentPreview
		}
		if s.Outcome != "" {
			line += fmt.Sprintf(" [%s]", s.Outcome)
		}
		fmt.Println(line)
	}
	return nil
}
