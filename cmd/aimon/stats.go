package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/shayc/aimon/internal/config"
	"github.com/spf13/cobra"
)

var (
	statsSession string
	statsJSON    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show decision statistics",
	Args:  cobra.NoArgs,
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

		stats, err := arb.Stats(statsSession)
		if err != nil {
			return err
		}

		if statsJSON {
			return printJSON(stats)
		}

		fmt.Printf("Decisions: %d\n", stats.TotalDecisions)
		printCountMap("By action:", stats.ByAction)
		printCountMap("By outcome:", stats.ByOutcome)
		overrides := fmt.Sprintf("Overrides: %d (%.0f%%)", stats.OverrideCount, stats.OverrideRate*100)
		if stats.OverrideCount > 0 {
			overrides = color.YellowString(overrides)
		}
		fmt.Println(overrides)
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsSession, "session", "", "Limit statistics to one session")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output in JSON format")
}

// printCountMap prints a labelled count map with stable key order.
func printCountMap(label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println(label)
	for _, k := range keys {
		fmt.Printf("  %s: %d\n", k, counts[k])
	}
}
