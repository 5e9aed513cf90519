package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/shayc/aimon/internal/config"
	"github.com/spf13/cobra"
)

var listPipelinesJSON bool

var listPipelinesCmd = &cobra.Command{
	Use:   "list-pipelines",
	Short: "List the configured pipelines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		orch, logger, err := newOrchestrator(cfg)
		if err != nil {
			return err
		}
		defer logger.Close()

		infos := orch.List()
		if listPipelinesJSON {
			return printJSON(infos)
		}

		for _, info := range infos {
			fmt.Printf("%s: mode=%s, agents=%d, timeout=%ds\n",
				color.CyanString(info.Key), info.Mode, info.Agents, info.TimeoutS)
		}
		return nil
	},
}

func init() {
	listPipelinesCmd.Flags().BoolVar(&listPipelinesJSON, "json", false, "Output in JSON format")
}
