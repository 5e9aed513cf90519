package main

import (
	"fmt"

	"github.com/shayc/aimon/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the pipeline configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active pipeline registry",
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

		return printJSON(orch.List())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default pipeline configuration file",
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

		if err := orch.SaveConfig(); err != nil {
			return err
		}
		fmt.Printf("Default config created at: %s\n", orch.ConfigPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
