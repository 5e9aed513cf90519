package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shayc/aimon/internal/config"
	"github.com/shayc/aimon/pkg/models"
	"github.com/spf13/cobra"
)

var (
	runContext     string
	runPipeline    string
	runStage       string
	runPrimaryRole string
	runOutputFmt   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a decision pipeline over session output",
	Long: `Run session output through a decision pipeline and print the result.

The input comes from --context, or from stdin when the flag is omitted.
The pipeline is picked by name, or mapped from the session stage when
--pipeline is "auto". The result is a JSON report by default; use
--output response to print just the final response line.

Examples:
  aimon run --context "$(tail -50 session.log)"
  tail -50 session.log | aimon run --pipeline vote
  tail -50 session.log | aimon run --pipeline auto --stage reviewing
  tail -50 session.log | aimon run --output response`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runContext, "context", "", "Session output to evaluate (reads stdin when omitted)")
	runCmd.Flags().StringVar(&runPipeline, "pipeline", "", "Pipeline name, or \"auto\" to map from --stage")
	runCmd.Flags().StringVar(&runStage, "stage", "", "Current session stage, used by auto selection")
	runCmd.Flags().StringVar(&runPrimaryRole, "primary-role", "", "Override the first agent's role")
	runCmd.Flags().StringVar(&runOutputFmt, "output", "full", "Output format: full or response")
}

// runReport is the full-output shape of one pipeline run.
type runReport struct {
	Timestamp     int64                  `json:"timestamp"`
	FinalResponse string                 `json:"final_response"`
	Reason        string                 `json:"reason"`
	AgentCount    int                    `json:"agent_count"`
	Responses     []models.AgentResponse `json:"responses"`
}

func runRun(cmd *cobra.Command, args []string) error {
	if runOutputFmt != "full" && runOutputFmt != "response" {
		return fmt.Errorf("invalid --output %q (want full or response)", runOutputFmt)
	}

	input := runContext
	if input == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		input = string(data)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	orch, logger, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	var result models.PipelineResult
	spec, ok := orch.Select(runPipeline, runStage)
	if !ok {
		result = models.PipelineResult{
			FinalResponse: models.WaitResponse,
			Reason:        "No pipeline found",
			Timestamp:     time.Now().Unix(),
		}
	} else {
		if runPrimaryRole != "" && len(spec.Agents) > 0 {
			// Copy before mutating; the slice is shared with the registry.
			agents := make([]models.AgentSpec, len(spec.Agents))
			copy(agents, spec.Agents)
			agents[0].Role = runPrimaryRole
			spec.Agents = agents
		}
		result = orch.RunSpec(cmd.Context(), spec, input)
	}

	if runOutputFmt == "response" {
		fmt.Println(result.FinalResponse)
		return nil
	}

	responses := result.Responses
	if responses == nil {
		responses = []models.AgentResponse{}
	}
	return printJSON(runReport{
		Timestamp:     result.Timestamp,
		FinalResponse: result.FinalResponse,
		Reason:        result.Reason,
		AgentCount:    len(responses),
		Responses:     responses,
	})
}
