package main

import (
	"encoding/json"
	"io"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/di"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type categorizeOutput struct {
	Categories core.CategoryAssignment `json:"categories"`
	Dropped    []core.DroppedOrdinal   `json:"dropped,omitempty"`
	Unassigned []core.EmailRecord      `json:"unassigned,omitempty"`
	Model      string                  `json:"model,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

func newCategorizeCommand(flags *di.CLIFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "categorize",
		Short: "Ask the model to categorize email records",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(flags, cmd.InOrStdin())
			if err != nil {
				return err
			}

			container, err := di.BuildCLIContainer(flags)
			if err != nil {
				return err
			}

			return container.Invoke(func(svc *core.TriageService, llmClient core.LLMClient, logger *zap.Logger) error {
				defer logger.Sync()
				if closer, ok := llmClient.(interface{ Close() error }); ok {
					defer closer.Close()
				}

				outcome := svc.Categorize(cmd.Context(), records)
				return writeOutcome(cmd.OutOrStdout(), outcome)
			})
		},
	}
}

func writeOutcome(w io.Writer, outcome *core.CategorizationOutcome) error {
	out := categorizeOutput{
		Categories: outcome.Assignment,
		Dropped:    outcome.Dropped,
		Unassigned: outcome.Unassigned,
		Model:      outcome.ModelUsed,
	}
	if outcome.Failure != nil {
		out.Error = outcome.Failure.Error()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
