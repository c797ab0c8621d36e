package main

import (
	"fmt"

	"github.com/mikey/inbox-triage/internal/di"
	"github.com/mikey/inbox-triage/internal/factory"
	"github.com/spf13/cobra"
)

func newPromptCommand(flags *di.CLIFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Print the prompts that would be sent to the model",
		Long:  `Builds the system and user prompts for the input records without contacting a model.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(flags, cmd.InOrStdin())
			if err != nil {
				return err
			}

			container, err := di.BuildCLIContainer(flags)
			if err != nil {
				return err
			}

			// The categorizer is built without a client; Preview never calls it
			return container.Invoke(func(f *factory.TriageFactory) error {
				categorizer, err := f.CreateCategorizer(nil)
				if err != nil {
					return err
				}

				req := categorizer.Preview(records)
				w := cmd.OutOrStdout()
				fmt.Fprintln(w, "=== system ===")
				fmt.Fprintln(w, req.SystemPrompt)
				fmt.Fprintln(w, "=== user ===")
				fmt.Fprintln(w, req.UserPrompt)
				return nil
			})
		},
	}
}
