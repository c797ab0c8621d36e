package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/di"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &di.CLIFlags{}

	rootCmd := &cobra.Command{
		Use:   "triage-cli",
		Short: "Categorize exported email summaries with a language model",
		Long: `triage-cli runs the categorization engine on a JSON array of email
records ({"id", "from", "subject", "snippet"}) read from a file or stdin.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.Provider, "provider", "", "LLM provider (groq, openai, gemini, bedrock, anthropic)")
	pf.StringVar(&flags.Model, "model", "", "Model name or Bedrock model ID")
	pf.StringVar(&flags.APIKey, "api-key", "", "API key for the provider")
	pf.IntVar(&flags.MaxTokens, "max-tokens", 0, "Maximum tokens for the model reply")
	pf.StringVar(&flags.UnknownLabelPolicy, "unknown-labels", "", "Unknown label policy (passthrough, drop, fallback)")
	pf.StringVar(&flags.FallbackLabel, "fallback-label", "", "Label receiving unknown labels under the fallback policy")
	pf.BoolVar(&flags.ExtractEmbeddedJSON, "extract-json", false, "Accept a JSON object embedded in prose replies")
	pf.IntVar(&flags.SnippetLimit, "snippet-limit", 0, "Characters of each snippet sent to the model")
	pf.StringVarP(&flags.InputFile, "file", "f", "", "Input JSON file (use stdin if not specified)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose logging")
	pf.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	pf.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	rootCmd.AddCommand(newCategorizeCommand(flags))
	rootCmd.AddCommand(newPromptCommand(flags))

	return rootCmd
}

// readRecords decodes the input email records from the file named by the
// flags, or stdin
func readRecords(flags *di.CLIFlags, stdin io.Reader) ([]core.EmailRecord, error) {
	in := stdin
	if flags.InputFile != "" {
		f, err := os.Open(flags.InputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		in = f
	}

	var records []core.EmailRecord
	if err := json.NewDecoder(in).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode email records: %w", err)
	}
	return records, nil
}
