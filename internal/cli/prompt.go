package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ogarx/internal/config"
	"ogarx/internal/prompt"
)

func newPromptCmd() *cobra.Command {
	var promptFile string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the extraction prompt that would be sent to the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := resolvePrompt(promptFile)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&promptFile, "prompt-file", "", "read the prompt from this file instead of the built-in one")
	return cmd
}

// resolvePrompt prefers the flag, then OGARX_EXTRACTION_PROMPT_FILE, then
// the built-in prompt.
func resolvePrompt(flagPath string) (string, error) {
	path := flagPath
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return "", err
		}
		path = cfg.Extraction.PromptFile
	}
	return prompt.Load(path)
}
