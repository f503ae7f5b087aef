// Package cli implements the ogarx command line: offline extraction of a
// set of documents into one spreadsheet, plus a few helper commands.
package cli

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	// model providers register themselves with the invoker factory
	_ "ogarx/internal/invoker/claude"
	_ "ogarx/internal/invoker/gemini"
	_ "ogarx/internal/invoker/openai"
)

// Version is overridden at build time with -ldflags "-X ogarx/internal/cli.Version=...".
var Version = "dev"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "ogarx",
		Short: "OGAR insurance document extraction",
		Long: `ogarx turns scanned OGAR insurance documents (PDF, PNG, JPEG) into a
spreadsheet of extracted fields.

Every page is sent to a vision model with the extraction prompt, the JSON
in each reply is recovered and flattened into Category / Field Name /
Field Value rows, and all rows of a run are written to one file.

Configuration comes from OGARX_* environment variables and an optional
.env file in the working directory.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetOutput(cmd.ErrOrStderr())
			} else {
				log.SetOutput(io.Discard)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(newPromptCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ogarx %s\n", Version)
		},
	}
}
