package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Exit codes, one per failing layer, so scripts can tell an argument
// problem from a rejected program.
const (
	ExitSuccess          = 0
	ExitInvalidArguments = 1
	ExitIOError          = 2
	ExitStripperError    = 3
	ExitLexerError       = 4
	ExitParserError      = 5
	ExitSemanticError    = 6
)

var rootCmd = &cobra.Command{
	Use:   "dws",
	Short: "Front-end for a small block-structured imperative language",
	Long: `dws is the front-end of a compiler for a small imperative source
language in the Pascal/Ada family: nested procedures, fixed-length
arrays, and four scalar types.

It consumes a UTF-8 source file and produces a fully type-checked tree:
comments are stripped, the text is tokenized, parsed by recursive
descent, and semantically analyzed with explicit coercion nodes. The
first diagnostic aborts the pipeline.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
