package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/dws-front/internal/lexer"
	"github.com/cwbudde/dws-front/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse <input>",
	Short: "Parse a source file and print the untyped syntax tree",
	Long: `Parse a source file through the lexer and recursive-descent parser and
print the resulting untyped syntax tree. No semantic analysis is run:
the tree is scope-unresolved and untyped.

Examples:
  dws parse program.src`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runParse(args[0], os.Stdout, os.Stderr))
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(input string, stdout, stderr io.Writer) int {
	content, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to read file %s: %v\n", input, err)
		return ExitIOError
	}
	source := string(content)

	lx, err := lexer.New(source)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitStripperError
	}
	tokens := lx.Tokenize()
	if lexErrs := lx.Errors(); len(lexErrs) > 0 {
		for _, e := range lexErrs {
			fmt.Fprintf(stderr, "Error: %v\n", &e)
		}
		return ExitLexerError
	}

	p := parser.New(tokens)
	prog := p.ParseProgram()
	if parseErrs := p.Errors(); len(parseErrs) > 0 {
		for _, e := range parseErrs {
			fmt.Fprintf(stderr, "Error: %v\n", e)
		}
		return ExitParserError
	}

	fmt.Fprintln(stdout, prog.String())
	return ExitSuccess
}
