package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/dws-front/internal/lexer"
	"github.com/cwbudde/dws-front/internal/token"
)

var (
	showPos  bool
	showType bool
)

var lexCmd = &cobra.Command{
	Use:   "lex <input>",
	Short: "Tokenize a source file and print the token stream",
	Long: `Tokenize a source file and print the resulting tokens, one per line.

This command is useful for debugging the lexer and understanding how
source code is tokenized.

Examples:
  # Tokenize a source file
  dws lex program.src

  # Show token types and positions
  dws lex --show-type --show-pos program.src`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		os.Exit(runLex(args[0], verbose, os.Stdout, os.Stderr))
	},
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showType, "show-type", false, "show token type names")
}

func runLex(input string, verbose bool, stdout, stderr io.Writer) int {
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
	for _, tok := range tokens {
		printToken(stdout, tok)
	}

	if lexErrs := lx.Errors(); len(lexErrs) > 0 {
		for _, e := range lexErrs {
			fmt.Fprintf(stderr, "Error: %v\n", &e)
		}
		return ExitLexerError
	}

	if verbose {
		fmt.Fprintf(stderr, "Total tokens: %d\n", len(tokens))
	}
	return ExitSuccess
}

func printToken(w io.Writer, tok token.Token) {
	switch {
	case showPos && showType:
		fmt.Fprintf(w, "%s\t%s\t%q\n", tok.Pos, tok.Type, tok.Literal)
	case showPos:
		fmt.Fprintf(w, "%s\t%q\n", tok.Pos, tok.Literal)
	case showType:
		fmt.Fprintf(w, "%s\t%q\n", tok.Type, tok.Literal)
	default:
		fmt.Fprintf(w, "%s %q\n", tok.Type, tok.Literal)
	}
}
