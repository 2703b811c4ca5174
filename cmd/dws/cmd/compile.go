package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwbudde/dws-front/internal/frontend"
	"github.com/cwbudde/dws-front/internal/semantic"
)

var compileCmd = &cobra.Command{
	Use:   "compile <input> [<output>]",
	Short: "Run the front-end over a source file",
	Long: `Compile a source file to a fully type-checked program tree and write
a summary of the result to the output file.

If <output> is omitted, it is derived by replacing the extension of
<input> with ".out". If <output> is a directory, <input>'s filename is
appended to it.

Examples:
  # Compile a program
  dws compile program.src

  # Compile with an explicit output path
  dws compile program.src build/program.out`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		os.Exit(runCompile(args, verbose, os.Stdout, os.Stderr))
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
}

// runCompile is the testable body of the compile command: it returns
// the process exit code instead of calling os.Exit itself.
func runCompile(args []string, verbose bool, stdout, stderr io.Writer) int {
	input := args[0]

	info, err := os.Stat(input)
	if err != nil || info.IsDir() {
		fmt.Fprintf(stderr, "Error: input file %s does not exist\n", input)
		return ExitInvalidArguments
	}

	output := deriveOutputPath(input, args[1:])

	content, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to read file %s: %v\n", input, err)
		return ExitIOError
	}
	source := string(content)

	if verbose {
		fmt.Fprintf(stderr, "Compiling %s...\n", input)
	}

	result := frontend.Compile(source)
	for _, w := range result.Warnings {
		fmt.Fprintf(stderr, "Warning: %s\n", w)
	}
	if len(result.Diags) > 0 {
		reportDiags(stderr, result.Diags, source, input)
		return stageExitCode(result.Stage)
	}

	if err := os.WriteFile(output, []byte(describeProgram(result.Program)), 0o644); err != nil {
		fmt.Fprintf(stderr, "Error: failed to write %s: %v\n", output, err)
		return ExitIOError
	}

	if verbose {
		fmt.Fprintf(stderr, "Wrote %s\n", output)
	}
	fmt.Fprintf(stdout, "compiled %s\n", input)
	return ExitSuccess
}

// deriveOutputPath applies the output rules: an omitted output becomes
// the input with its extension replaced by ".out"; a directory output
// has the input's filename appended.
func deriveOutputPath(input string, rest []string) string {
	if len(rest) == 0 {
		ext := filepath.Ext(input)
		return strings.TrimSuffix(input, ext) + ".out"
	}
	output := rest[0]
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, filepath.Base(input))
	}
	return output
}

func stageExitCode(stage frontend.Stage) int {
	switch stage {
	case frontend.StageStripper:
		return ExitStripperError
	case frontend.StageLexer:
		return ExitLexerError
	case frontend.StageParser:
		return ExitParserError
	case frontend.StageSemantics:
		return ExitSemanticError
	default:
		return ExitSuccess
	}
}

// describeProgram renders the analyzed tree's shape: the program name,
// every global and local declaration with its resolved type, and each
// procedure's signature. The tree itself is an in-memory value consumed
// by downstream layers; this summary is the file artifact.
func describeProgram(p *semantic.Program) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "program %s\n", p.Name)
	for _, g := range p.Globals {
		fmt.Fprintf(&sb, "global %s: %s\n", g.Name, g.Type)
	}
	var writeProc func(pd *semantic.ProcDecl, indent string)
	writeProc = func(pd *semantic.ProcDecl, indent string) {
		params := make([]string, len(pd.Params))
		for i, prm := range pd.Params {
			params[i] = fmt.Sprintf("%s: %s", prm.Name, prm.Type)
		}
		fmt.Fprintf(&sb, "%sprocedure %s(%s): %s\n", indent, pd.Name, strings.Join(params, ", "), pd.ReturnType)
		for _, l := range pd.Locals {
			fmt.Fprintf(&sb, "%s  variable %s: %s\n", indent, l.Name, l.Type)
		}
		for _, nested := range pd.Procedures {
			writeProc(nested, indent+"  ")
		}
		fmt.Fprintf(&sb, "%s  statements: %d\n", indent, len(pd.Body))
	}
	for _, pd := range p.Procedures {
		writeProc(pd, "")
	}
	fmt.Fprintf(&sb, "statements: %d\n", len(p.Body))
	return sb.String()
}
