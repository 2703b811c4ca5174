// Package frontend wires the comment stripper, lexer, token cursor,
// parser, and semantic analyzer into the single pipeline described by
// the data flow: source text in, a typed program out, or a list of
// diagnostics from whichever stage failed first.
package frontend

import (
	"github.com/cwbudde/dws-front/internal/lexer"
	"github.com/cwbudde/dws-front/internal/parser"
	"github.com/cwbudde/dws-front/internal/semantic"
	"github.com/cwbudde/dws-front/internal/token"
)

// Stage identifies which pipeline phase produced a Result's diagnostics,
// used by callers (chiefly the CLI) to pick an exit code.
type Stage int

const (
	StageNone Stage = iota
	StageStripper
	StageLexer
	StageParser
	StageSemantics
)

// Diag is a stage-tagged diagnostic, uniform across the four layers that
// can fail (the stripper reports no position, so Pos is its zero value
// in that case).
type Diag struct {
	Stage   Stage
	Pos     token.Position
	Message string
}

// Result is the outcome of running the pipeline over one source file.
// Program is non-nil only when every stage succeeded. Warnings are
// non-fatal notices from the parser.
type Result struct {
	Program  *semantic.Program
	Stage    Stage
	Diags    []Diag
	Warnings []string
}

// Compile runs the full stripper -> lexer -> parser -> semantic pipeline
// over source. The first stage that reports any diagnostic halts the
// pipeline: later stages are not meaningful over a malformed tree.
func Compile(source string) *Result {
	lx, err := lexer.New(source)
	if err != nil {
		return &Result{Stage: StageStripper, Diags: []Diag{{Stage: StageStripper, Message: err.Error()}}}
	}
	tokens := lx.Tokenize()
	if lexErrs := lx.Errors(); len(lexErrs) > 0 {
		diags := make([]Diag, len(lexErrs))
		for i, e := range lexErrs {
			diags[i] = Diag{Stage: StageLexer, Pos: e.Pos, Message: e.Message}
		}
		return &Result{Stage: StageLexer, Diags: diags}
	}

	p := parser.New(tokens)
	prog := p.ParseProgram()
	if parseErrs := p.Errors(); len(parseErrs) > 0 {
		diags := make([]Diag, len(parseErrs))
		for i, e := range parseErrs {
			diags[i] = Diag{Stage: StageParser, Pos: e.Pos, Message: e.Error()}
		}
		return &Result{Stage: StageParser, Diags: diags}
	}

	analyzer := semantic.New()
	analyzed := analyzer.Analyze(prog)
	if semErrs := analyzer.Errors(); len(semErrs) > 0 {
		diags := make([]Diag, len(semErrs))
		for i, e := range semErrs {
			diags[i] = Diag{Stage: StageSemantics, Pos: e.Pos, Message: e.Message}
		}
		return &Result{Stage: StageSemantics, Diags: diags, Warnings: p.Warnings()}
	}

	return &Result{Program: analyzed, Warnings: p.Warnings()}
}
