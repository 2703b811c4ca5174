package cmd

import (
	"fmt"
	"io"

	"github.com/cwbudde/dws-front/internal/diag"
	"github.com/cwbudde/dws-front/internal/frontend"
)

// reportDiags renders every pipeline diagnostic in the caret-pointer
// format, with the offending source line when a position is known.
func reportDiags(w io.Writer, diags []frontend.Diag, source, filename string) {
	out := make([]*diag.Diagnostic, len(diags))
	for i, d := range diags {
		out[i] = diag.New(d.Pos, d.Message, source, filename)
	}
	fmt.Fprintln(w, diag.FormatAll(out, false))
}
