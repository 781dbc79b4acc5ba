// Package diagnose merges per-line validation results from the configured
// index snapshots into one diagnostics list per document.
package diagnose

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/scope"
	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/session"
)

// Validate checks every line of a document against the step index first
// and the page index second. A line has at most one owner: when the step
// index reports anything for a line, the page index is not consulted for
// it. Unconfigured indexes are skipped entirely.
func Validate(v session.View, text string) []protocol.Diagnostic {
	var out []protocol.Diagnostic
	for i, line := range scope.Lines(text) {
		num := uint32(i)
		if v.Steps != nil {
			if diags := v.Steps.Validate(line, num); len(diags) > 0 {
				out = append(out, diags...)
				continue
			}
		}
		if v.Pages != nil {
			out = append(out, v.Pages.Validate(line, num)...)
		}
	}
	return out
}
