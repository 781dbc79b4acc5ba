package format

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/scope"
)

// LineEdits diffs two texts of equal line count and returns one full-line
// edit per changed line. When keep is non-nil, only lines it accepts are
// edited; reindenting stays consistent because the formatted text is still
// computed from the whole document.
func LineEdits(before, after string, keep func(line uint32) bool) []protocol.TextEdit {
	oldLines := scope.Lines(before)
	newLines := scope.Lines(after)
	var edits []protocol.TextEdit
	for i := range oldLines {
		if i >= len(newLines) {
			break
		}
		if oldLines[i] == newLines[i] {
			continue
		}
		line := uint32(i)
		if keep != nil && !keep(line) {
			continue
		}
		edits = append(edits, protocol.TextEdit{
			Range: protocol.Range{
				Start: protocol.Position{Line: line, Character: 0},
				End:   protocol.Position{Line: line, Character: uint32(scope.UTF16Len(oldLines[i]))},
			},
			NewText: newLines[i],
		})
	}
	return edits
}
