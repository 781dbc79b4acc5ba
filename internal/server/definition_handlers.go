package server

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/scope"
)

// textDocumentDefinition resolves the symbol under the cursor: a step
// definition first, then a page reference, then an in-scope case handler
// declared in the same document. The first source that answers wins.
func (s *Server) textDocumentDefinition(
	context *glsp.Context,
	params *protocol.DefinitionParams,
) (any, error) {
	s.remember(context)
	doc, ok := s.session.Document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	lines := scope.Lines(doc.Text)
	if int(params.Position.Line) >= len(lines) {
		return nil, nil
	}
	line := lines[params.Position.Line]
	v := s.session.View()

	if v.Steps != nil {
		if loc := v.Steps.GetDefinition(line, params.Position.Character); loc != nil {
			return *loc, nil
		}
	}
	if v.Pages != nil {
		if loc := v.Pages.GetDefinition(line, params.Position.Character); loc != nil {
			return *loc, nil
		}
	}

	word := wordAt(line, params.Position.Character)
	if word == "" {
		return nil, nil
	}
	sc := scope.Resolve(doc.Text, int(params.Position.Line))
	for _, h := range sc.Handlers {
		if h.Name != word {
			continue
		}
		pos := protocol.Position{Line: uint32(h.Line), Character: 0}
		return protocol.Location{
			URI:   doc.URI,
			Range: protocol.Range{Start: pos, End: pos},
		}, nil
	}
	return nil, nil
}

// wordAt extracts the identifier-like token around a cursor position. A
// trailing field access (`Login.Username`) resolves to the handler part.
func wordAt(line string, char uint32) string {
	cursor := scope.ByteOffset(line, char)
	isWord := func(b byte) bool {
		return b == '_' || b >= '0' && b <= '9' ||
			b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
	}
	start := cursor
	for start > 0 && isWord(line[start-1]) {
		start--
	}
	end := cursor
	for end < len(line) && isWord(line[end]) {
		end++
	}
	return line[start:end]
}
