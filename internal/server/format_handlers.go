package server

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/format"
)

func (s *Server) textDocumentFormatting(
	context *glsp.Context,
	params *protocol.DocumentFormattingParams,
) ([]protocol.TextEdit, error) {
	s.remember(context)
	doc, ok := s.session.Document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	formatted := format.ClearText(format.Format(doc.Text, indentUnit(params.Options)))
	return format.LineEdits(doc.Text, formatted, nil), nil
}

func (s *Server) textDocumentRangeFormatting(
	context *glsp.Context,
	params *protocol.DocumentRangeFormattingParams,
) ([]protocol.TextEdit, error) {
	s.remember(context)
	doc, ok := s.session.Document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	formatted := format.ClearText(format.Format(doc.Text, indentUnit(params.Options)))
	from, to := params.Range.Start.Line, params.Range.End.Line
	return format.LineEdits(doc.Text, formatted, func(line uint32) bool {
		return line >= from && line <= to
	}), nil
}

func (s *Server) textDocumentOnTypeFormatting(
	context *glsp.Context,
	params *protocol.DocumentOnTypeFormattingParams,
) ([]protocol.TextEdit, error) {
	s.remember(context)
	if !s.session.View().Settings.OnTypeFormat {
		return nil, nil
	}
	doc, ok := s.session.Document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	formatted := format.Format(doc.Text, indentUnit(params.Options))
	current := params.Position.Line
	return format.LineEdits(doc.Text, formatted, func(line uint32) bool {
		return line == current
	}), nil
}

// indentUnit derives one indentation level from the client's formatting
// options. Tabs when insertSpaces is off, else tabSize spaces (default 4).
func indentUnit(options protocol.FormattingOptions) string {
	if insertSpaces, ok := options["insertSpaces"].(bool); ok && !insertSpaces {
		return "\t"
	}
	size := 4
	if tabSize, ok := options["tabSize"].(float64); ok && tabSize > 0 {
		size = int(tabSize)
	}
	return strings.Repeat(" ", size)
}
