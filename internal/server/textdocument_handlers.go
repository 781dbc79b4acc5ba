package server

import (
	"log"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/complete"
	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/pages"
	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/scope"
	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/steps"
)

func (s *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	s.remember(context)
	doc := s.session.OpenDocument(
		params.TextDocument.URI,
		params.TextDocument.Text,
		params.TextDocument.Version,
	)
	log.Printf("DidOpen: %s", doc.URI)

	// A document may be opened before any configuration arrived or after
	// sources changed while nothing was open. Repopulating both indexes
	// here is cheap and keeps them honest.
	v := s.session.View()
	if v.Settings.HasSteps() {
		s.session.SwapSteps(steps.NewIndex(v.Root, v.Settings.Steps))
	}
	if v.Settings.HasPages() {
		s.session.SwapPages(pages.NewIndex(v.Root, v.Settings.Pages))
	}

	s.validateDocument(context, doc)
	return nil
}

func (s *Server) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	s.remember(context)
	uri := params.TextDocument.URI

	text := ""
	if doc, ok := s.session.Document(uri); ok {
		text = doc.Text
	}
	for _, raw := range params.ContentChanges {
		switch change := raw.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = change.Text
		case protocol.TextDocumentContentChangeEvent:
			text = applyChange(text, change)
		default:
			log.Printf("Unexpected change event type %T", raw)
		}
	}

	doc := s.session.UpdateDocument(uri, text, params.TextDocument.Version)
	s.validateDocument(context, doc)
	return nil
}

func (s *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	s.remember(context)
	uri := params.TextDocument.URI
	log.Printf("Closed %s", uri)

	s.session.CloseDocument(uri)
	s.diagMu.Lock()
	delete(s.published, uri)
	s.diagMu.Unlock()
	return nil
}

func (s *Server) textDocumentCompletion(
	context *glsp.Context,
	params *protocol.CompletionParams,
) (any, error) {
	s.remember(context)
	doc, ok := s.session.Document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	items := complete.Items(s.session.View(), doc.Text, params.Position)
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

func (s *Server) completionItemResolve(
	context *glsp.Context,
	params *protocol.CompletionItem,
) (*protocol.CompletionItem, error) {
	s.remember(context)
	return complete.Resolve(s.session.View(), params), nil
}

// applyChange splices a ranged content change into text. Full sync is
// negotiated, so this only runs for clients that send ranges anyway.
func applyChange(text string, change protocol.TextDocumentContentChangeEvent) string {
	if change.Range == nil {
		return change.Text
	}
	start := textOffset(text, change.Range.Start)
	end := textOffset(text, change.Range.End)
	if start > len(text) || end > len(text) || start > end {
		return change.Text
	}
	return text[:start] + change.Text + text[end:]
}

// textOffset maps a protocol position to a byte offset. Line starts are
// found by scanning the raw text, so \r\n terminators keep their width; the
// \r itself does not count as line content.
func textOffset(text string, pos protocol.Position) int {
	offset := 0
	for line := uint32(0); line < pos.Line; line++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return len(text)
		}
		offset += nl + 1
	}
	lineText := text[offset:]
	if nl := strings.IndexByte(lineText, '\n'); nl >= 0 {
		lineText = lineText[:nl]
	}
	lineText = strings.TrimSuffix(lineText, "\r")
	return offset + scope.ByteOffset(lineText, pos.Character)
}
