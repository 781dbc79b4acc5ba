package server

import (
	"reflect"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/diagnose"
	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/session"
)

// validateDocument runs the diagnostic aggregation for one document and
// pushes the result.
func (s *Server) validateDocument(context *glsp.Context, doc *session.Document) {
	s.publish(context, doc.URI, diagnose.Validate(s.session.View(), doc.Text))
}

// validateOpenDocuments re-validates and re-publishes every open document,
// after an index rebuild.
func (s *Server) validateOpenDocuments(context *glsp.Context) {
	for _, doc := range s.session.Documents() {
		s.validateDocument(context, doc)
	}
}

// publish sends diagnostics for a URI unless they equal the last set
// published for it.
func (s *Server) publish(context *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	if context == nil {
		return
	}
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}

	s.diagMu.Lock()
	previous, seen := s.published[uri]
	if seen && reflect.DeepEqual(previous, diagnostics) {
		s.diagMu.Unlock()
		return
	}
	s.published[uri] = diagnostics
	s.diagMu.Unlock()

	context.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}
