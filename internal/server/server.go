// Package server wires the language server protocol surface to the
// completion, diagnostic, definition and formatting components. All state
// lives in one session; handlers capture a snapshot of it per request.
package server

import (
	"log"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserv "github.com/tliron/glsp/server"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/scheduler"
	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/session"
	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/watch"
)

const serverName = "cucumber-lsp"

type Server struct {
	version string
	handler *protocol.Handler
	session *session.Session
	sched   *scheduler.Scheduler
	watches *watch.Registry

	// notify is the connection context captured from the most recent
	// handler call, so watch-driven rebuilds can publish diagnostics.
	notifyMu sync.Mutex
	notify   *glsp.Context

	// published caches the last diagnostics pushed per document so
	// identical results are not re-sent.
	diagMu    sync.Mutex
	published map[protocol.DocumentUri][]protocol.Diagnostic
}

// New builds a server around a fresh session. The watch registry and the
// rebuild scheduler start immediately; patterns are registered once the
// client pushes its configuration.
func New(version string) (*Server, error) {
	s := &Server{
		version:   version,
		session:   session.New(),
		sched:     scheduler.NewScheduler(16),
		published: make(map[protocol.DocumentUri][]protocol.Diagnostic),
	}

	watches, err := watch.NewRegistry(s.onFileChange)
	if err != nil {
		return nil, err
	}
	s.watches = watches
	s.sched.Run()

	s.handler = &protocol.Handler{
		Initialize:                      s.initialize,
		Initialized:                     s.initialized,
		Shutdown:                        s.shutdown,
		SetTrace:                        s.setTrace,
		WorkspaceDidChangeConfiguration: s.workspaceDidChangeConfiguration,
		TextDocumentDidOpen:             s.textDocumentDidOpen,
		TextDocumentDidChange:           s.textDocumentDidChange,
		TextDocumentDidClose:            s.textDocumentDidClose,
		TextDocumentCompletion:          s.textDocumentCompletion,
		CompletionItemResolve:           s.completionItemResolve,
		TextDocumentDefinition:          s.textDocumentDefinition,
		TextDocumentFormatting:          s.textDocumentFormatting,
		TextDocumentRangeFormatting:     s.textDocumentRangeFormatting,
		TextDocumentOnTypeFormatting:    s.textDocumentOnTypeFormatting,
	}

	return s, nil
}

// RunStdio serves the protocol over stdin/stdout until the client
// disconnects.
func (s *Server) RunStdio(debug bool) error {
	log.Printf("Starting %s %s", serverName, s.version)
	return glspserv.NewServer(s.handler, serverName, debug).RunStdio()
}

// Session exposes the server state to tests.
func (s *Server) Session() *session.Session {
	return s.session
}

// remember keeps the connection context of the current handler call so
// notifications can be sent outside any request, from watch-driven
// re-validation.
func (s *Server) remember(context *glsp.Context) {
	if context == nil {
		return
	}
	s.notifyMu.Lock()
	s.notify = context
	s.notifyMu.Unlock()
}

func (s *Server) connection() *glsp.Context {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	return s.notify
}
