package server

import (
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/uri"
)

func (s *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	s.remember(context)

	root := ""
	if params.RootURI != nil {
		if path, err := uri.ToPath(*params.RootURI); err == nil {
			root = path
		} else {
			log.Printf("Unusable root URI %q: %v", *params.RootURI, err)
		}
	}
	if root == "" && params.RootPath != nil {
		root = *params.RootPath
	}
	s.session.SetRoot(root)
	log.Printf("Root is %s", root)

	if params.InitializationOptions != nil {
		s.applySettings(context, params.InitializationOptions)
	}

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		ResolveProvider:   &protocol.True,
		TriggerCharacters: []string{" ", "."},
	}
	capabilities.DefinitionProvider = true
	capabilities.DocumentFormattingProvider = true
	capabilities.DocumentRangeFormattingProvider = true
	capabilities.DocumentOnTypeFormattingProvider = &protocol.DocumentOnTypeFormattingOptions{
		FirstTriggerCharacter: " ",
		MoreTriggerCharacter:  []string{"@", "#", ":"},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	s.remember(context)
	log.Println("Client initialized.")
	return nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	log.Println("Shutdown")
	err := s.watches.Close()
	s.sched.Stop()
	return err
}

func (s *Server) setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}
