package session

import (
	"sort"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Document is one open text document. Documents are replaced, not mutated,
// so a pointer handed out by the session stays consistent.
type Document struct {
	URI     protocol.DocumentUri
	Text    string
	Version int32
}

// OpenDocument registers a document and returns it.
func (s *Session) OpenDocument(uri protocol.DocumentUri, text string, version int32) *Document {
	doc := &Document{URI: uri, Text: text, Version: version}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = doc
	return doc
}

// UpdateDocument replaces the stored text of an open document. Updating an
// unopened document registers it, which keeps the server tolerant of
// notifications arriving out of order.
func (s *Session) UpdateDocument(uri protocol.DocumentUri, text string, version int32) *Document {
	doc := &Document{URI: uri, Text: text, Version: version}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = doc
	return doc
}

// CloseDocument forgets an open document.
func (s *Session) CloseDocument(uri protocol.DocumentUri) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// Document returns the current state of an open document.
func (s *Session) Document(uri protocol.DocumentUri) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	return doc, ok
}

// Documents returns every open document in stable URI order.
func (s *Session) Documents() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}
