// Package session holds all mutable server state: the workspace root, the
// active settings, the current index snapshots and the open documents.
// State is owned by a single Session value so that tests and concurrent
// requests never observe partially applied configuration.
package session

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/settings"
)

// FeaturePosition describes where inside a page reference the cursor sits.
// HasObject distinguishes the object part of a reference from its page part.
type FeaturePosition struct {
	Page      string
	Object    string
	HasObject bool
}

// Provider is the query surface shared by the step and page indexes. A
// Provider is immutable once built; Session swaps whole snapshots in.
type Provider interface {
	GetCompletion(line string, pos protocol.Position) []protocol.CompletionItem
	GetCompletionResolve(item *protocol.CompletionItem) *protocol.CompletionItem
	Validate(line string, lineNum uint32) []protocol.Diagnostic
	GetDefinition(line string, char uint32) *protocol.Location
	GetFeaturePosition(line string, char uint32) *FeaturePosition
}

// View is a consistent snapshot of the session taken at the start of a
// request. Requests never read Session fields directly.
type View struct {
	Root     string
	Settings settings.Settings
	Steps    Provider
	Pages    Provider
}

// Session is safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	root     string
	settings settings.Settings
	steps    Provider
	pages    Provider
	docs     map[protocol.DocumentUri]*Document
}

func New() *Session {
	return &Session{
		settings: settings.Default(),
		docs:     make(map[protocol.DocumentUri]*Document),
	}
}

// View returns a snapshot of root, settings and index providers.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{
		Root:     s.root,
		Settings: s.settings,
		Steps:    s.steps,
		Pages:    s.pages,
	}
}

func (s *Session) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

func (s *Session) SetRoot(root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = root
}

// ReplaceSettings installs cfg wholesale. Settings never merge with the
// previous value.
func (s *Session) ReplaceSettings(cfg settings.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = cfg
}

// SwapSteps atomically replaces the step index snapshot. Passing nil clears
// it, which marks the step index as unconfigured.
func (s *Session) SwapSteps(p Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = p
}

// SwapPages atomically replaces the page index snapshot.
func (s *Session) SwapPages(p Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = p
}
