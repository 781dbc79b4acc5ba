package server

import (
	"log"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/pages"
	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/scheduler"
	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/settings"
	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/steps"
	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/uri"
)

func (s *Server) workspaceDidChangeConfiguration(
	context *glsp.Context,
	params *protocol.DidChangeConfigurationParams,
) error {
	s.remember(context)
	s.applySettings(context, params.Settings)
	return nil
}

// applySettings replaces the configuration wholesale, rebuilds the index
// snapshots it enables, reconciles the watch registry and re-validates
// every open document. A payload that does not decode leaves the previous
// configuration in place.
func (s *Server) applySettings(context *glsp.Context, payload any) {
	cfg, err := settings.Load(payload)
	if err != nil {
		log.Printf("Ignoring configuration: %v", err)
		return
	}
	s.session.ReplaceSettings(cfg)
	root := s.session.Root()

	if cfg.HasSteps() {
		s.session.SwapSteps(steps.NewIndex(root, cfg.Steps))
		s.publish(context, settingsURI(root), steps.ValidateConfiguration(root, cfg.Steps))
	} else {
		s.session.SwapSteps(nil)
	}
	if cfg.HasPages() {
		s.session.SwapPages(pages.NewIndex(root, cfg.Pages))
	} else {
		s.session.SwapPages(nil)
	}

	s.watches.Set(root, cfg.AllPatterns())
	s.validateOpenDocuments(context)
}

// onFileChange runs on the watch debounce goroutine. The rebuild itself is
// queued so events never overlap a rebuild already in flight.
func (s *Server) onFileChange(path string) {
	s.sched.Submit(scheduler.Task{
		Name: "rebuild " + filepath.Base(path),
		Execute: func() error {
			s.rebuildFor(path)
			return nil
		},
	})
}

// rebuildFor rebuilds whichever index owns the changed path. A path
// matching both the step and the page patterns rebuilds both, steps
// first.
func (s *Server) rebuildFor(path string) {
	v := s.session.View()
	if v.Root == "" {
		return
	}
	rel, err := filepath.Rel(v.Root, path)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	rebuilt := false
	for _, pattern := range v.Settings.Steps {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			log.Printf("Step source changed: %s", rel)
			s.session.SwapSteps(steps.NewIndex(v.Root, v.Settings.Steps))
			rebuilt = true
			break
		}
	}
	for _, pattern := range v.Settings.Pages {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			log.Printf("Page source changed: %s", rel)
			s.session.SwapPages(pages.NewIndex(v.Root, v.Settings.Pages))
			rebuilt = true
			break
		}
	}
	if rebuilt {
		s.validateOpenDocuments(s.connection())
	}
}

func settingsURI(root string) protocol.DocumentUri {
	return uri.FromPath(filepath.Join(root, ".vscode", "settings.json"))
}
