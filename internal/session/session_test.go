package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/settings"
)

func TestViewSnapshotIsStable(t *testing.T) {
	s := New()
	s.SetRoot("/ws")
	s.ReplaceSettings(settings.Settings{Steps: settings.StringList{"a/*.js"}})

	v := s.View()
	s.ReplaceSettings(settings.Settings{Steps: settings.StringList{"b/*.js"}})
	s.SetRoot("/other")

	assert.Equal(t, "/ws", v.Root)
	assert.Equal(t, settings.StringList{"a/*.js"}, v.Settings.Steps)
}

func TestSwapProviders(t *testing.T) {
	s := New()
	assert.Nil(t, s.View().Steps)
	assert.Nil(t, s.View().Pages)

	s.SwapSteps(nil)
	assert.Nil(t, s.View().Steps)
}

func TestDocumentLifecycle(t *testing.T) {
	s := New()
	s.OpenDocument("file:///a.feature", "Feature: a", 1)
	s.UpdateDocument("file:///a.feature", "Feature: a\nScenario: s", 2)

	doc, ok := s.Document("file:///a.feature")
	require.True(t, ok)
	assert.Equal(t, int32(2), doc.Version)
	assert.Contains(t, doc.Text, "Scenario")

	s.CloseDocument("file:///a.feature")
	_, ok = s.Document("file:///a.feature")
	assert.False(t, ok)
}

func TestUpdateUnopenedDocumentRegisters(t *testing.T) {
	s := New()
	s.UpdateDocument("file:///late.feature", "Feature: late", 1)
	_, ok := s.Document("file:///late.feature")
	assert.True(t, ok)
}

func TestDocumentsStableOrder(t *testing.T) {
	s := New()
	s.OpenDocument("file:///b.feature", "", 1)
	s.OpenDocument("file:///a.feature", "", 1)

	docs := s.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "file:///a.feature", string(docs[0].URI))
	assert.Equal(t, "file:///b.feature", string(docs[1].URI))
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.ReplaceSettings(settings.Settings{OnTypeFormat: true})
			s.OpenDocument("file:///x.feature", "text", 1)
		}()
		go func() {
			defer wg.Done()
			_ = s.View()
			_ = s.Documents()
		}()
	}
	wg.Wait()
}
