package diagnose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/session"
)

// lineValidator flags every line whose text contains its needle.
type lineValidator struct {
	needle  string
	message string
}

func (l *lineValidator) GetCompletion(string, protocol.Position) []protocol.CompletionItem {
	return nil
}

func (l *lineValidator) GetCompletionResolve(*protocol.CompletionItem) *protocol.CompletionItem {
	return nil
}

func (l *lineValidator) Validate(line string, num uint32) []protocol.Diagnostic {
	if l.needle == "" || !strings.Contains(line, l.needle) {
		return nil
	}
	return []protocol.Diagnostic{{
		Range:   protocol.Range{Start: protocol.Position{Line: num}, End: protocol.Position{Line: num}},
		Message: l.message,
	}}
}

func (l *lineValidator) GetDefinition(string, uint32) *protocol.Location { return nil }

func (l *lineValidator) GetFeaturePosition(string, uint32) *session.FeaturePosition { return nil }

func TestValidateStepsOwnFlaggedLines(t *testing.T) {
	v := session.View{
		Steps: &lineValidator{needle: "When", message: "unknown step"},
		Pages: &lineValidator{needle: "When", message: "unknown page"},
	}
	got := Validate(v, "Feature: f\nWhen broken\n")
	require.Len(t, got, 1)
	assert.Equal(t, "unknown step", got[0].Message)
	assert.Equal(t, uint32(1), got[0].Range.Start.Line)
}

func TestValidatePagesCoverUnownedLines(t *testing.T) {
	v := session.View{
		Steps: &lineValidator{needle: "When", message: "unknown step"},
		Pages: &lineValidator{needle: "Then", message: "unknown page"},
	}
	got := Validate(v, "When broken\nThen \"page\".\"object\"\n")
	require.Len(t, got, 2)
	assert.Equal(t, "unknown step", got[0].Message)
	assert.Equal(t, "unknown page", got[1].Message)
}

func TestValidateUnconfiguredIndexesSkipped(t *testing.T) {
	assert.Empty(t, Validate(session.View{}, "When broken\n"))

	v := session.View{Pages: &lineValidator{needle: "When", message: "unknown page"}}
	got := Validate(v, "When broken\n")
	require.Len(t, got, 1)
	assert.Equal(t, "unknown page", got[0].Message)
}

func TestValidateCleanDocument(t *testing.T) {
	v := session.View{
		Steps: &lineValidator{needle: "zzz", message: "unknown step"},
		Pages: &lineValidator{needle: "zzz", message: "unknown page"},
	}
	assert.Empty(t, Validate(v, "Feature: f\nScenario: s\n"))
}
