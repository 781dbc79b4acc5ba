// Package steps builds an immutable index of cucumber step definitions and
// answers completion, validation and definition queries against it.
package steps

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/smacker/go-tree-sitter/javascript"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/complete"
	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/parser"
	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/scope"
	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/session"
	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/uri"
)

// stepQuery captures the pattern argument of step definition calls, both
// bare Given('...') and member cucumber.defineStep('...') forms.
const stepQuery = `
(call_expression
  function: (identifier) @func
  arguments: (arguments . [(string) (template_string) (regex)] @target)
  (#match? @func "^(Given|When|Then|And|But|defineStep)$"))
(call_expression
  function: (member_expression
    property: (property_identifier) @func)
  arguments: (arguments . [(string) (template_string) (regex)] @target)
  (#match? @func "^(Given|When|Then|And|But|defineStep)$"))
`

var parsers = parser.NewParserPool(4, javascript.GetLanguage())

// stepLineRe recognizes gherkin step lines: indent, keyword, step text.
var stepLineRe = regexp.MustCompile(`^(\s*)(Given|When|Then|And|But|\*)(?:\s+(.*?))?\s*$`)

// Step is one indexed step definition.
type Step struct {
	Key    string
	Text   string
	Re     *regexp.Regexp
	Prefix *regexp.Regexp // nil for regex-literal steps
	File   string
	Line   uint32
	Col    uint32
}

// offers reports whether typed step text could still grow into a match for
// this step. Regex-literal steps have no prefix matcher and fall back to a
// full match or a literal prefix of their display text.
func (s *Step) offers(typed string) bool {
	if typed == "" {
		return true
	}
	if s.Prefix != nil {
		return s.Prefix.MatchString(typed)
	}
	if s.Re.MatchString(typed) {
		return true
	}
	return strings.HasPrefix(strings.ToLower(s.Text), strings.ToLower(typed))
}

// Index is an immutable snapshot of every step definition matched by the
// configured glob patterns. Rebuilds produce a new Index; an Index is never
// mutated after construction.
type Index struct {
	root  string
	steps []Step
	byKey map[string]int
}

// NewIndex scans the workspace for step definition files and builds the
// snapshot. Unreadable files and unparsable patterns are logged and
// skipped; NewIndex never fails.
func NewIndex(root string, patterns []string) *Index {
	idx := &Index{root: root, byKey: make(map[string]int)}
	if root == "" {
		return idx
	}
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(os.DirFS(root), pattern)
		if err != nil {
			log.Printf("Invalid step pattern %q: %v", pattern, err)
			continue
		}
		for _, rel := range matches {
			path := filepath.Join(root, filepath.FromSlash(rel))
			data, err := os.ReadFile(path)
			if err != nil {
				log.Printf("Failed to read step definitions from %s: %v", path, err)
				continue
			}
			idx.addFile(path, data, seen)
		}
	}
	for i := range idx.steps {
		idx.byKey[idx.steps[i].Key] = i
	}
	log.Printf("Step index built: %d steps from %d patterns", len(idx.steps), len(patterns))
	return idx
}

func (idx *Index) addFile(path string, data []byte, seen map[string]bool) {
	matches, err := parsers.Parse(data, []byte(stepQuery))
	if err != nil {
		log.Printf("Failed to parse %s: %v", path, err)
		return
	}
	for _, m := range matches {
		lit, ok := parsePattern(m.Content)
		if !ok || seen[lit.Display] {
			continue
		}
		re, err := compileExpression(lit.Source, lit.IsRegex)
		if err != nil {
			log.Printf("Skipping step in %s: %v", path, err)
			continue
		}
		seen[lit.Display] = true
		idx.steps = append(idx.steps, Step{
			Key:    fmt.Sprintf("%s:%d", path, m.Row),
			Text:   lit.Display,
			Re:     re,
			Prefix: compilePrefix(lit.Source, lit.IsRegex),
			File:   path,
			Line:   m.Row,
			Col:    m.Col,
		})
	}
}

// Len reports the number of indexed steps.
func (idx *Index) Len() int {
	return len(idx.steps)
}

// GetCompletion offers indexed steps on gherkin step lines. A step stays in
// the list while the text typed after the keyword is still a prefix of
// something its expression accepts; an empty remainder offers every step.
func (idx *Index) GetCompletion(line string, pos protocol.Position) []protocol.CompletionItem {
	locs := stepLineRe.FindStringSubmatchIndex(line)
	if locs == nil {
		return nil
	}
	cursor := scope.ByteOffset(line, pos.Character)
	typed := ""
	if locs[6] >= 0 && cursor > locs[6] {
		typed = line[locs[6]:cursor]
	}
	typed = strings.TrimSpace(typed)

	kind := protocol.CompletionItemKindFunction
	var items []protocol.CompletionItem
	for i := range idx.steps {
		s := &idx.steps[i]
		if !s.offers(typed) {
			continue
		}
		items = append(items, protocol.CompletionItem{
			Label:      s.Text,
			Kind:       &kind,
			InsertText: &s.Text,
			Data:       complete.Tag{Source: complete.SourceStep, Key: s.Key},
		})
	}
	return items
}

// GetCompletionResolve enriches a step item with where it is defined. Items
// whose key is no longer indexed report nil.
func (idx *Index) GetCompletionResolve(item *protocol.CompletionItem) *protocol.CompletionItem {
	tag, ok := complete.DecodeTag(item.Data)
	if !ok || tag.Source != complete.SourceStep {
		return nil
	}
	i, ok := idx.byKey[tag.Key]
	if !ok {
		return nil
	}
	s := &idx.steps[i]
	rel := s.File
	if r, err := filepath.Rel(idx.root, s.File); err == nil {
		rel = r
	}
	detail := fmt.Sprintf("%s:%d", filepath.Base(s.File), s.Line+1)
	item.Detail = &detail
	item.Documentation = fmt.Sprintf("Defined in %s:%d", rel, s.Line+1)
	return item
}

// Validate flags gherkin step lines matching no indexed step. Case handler
// declarations are valid regardless of the index contents.
func (idx *Index) Validate(line string, lineNum uint32) []protocol.Diagnostic {
	m := stepLineRe.FindStringSubmatch(line)
	if m == nil || m[3] == "" {
		return nil
	}
	if _, ok := scope.ParseCaseHandler(line, int(lineNum)); ok {
		return nil
	}
	remainder := m[3]
	for i := range idx.steps {
		if idx.steps[i].Re.MatchString(remainder) {
			return nil
		}
	}
	severity := protocol.DiagnosticSeverityWarning
	source := "cucumber"
	return []protocol.Diagnostic{{
		Range: protocol.Range{
			Start: protocol.Position{Line: lineNum, Character: uint32(scope.UTF16Len(m[1]))},
			End:   protocol.Position{Line: lineNum, Character: uint32(scope.UTF16Len(strings.TrimRight(line, " \t")))},
		},
		Severity: &severity,
		Source:   &source,
		Message:  fmt.Sprintf("Was unable to find step for %q", remainder),
	}}
}

// GetDefinition jumps from a gherkin step line to the first matching step
// definition.
func (idx *Index) GetDefinition(line string, char uint32) *protocol.Location {
	m := stepLineRe.FindStringSubmatch(line)
	if m == nil || m[3] == "" {
		return nil
	}
	for i := range idx.steps {
		s := &idx.steps[i]
		if !s.Re.MatchString(m[3]) {
			continue
		}
		return &protocol.Location{
			URI: uri.FromPath(s.File),
			Range: protocol.Range{
				Start: protocol.Position{Line: s.Line, Character: s.Col},
				End:   protocol.Position{Line: s.Line, Character: s.Col},
			},
		}
	}
	return nil
}

// GetFeaturePosition is part of the provider surface; step definitions have
// no page reference regions.
func (idx *Index) GetFeaturePosition(line string, char uint32) *session.FeaturePosition {
	return nil
}

// ValidateConfiguration checks step patterns against the workspace without
// building an index: patterns that do not compile and patterns matching no
// files are reported.
func ValidateConfiguration(root string, patterns []string) []protocol.Diagnostic {
	var out []protocol.Diagnostic
	severity := protocol.DiagnosticSeverityWarning
	source := "cucumber"
	for _, pattern := range patterns {
		var message string
		matches, err := doublestar.Glob(os.DirFS(root), pattern)
		switch {
		case err != nil:
			message = fmt.Sprintf("Invalid step pattern %q: %v", pattern, err)
		case len(matches) == 0:
			message = fmt.Sprintf("No step definition files match %q", pattern)
		default:
			continue
		}
		out = append(out, protocol.Diagnostic{
			Range:    protocol.Range{Start: protocol.Position{}, End: protocol.Position{}},
			Severity: &severity,
			Source:   &source,
			Message:  message,
		})
	}
	return out
}
