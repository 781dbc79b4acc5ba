// Package pages indexes page object files and recognizes page references
// of the form "page"."object" inside feature lines.
package pages

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
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

// objectQuery captures declared names in a page object file: variable
// declarations, object literal keys and class methods.
const objectQuery = `
(variable_declarator
  name: (identifier) @target)
(pair
  key: (property_identifier) @target)
(method_definition
  name: (property_identifier) @target)
`

var parsers = parser.NewParserPool(4, javascript.GetLanguage())

// Object is one declared name within a page file.
type Object struct {
	Name string
	Line uint32
	Col  uint32
}

// Page is one configured page: its source file and the objects it declares.
type Page struct {
	Name    string
	File    string
	Objects []Object
}

// Index is an immutable snapshot of the configured pages. Rebuilds produce
// a new Index.
type Index struct {
	root  string
	names []string
	pages map[string]*Page
}

// NewIndex resolves every configured page glob and parses the first file it
// matches. Pages whose glob matches nothing are left out of the snapshot;
// references to them show up in validation. NewIndex never fails.
func NewIndex(root string, globs map[string]string) *Index {
	idx := &Index{root: root, pages: make(map[string]*Page)}
	if root == "" {
		return idx
	}
	names := make([]string, 0, len(globs))
	for name := range globs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		matches, err := doublestar.Glob(os.DirFS(root), globs[name])
		if err != nil {
			log.Printf("Invalid page pattern %q for page %q: %v", globs[name], name, err)
			continue
		}
		if len(matches) == 0 {
			log.Printf("No file matches page %q pattern %q", name, globs[name])
			continue
		}
		path := filepath.Join(root, filepath.FromSlash(matches[0]))
		page, err := loadPage(name, path)
		if err != nil {
			log.Printf("Failed to load page %q: %v", name, err)
			continue
		}
		idx.names = append(idx.names, name)
		idx.pages[name] = page
	}
	log.Printf("Page index built: %d of %d pages", len(idx.names), len(globs))
	return idx
}

func loadPage(name, path string) (*Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	matches, err := parsers.Parse(data, []byte(objectQuery))
	if err != nil {
		return nil, err
	}
	page := &Page{Name: name, File: path}
	seen := make(map[string]bool)
	for _, m := range matches {
		if seen[m.Content] {
			continue
		}
		seen[m.Content] = true
		page.Objects = append(page.Objects, Object{Name: m.Content, Line: m.Row, Col: m.Col})
	}
	return page, nil
}

// Len reports the number of indexed pages.
func (idx *Index) Len() int {
	return len(idx.names)
}

var (
	// A completed page part directly before an object part, as in `"page".`.
	pageBeforeRe = regexp.MustCompile(`"([^"]*)"\.$`)
	// A complete page reference pair.
	pageRefRe = regexp.MustCompile(`"([^"]*)"\."([^"]*)"`)
)

// GetFeaturePosition reports whether the cursor sits inside a page
// reference. Inside the first quoted part it is a page position; after
// `"page".` and an opening quote it is an object position. Outside quotes
// it reports nil.
func (idx *Index) GetFeaturePosition(line string, char uint32) *session.FeaturePosition {
	prefix := line[:scope.ByteOffset(line, char)]
	if strings.Count(prefix, `"`)%2 == 0 {
		return nil
	}
	open := strings.LastIndexByte(prefix, '"')
	partial := prefix[open+1:]
	before := prefix[:open]
	if strings.HasSuffix(before, `.`) {
		if m := pageBeforeRe.FindStringSubmatch(before); m != nil {
			return &session.FeaturePosition{Page: m[1], Object: partial, HasObject: true}
		}
	}
	return &session.FeaturePosition{Page: partial}
}

// GetCompletion offers page names inside the page part of a reference and
// object names inside the object part.
func (idx *Index) GetCompletion(line string, pos protocol.Position) []protocol.CompletionItem {
	fp := idx.GetFeaturePosition(line, pos.Character)
	if fp == nil {
		return nil
	}
	if fp.HasObject {
		page, ok := idx.pages[fp.Page]
		if !ok {
			return nil
		}
		kind := protocol.CompletionItemKindVariable
		var items []protocol.CompletionItem
		for i := range page.Objects {
			o := &page.Objects[i]
			if !strings.HasPrefix(strings.ToLower(o.Name), strings.ToLower(fp.Object)) {
				continue
			}
			items = append(items, protocol.CompletionItem{
				Label:      o.Name,
				Kind:       &kind,
				InsertText: &o.Name,
				Data:       complete.Tag{Source: complete.SourcePage, Key: page.Name + "/" + o.Name},
			})
		}
		return items
	}

	kind := protocol.CompletionItemKindModule
	var items []protocol.CompletionItem
	for _, name := range idx.names {
		if !strings.HasPrefix(strings.ToLower(name), strings.ToLower(fp.Page)) {
			continue
		}
		page := idx.pages[name]
		items = append(items, protocol.CompletionItem{
			Label:      page.Name,
			Kind:       &kind,
			InsertText: &page.Name,
			Data:       complete.Tag{Source: complete.SourcePage, Key: page.Name},
		})
	}
	return items
}

// GetCompletionResolve enriches a page or object item with its location in
// the page file.
func (idx *Index) GetCompletionResolve(item *protocol.CompletionItem) *protocol.CompletionItem {
	tag, ok := complete.DecodeTag(item.Data)
	if !ok || tag.Source != complete.SourcePage {
		return nil
	}
	name, object, hasObject := strings.Cut(tag.Key, "/")
	page, ok := idx.pages[name]
	if !ok {
		return nil
	}
	line := uint32(0)
	if hasObject {
		o := page.object(object)
		if o == nil {
			return nil
		}
		line = o.Line
	}
	rel := page.File
	if r, err := filepath.Rel(idx.root, page.File); err == nil {
		rel = r
	}
	detail := fmt.Sprintf("%s:%d", filepath.Base(page.File), line+1)
	item.Detail = &detail
	item.Documentation = fmt.Sprintf("Defined in %s:%d", rel, line+1)
	return item
}

// Validate flags complete "page"."object" references to unknown pages or
// unknown objects.
func (idx *Index) Validate(line string, lineNum uint32) []protocol.Diagnostic {
	var out []protocol.Diagnostic
	severity := protocol.DiagnosticSeverityWarning
	source := "cucumber"
	for _, loc := range pageRefRe.FindAllStringSubmatchIndex(line, -1) {
		pageName := line[loc[2]:loc[3]]
		objectName := line[loc[4]:loc[5]]
		page, ok := idx.pages[pageName]
		var message string
		var start, end int
		switch {
		case !ok:
			message = fmt.Sprintf("Was unable to find page %q", pageName)
			start, end = loc[2], loc[3]
		case page.object(objectName) == nil:
			message = fmt.Sprintf("Was unable to find page object %q for page %q", objectName, pageName)
			start, end = loc[4], loc[5]
		default:
			continue
		}
		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: lineNum, Character: uint32(scope.UTF16Len(line[:start]))},
				End:   protocol.Position{Line: lineNum, Character: uint32(scope.UTF16Len(line[:end]))},
			},
			Severity: &severity,
			Source:   &source,
			Message:  message,
		})
	}
	return out
}

// GetDefinition jumps from a page reference to the page file: the object's
// declaration when the cursor is in the object part, the top of the file
// when it is in the page part.
func (idx *Index) GetDefinition(line string, char uint32) *protocol.Location {
	fp := idx.GetFeaturePosition(line, char)
	if fp == nil {
		return nil
	}
	name := fp.Page
	if !fp.HasObject {
		name = currentToken(line, char, fp.Page)
	}
	page, ok := idx.pages[name]
	if !ok {
		return nil
	}
	var pos protocol.Position
	if fp.HasObject {
		o := page.object(currentToken(line, char, fp.Object))
		if o == nil {
			return nil
		}
		pos = protocol.Position{Line: o.Line, Character: o.Col}
	}
	return &protocol.Location{
		URI:   uri.FromPath(page.File),
		Range: protocol.Range{Start: pos, End: pos},
	}
}

func (p *Page) object(name string) *Object {
	for i := range p.Objects {
		if p.Objects[i].Name == name {
			return &p.Objects[i]
		}
	}
	return nil
}

// currentToken extends a partial object name to the full token when the
// cursor sits in the middle of it.
func currentToken(line string, char uint32, partial string) string {
	rest := line[scope.ByteOffset(line, char):]
	if end := strings.IndexByte(rest, '"'); end >= 0 {
		return partial + rest[:end]
	}
	return partial
}
