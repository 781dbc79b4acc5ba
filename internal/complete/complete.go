// Package complete aggregates completion items from the in-document scope,
// the taskguide field cross-reference and the configured index snapshots.
package complete

import (
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/fields"
	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/scope"
	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/session"
)

// Trigger words after which case handler names are offered.
var handlerTriggers = map[string]bool{
	"case":      true,
	"taskguide": true,
}

// Items builds the completion list for a cursor position. Sources are
// appended in a fixed order: case handler names, taskguide fields, page
// index entries, step index entries. Every item receives a sequential
// SortText so clients keep that order.
func Items(v session.View, text string, pos protocol.Position) []protocol.CompletionItem {
	lines := scope.Lines(text)
	if int(pos.Line) >= len(lines) {
		return nil
	}
	line := lines[pos.Line]
	prefix := line[:scope.ByteOffset(line, pos.Character)]
	sc := scope.Resolve(text, int(pos.Line))

	var items []protocol.CompletionItem
	items = append(items, handlerItems(sc, prefix)...)
	items = append(items, fieldItems(v.Root, sc, prefix)...)
	if v.Pages != nil && v.Pages.GetFeaturePosition(line, pos.Character) != nil {
		items = append(items, v.Pages.GetCompletion(line, pos)...)
	}
	if v.Steps != nil {
		items = append(items, v.Steps.GetCompletion(line, pos)...)
	}

	for i := range items {
		sortText := fmt.Sprintf("%05d", i)
		items[i].SortText = &sortText
	}
	return items
}

// splitPrefix breaks the text before the cursor into the last complete
// token and the partial token under the cursor. After whitespace the
// partial is empty and the trigger is the final word.
func splitPrefix(prefix string) (trigger, partial string) {
	trimmed := strings.TrimRight(prefix, " \t")
	tokens := strings.Fields(trimmed)
	if len(prefix) > len(trimmed) || len(trimmed) == 0 {
		if len(tokens) > 0 {
			trigger = tokens[len(tokens)-1]
		}
		return trigger, ""
	}
	partial = tokens[len(tokens)-1]
	if len(tokens) > 1 {
		trigger = tokens[len(tokens)-2]
	}
	return trigger, partial
}

// handlerItems offers one item per in-scope handler declaration after a
// trigger word, in document order. With the cursor directly behind the
// trigger word itself, the item re-inserts the word so replacing it still
// yields valid syntax.
func handlerItems(sc scope.Scope, prefix string) []protocol.CompletionItem {
	trigger, partial := splitPrefix(prefix)
	reprefix := ""
	if !handlerTriggers[trigger] {
		if !handlerTriggers[partial] {
			return nil
		}
		reprefix = partial
		partial = ""
	}
	kind := protocol.CompletionItemKindClass
	var items []protocol.CompletionItem
	for _, h := range sc.Handlers {
		if !matchesPartial(h.Name, partial) {
			continue
		}
		insert := h.Name
		if reprefix != "" {
			insert = reprefix + " " + h.Name
		}
		item := protocol.CompletionItem{
			Label:      h.Name,
			Kind:       &kind,
			InsertText: strPtr(insert),
		}
		if h.Target != "" {
			item.Detail = strPtr(string(h.Bind) + " " + h.Target)
		}
		items = append(items, item)
	}
	return items
}

// fieldItems offers taskguide fields when the token under the cursor is
// `<handler>.` for a bound in-scope handler. The earliest declaration of a
// name wins when duplicates exist.
func fieldItems(root string, sc scope.Scope, prefix string) []protocol.CompletionItem {
	trimmed := strings.TrimRight(prefix, " \t")
	if len(prefix) > len(trimmed) || len(trimmed) == 0 {
		return nil
	}
	tokens := strings.Fields(trimmed)
	token := tokens[len(tokens)-1]
	dot := strings.LastIndex(token, ".")
	if dot <= 0 {
		return nil
	}
	stem, partial := token[:dot], token[dot+1:]

	var handler *scope.CaseHandler
	for i := range sc.Handlers {
		if sc.Handlers[i].Name == stem && sc.Handlers[i].Target != "" {
			handler = &sc.Handlers[i]
			break
		}
	}
	if handler == nil {
		return nil
	}

	kind := protocol.CompletionItemKindField
	var items []protocol.CompletionItem
	for _, f := range fields.Lookup(root, *handler) {
		if !matchesPartial(f.Name, partial) {
			continue
		}
		item := protocol.CompletionItem{
			Label:      f.Name,
			Kind:       &kind,
			InsertText: strPtr(f.Name),
		}
		if f.Type != "" {
			item.Detail = strPtr(f.Type)
		}
		if f.Title != "" {
			item.Documentation = f.Title
		}
		items = append(items, item)
	}
	return items
}

func matchesPartial(name, partial string) bool {
	return partial == "" || strings.HasPrefix(strings.ToLower(name), strings.ToLower(partial))
}

func strPtr(s string) *string {
	return &s
}
