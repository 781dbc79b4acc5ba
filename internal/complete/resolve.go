package complete

import (
	"encoding/json"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/session"
)

// Source names the index that produced a completion item.
type Source string

const (
	SourceStep Source = "step"
	SourcePage Source = "page"
)

// Tag travels in a completion item's Data field and routes the resolve
// request back to the producing index. Key identifies the entry within
// that index.
type Tag struct {
	Source Source `json:"source"`
	Key    string `json:"key,omitempty"`
}

// DecodeTag recovers a Tag from an item's Data field. Data arrives as raw
// JSON shapes after a protocol round trip, so decoding goes through a
// marshal cycle. Items without a well-formed tag report false.
func DecodeTag(data any) (Tag, bool) {
	if data == nil {
		return Tag{}, false
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Tag{}, false
	}
	var tag Tag
	if err := json.Unmarshal(raw, &tag); err != nil {
		return Tag{}, false
	}
	if tag.Source == "" {
		return Tag{}, false
	}
	return tag, true
}

// Resolve enriches a completion item by routing it to the index that
// produced it. Items without a tag, with an unknown tag source or with a
// key the index no longer knows come back unmodified.
func Resolve(v session.View, item *protocol.CompletionItem) *protocol.CompletionItem {
	tag, ok := DecodeTag(item.Data)
	if !ok {
		return item
	}
	switch tag.Source {
	case SourceStep:
		if v.Steps != nil {
			if out := v.Steps.GetCompletionResolve(item); out != nil {
				return out
			}
		}
	case SourcePage:
		if v.Pages != nil {
			if out := v.Pages.GetCompletionResolve(item); out != nil {
				return out
			}
		}
	}
	return item
}
