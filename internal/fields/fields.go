// Package fields extracts field entries from taskguide definition payloads
// and resolves case handler targets to those payloads on disk.
package fields

import (
	"regexp"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/scope"
)

// Field is a single entry of a definition payload. Name is always present;
// Type and Title may be empty.
type Field struct {
	Name  string
	Type  string
	Title string
}

var (
	nameRe  = regexp.MustCompile(`\bName="([^"]*)"`)
	typeRe  = regexp.MustCompile(`\bType="([^"]*)"`)
	titleRe = regexp.MustCompile(`\bTitle="([^"]*)"`)
)

// Extract scans a definition payload for field entries. An entry is any
// line carrying a non-empty Name attribute; Type and Title are taken from
// the same line when present. Extraction never fails: malformed lines are
// skipped.
func Extract(payload string) []Field {
	var out []Field
	for _, line := range scope.Lines(payload) {
		m := nameRe.FindStringSubmatch(line)
		if m == nil || m[1] == "" {
			continue
		}
		f := Field{Name: m[1]}
		if t := typeRe.FindStringSubmatch(line); t != nil {
			f.Type = t[1]
		}
		if t := titleRe.FindStringSubmatch(line); t != nil {
			f.Title = t[1]
		}
		out = append(out, f)
	}
	return out
}
