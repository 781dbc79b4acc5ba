// Package scope locates the Background and Scenario regions that apply to a
// cursor position in a feature document and collects the case handler
// declarations visible inside them.
package scope

import (
	"regexp"
	"strings"
)

// Bind describes how a case handler declaration is bound to its target.
type Bind string

const (
	BindNone      Bind = ""
	BindTaskguide Bind = "taskguide"
	BindWith      Bind = "with"
	BindIs        Bind = "is"
)

// CaseHandler is one `Given case <name> ...` declaration.
type CaseHandler struct {
	Name   string
	Bind   Bind
	Target string
	Line   int
}

// Span is a closed line interval. The zero value is not meaningful; use
// Absent for a span that does not exist.
type Span struct {
	Start int
	End   int
}

// Absent marks a region that could not be located.
var Absent = Span{-1, -1}

func (s Span) Valid() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// Contains reports whether line falls inside the span. An absent span
// contains nothing.
func (s Span) Contains(line int) bool {
	return s.Valid() && line >= s.Start && line <= s.End
}

// Scope is the result of resolving a cursor position against a document.
type Scope struct {
	Scenario   Span
	Background Span
	Handlers   []CaseHandler
}

var caseRe = regexp.MustCompile(`^Given\s+case\s+(\S+)(?:\s+(?:with\s+taskguide\s+(\S+)|with\s+(\S+)|is\s+(\S+)))?\s*$`)

// ParseCaseHandler parses a single line as a case handler declaration.
// The line is trimmed first; num becomes the handler's Line.
func ParseCaseHandler(line string, num int) (CaseHandler, bool) {
	m := caseRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return CaseHandler{}, false
	}
	h := CaseHandler{Name: m[1], Line: num}
	switch {
	case m[2] != "":
		h.Bind, h.Target = BindTaskguide, m[2]
	case m[3] != "":
		h.Bind, h.Target = BindWith, m[3]
	case m[4] != "":
		h.Bind, h.Target = BindIs, m[4]
	}
	return h, true
}

// Resolve computes the scenario and background spans for a request at the
// given line and collects every case handler declaration falling inside
// either span, in document order. Duplicate names are kept as distinct
// entries.
func Resolve(text string, line int) Scope {
	lines := Lines(text)
	if line < 0 || len(lines) == 0 {
		return Scope{Scenario: Absent, Background: Absent}
	}
	if line >= len(lines) {
		line = len(lines) - 1
	}

	firstScenario := -1
	for i, l := range lines {
		if isScenario(strings.TrimSpace(l)) {
			firstScenario = i
			break
		}
	}

	scenarioStart := -1
	backgroundStart := -1
	for i := line; i >= 0; i-- {
		t := strings.TrimSpace(lines[i])
		if isScenario(t) {
			if scenarioStart == -1 {
				scenarioStart = i
			}
			// The first scenario of the document does not cut off its own
			// Background; any later scenario does.
			if i != firstScenario {
				break
			}
			continue
		}
		if isBackground(t) && backgroundStart == -1 {
			backgroundStart = i
		}
	}

	scenario := Absent
	if scenarioStart != -1 {
		scenario = Span{scenarioStart, line}
	}
	background := Absent
	if backgroundStart != -1 && firstScenario != -1 && backgroundStart < firstScenario {
		background = Span{backgroundStart, firstScenario - 1}
	}

	var handlers []CaseHandler
	for i, l := range lines {
		if !scenario.Contains(i) && !background.Contains(i) {
			continue
		}
		if h, ok := ParseCaseHandler(l, i); ok {
			handlers = append(handlers, h)
		}
	}

	return Scope{Scenario: scenario, Background: background, Handlers: handlers}
}

func isScenario(trimmed string) bool {
	return strings.HasPrefix(trimmed, "Scenario")
}

func isBackground(trimmed string) bool {
	return strings.HasPrefix(trimmed, "Background")
}

// Lines splits a document into lines, treating \r\n and \n as equivalent.
// The number of lines is never altered by the split.
func Lines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// ByteOffset converts a UTF-16 code unit offset, as used by the protocol,
// into a byte offset within line. Offsets past the end of the line clamp
// to its length.
func ByteOffset(line string, character uint32) int {
	units := uint32(0)
	for i, r := range line {
		if units >= character {
			return i
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return len(line)
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}
