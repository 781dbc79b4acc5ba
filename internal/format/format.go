// Package format reindents feature text and aligns data tables. Everything
// here is pure text transformation; protocol edits are derived separately.
package format

import (
	"strings"
	"unicode/utf8"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/scope"
)

// indentRule pins a line-leading keyword to a depth in indent units.
type indentRule struct {
	prefix string
	level  int
}

var indentRules = []indentRule{
	{"Feature:", 0},
	{"Ability", 0},
	{"Business Need", 0},
	{"Rule:", 1},
	{"Background:", 1},
	{"Scenario Outline:", 1},
	{"Scenario:", 1},
	{"Examples:", 2},
	{"Given", 2},
	{"When", 2},
	{"Then", 2},
	{"And", 2},
	{"But", 2},
	{"*", 2},
	{"|", 3},
	{`"""`, 3},
}

const (
	kindBlank = iota
	kindKeyword
	kindRelative
	kindPlain
	kindRaw
)

type lineInfo struct {
	kind  int
	level int
	table bool
}

func levelFor(trimmed string) (indentRule, bool) {
	for _, rule := range indentRules {
		if strings.HasPrefix(trimmed, rule.prefix) {
			return rule, true
		}
	}
	return indentRule{}, false
}

// analyze assigns every line an indent level. Docstring content between
// `"""` fences is marked raw and never touched. Tags and comments line up
// with the construct they annotate, so their level comes from the next
// keyword line, falling back to the previous one.
func analyze(lines []string) []lineInfo {
	infos := make([]lineInfo, len(lines))
	docstring := false
	last := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		fence := strings.HasPrefix(trimmed, `"""`)
		if docstring && !fence {
			infos[i] = lineInfo{kind: kindRaw}
			continue
		}
		if fence {
			docstring = !docstring
		}
		switch {
		case trimmed == "":
			infos[i] = lineInfo{kind: kindBlank}
		case strings.HasPrefix(trimmed, "@"), strings.HasPrefix(trimmed, "#"):
			infos[i] = lineInfo{kind: kindRelative, level: last}
		default:
			rule, ok := levelFor(trimmed)
			if !ok {
				infos[i] = lineInfo{kind: kindPlain, level: last}
				continue
			}
			infos[i] = lineInfo{kind: kindKeyword, level: rule.level, table: rule.prefix == "|"}
			last = rule.level
		}
	}

	next := -1
	for i := len(infos) - 1; i >= 0; i-- {
		switch infos[i].kind {
		case kindKeyword:
			next = infos[i].level
		case kindRelative:
			if next >= 0 {
				infos[i].level = next
			}
		}
	}
	return infos
}

// Format reindents text using unit as one indentation level and aligns
// consecutive table rows. Line count and line endings are preserved.
func Format(text, unit string) string {
	eol := "\n"
	if strings.Contains(text, "\r\n") {
		eol = "\r\n"
	}
	lines := scope.Lines(text)
	infos := analyze(lines)

	out := make([]string, len(lines))
	for i, line := range lines {
		switch infos[i].kind {
		case kindRaw:
			out[i] = line
		case kindBlank:
			out[i] = ""
		default:
			out[i] = strings.Repeat(unit, infos[i].level) + strings.TrimLeft(line, " \t")
		}
	}
	alignTables(out, infos)
	return strings.Join(out, eol)
}

// ClearText strips trailing spaces and tabs from every line. Line count
// and line endings are preserved.
func ClearText(text string) string {
	eol := "\n"
	if strings.Contains(text, "\r\n") {
		eol = "\r\n"
	}
	lines := scope.Lines(text)
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return strings.Join(lines, eol)
}

func alignTables(lines []string, infos []lineInfo) {
	start := -1
	for i := 0; i <= len(lines); i++ {
		if i < len(lines) && infos[i].table {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			alignRun(lines[start:i])
			start = -1
		}
	}
}

// alignRun pads every cell of a run of table rows to the widest cell of
// its column.
func alignRun(rows []string) {
	cells := make([][]string, len(rows))
	var widths []int
	for i, row := range rows {
		cells[i] = splitRow(strings.TrimLeft(row, " \t"))
		for c, cell := range cells[i] {
			if c == len(widths) {
				widths = append(widths, 0)
			}
			if n := utf8.RuneCountInString(cell); n > widths[c] {
				widths[c] = n
			}
		}
	}
	for i, row := range rows {
		if len(cells[i]) == 0 {
			continue
		}
		indent := row[:len(row)-len(strings.TrimLeft(row, " \t"))]
		var b strings.Builder
		b.WriteString(indent)
		b.WriteByte('|')
		for c, cell := range cells[i] {
			b.WriteByte(' ')
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[c]-utf8.RuneCountInString(cell)))
			b.WriteString(" |")
		}
		rows[i] = b.String()
	}
}

// splitRow breaks a table row into trimmed cells. A backslash escapes the
// following character, so `\|` stays inside its cell.
func splitRow(row string) []string {
	var cells []string
	var cell strings.Builder
	escaped := false
	for _, r := range row[1:] {
		switch {
		case escaped:
			cell.WriteRune(r)
			escaped = false
		case r == '\\':
			cell.WriteRune(r)
			escaped = true
		case r == '|':
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteRune(r)
		}
	}
	if rest := strings.TrimSpace(cell.String()); rest != "" {
		cells = append(cells, rest)
	}
	return cells
}
