package steps

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// patternLiteral is a step pattern as written in a definition file.
type patternLiteral struct {
	Display string // shown in completion items
	Source  string // regex body or cucumber expression source
	IsRegex bool
}

// parsePattern classifies the raw literal captured from a definition call.
// The first byte distinguishes regex literals from string literals. Anchors
// are stripped from regex bodies; an i flag survives as an inline flag.
func parsePattern(raw string) (patternLiteral, bool) {
	if len(raw) < 2 {
		return patternLiteral{}, false
	}
	if raw[0] == '/' {
		body := raw[1:]
		idx := strings.LastIndexByte(body, '/')
		if idx < 0 {
			return patternLiteral{}, false
		}
		flags := body[idx+1:]
		body = strings.TrimPrefix(body[:idx], "^")
		body = strings.TrimSuffix(body, "$")
		if body == "" {
			return patternLiteral{}, false
		}
		lit := patternLiteral{Display: body, Source: body, IsRegex: true}
		if strings.ContainsRune(flags, 'i') {
			lit.Source = "(?i)" + body
		}
		return lit, true
	}
	quote := raw[0]
	if (quote == '"' || quote == '\'' || quote == '`') && raw[len(raw)-1] == quote {
		src := raw[1 : len(raw)-1]
		if src == "" {
			return patternLiteral{}, false
		}
		return patternLiteral{Display: src, Source: src}, true
	}
	return patternLiteral{}, false
}

// Parameter types of cucumber expressions and what they match. Unknown
// parameter names fall back to a greedy match.
var paramPatterns = map[string]string{
	"int":    `-?\d+`,
	"float":  `-?\d*\.?\d+`,
	"word":   `\S+`,
	"string": `"[^"]*"|'[^']*'`,
	"":       `.*`,
}

// compileExpression turns a pattern source into an anchored regular
// expression. Regex bodies are used as-is; cucumber expressions are
// translated element by element.
func compileExpression(src string, isRegex bool) (*regexp.Regexp, error) {
	body := src
	if !isRegex {
		body = expressionToRegex(src)
	}
	re, err := regexp.Compile(`^(?:` + body + `)$`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile step pattern %q: %w", src, err)
	}
	return re, nil
}

// element is one segment of a cucumber expression: literal text, or a regex
// group produced by a placeholder, optional text or an a/b alternation.
type element struct {
	literal string
	group   string
}

// parseExpression splits a cucumber expression into elements: {param}
// placeholders become their parameter patterns, (text) becomes optional and
// plain text stays literal with a/b alternations expanded.
func parseExpression(src string) []element {
	var elems []element
	var plain strings.Builder
	flush := func() {
		if plain.Len() == 0 {
			return
		}
		elems = append(elems, splitAlternations(plain.String())...)
		plain.Reset()
	}

	i := 0
	for i < len(src) {
		c := src[i]
		if c == '\\' && i+1 < len(src) {
			plain.WriteByte(src[i+1])
			i += 2
			continue
		}
		if c == '{' {
			if end := strings.IndexByte(src[i:], '}'); end > 0 {
				flush()
				pat, ok := paramPatterns[src[i+1:i+end]]
				if !ok {
					pat = `.+`
				}
				elems = append(elems, element{group: `(?:` + pat + `)`})
				i += end + 1
				continue
			}
		}
		if c == '(' {
			if end := strings.IndexByte(src[i:], ')'); end > 0 {
				flush()
				elems = append(elems, element{group: `(?:` + regexp.QuoteMeta(src[i+1:i+end]) + `)?`})
				i += end + 1
				continue
			}
		}
		plain.WriteByte(c)
		i++
	}
	flush()
	return elems
}

var altRe = regexp.MustCompile(`[^\s/]+(?:/[^\s/]+)+`)

// splitAlternations breaks literal text around a/b word groups, which become
// alternation groups.
func splitAlternations(s string) []element {
	var elems []element
	last := 0
	for _, loc := range altRe.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			elems = append(elems, element{literal: s[last:loc[0]]})
		}
		parts := strings.Split(s[loc[0]:loc[1]], "/")
		for i, p := range parts {
			parts[i] = regexp.QuoteMeta(p)
		}
		elems = append(elems, element{group: `(?:` + strings.Join(parts, `|`) + `)`})
		last = loc[1]
	}
	if last < len(s) {
		elems = append(elems, element{literal: s[last:]})
	}
	return elems
}

// expressionToRegex translates a cucumber expression into a regex body.
func expressionToRegex(src string) string {
	var out strings.Builder
	for _, e := range parseExpression(src) {
		if e.group != "" {
			out.WriteString(e.group)
		} else {
			out.WriteString(regexp.QuoteMeta(e.literal))
		}
	}
	return out.String()
}

// expressionToPrefixRegex builds a regex body accepting every prefix of the
// step texts the expression accepts. Literal characters nest in optional
// groups, working right to left; a group may be complete and followed by a
// prefix of the rest, or absorb the trailing text as a partially typed value.
func expressionToPrefixRegex(src string) string {
	elems := parseExpression(src)
	rest := ""
	for i := len(elems) - 1; i >= 0; i-- {
		if g := elems[i].group; g != "" {
			rest = `(?:` + g + rest + `|.*)?`
			continue
		}
		lit := elems[i].literal
		for j := len(lit); j > 0; {
			_, size := utf8.DecodeLastRuneInString(lit[:j])
			j -= size
			rest = `(?:` + regexp.QuoteMeta(lit[j:j+size]) + rest + `)?`
		}
	}
	return rest
}

// compilePrefix compiles the prefix matcher for a cucumber expression.
// Regex-literal steps have no known structure; callers fall back to a full
// match on those.
func compilePrefix(src string, isRegex bool) *regexp.Regexp {
	if isRegex {
		return nil
	}
	re, err := regexp.Compile(`^(?:` + expressionToPrefixRegex(src) + `)$`)
	if err != nil {
		return nil
	}
	return re
}
