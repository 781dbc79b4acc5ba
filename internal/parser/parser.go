// Package parser runs tree-sitter queries over source files through a
// bounded pool of parsers.
package parser

import (
	"context"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Every index query captures the node of interest as @target.
var captureName = "target"

// Match is one captured node: its position and raw source text.
type Match struct {
	Row     uint32
	Col     uint32
	Content string
}

func executeQuery(
	root *sitter.Node,
	query []byte,
	lang *sitter.Language,
	source []byte,
) ([]Match, error) {
	q, err := sitter.NewQuery(query, lang)
	if err != nil {
		return nil, err
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	var matches []Match

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		m = qc.FilterPredicates(m, source)

		for _, c := range m.Captures {
			name := q.CaptureNameForId(c.Index)
			if name != captureName {
				continue
			}
			match := Match{
				Row:     c.Node.StartPoint().Row,
				Col:     c.Node.StartPoint().Column,
				Content: c.Node.Content(source),
			}

			matches = append(matches, match)
		}
	}

	return matches, nil
}

// Parser wraps a tree-sitter parser instance for one-shot parsing.
type Parser struct {
	parser *sitter.Parser
	mu     sync.Mutex
}

// ParserPool maintains a pool of Parser instances for a single language.
type ParserPool struct {
	pool chan *Parser
	lang *sitter.Language
}

// NewParserPool creates a ParserPool with n Parser instances for the
// specified language.
func NewParserPool(n int, lang *sitter.Language) *ParserPool {
	pp := &ParserPool{
		pool: make(chan *Parser, n),
		lang: lang,
	}
	for i := 0; i < n; i++ {
		p := sitter.NewParser()
		p.SetLanguage(lang)
		pp.pool <- &Parser{parser: p}
	}
	return pp
}

// Parse performs a one-time parse of the document using one Parser from the
// pool, runs the provided query (with predicate filtering) and returns all
// matches.
func (pp *ParserPool) Parse(document []byte, query []byte) ([]Match, error) {
	p := <-pp.pool
	defer func() { pp.pool <- p }()

	p.mu.Lock()
	defer p.mu.Unlock()

	tree, err := p.parser.ParseCtx(context.Background(), nil, document)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	return executeQuery(tree.RootNode(), query, pp.lang, document)
}

// Close releases all Parser instances in the pool.
func (pp *ParserPool) Close() error {
	close(pp.pool)
	for p := range pp.pool {
		p.parser.Close()
	}
	return nil
}
