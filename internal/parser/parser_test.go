package parser

import (
	"testing"

	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const callQuery = `
(call_expression
  function: (identifier) @func
  arguments: (arguments . (string) @target)
  (#match? @func "^Given$"))
`

func TestParsePoolCapturesTargets(t *testing.T) {
	pool := NewParserPool(2, javascript.GetLanguage())
	defer pool.Close()

	source := []byte("Given('a step');\nWhen('ignored');\nGiven('another step');\n")
	matches, err := pool.Parse(source, []byte(callQuery))
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "'a step'", matches[0].Content)
	assert.Equal(t, uint32(0), matches[0].Row)
	assert.Equal(t, "'another step'", matches[1].Content)
	assert.Equal(t, uint32(2), matches[1].Row)
}

func TestParseInvalidQuery(t *testing.T) {
	pool := NewParserPool(1, javascript.GetLanguage())
	defer pool.Close()

	_, err := pool.Parse([]byte("var x = 1;"), []byte("(nonsense"))
	assert.Error(t, err)
}

func TestParseConcurrentUse(t *testing.T) {
	pool := NewParserPool(2, javascript.GetLanguage())
	defer pool.Close()

	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			matches, err := pool.Parse([]byte("Given('x');"), []byte(callQuery))
			assert.NoError(t, err)
			assert.Len(t, matches, 1)
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
}
