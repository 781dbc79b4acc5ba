package pages

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const loginPageJS = `const searchField = by.css('#search');

module.exports = {
  userName: by.id('user'),
  password: by.id('pass'),
  submit() { return click('#submit'); },
};
`

func buildIndex(t *testing.T) (*Index, string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "pages")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "login.js"), []byte(loginPageJS), 0o644))
	idx := NewIndex(root, map[string]string{"login": "pages/login.js"})
	return idx, root
}

func TestNewIndexCollectsObjects(t *testing.T) {
	idx, _ := buildIndex(t)
	require.Equal(t, 1, idx.Len())

	page := idx.pages["login"]
	require.NotNil(t, page)
	names := make([]string, len(page.Objects))
	for i, o := range page.Objects {
		names[i] = o.Name
	}
	assert.Contains(t, names, "searchField")
	assert.Contains(t, names, "userName")
	assert.Contains(t, names, "password")
	assert.Contains(t, names, "submit")
}

func TestNewIndexSkipsMissingPages(t *testing.T) {
	root := t.TempDir()
	idx := NewIndex(root, map[string]string{"ghost": "pages/ghost.js"})
	assert.Equal(t, 0, idx.Len())
}

func TestGetFeaturePosition(t *testing.T) {
	idx, _ := buildIndex(t)

	fp := idx.GetFeaturePosition(`When I open "log`, 16)
	require.NotNil(t, fp)
	assert.Equal(t, "log", fp.Page)
	assert.False(t, fp.HasObject)

	line := `When I click "login"."user`
	fp = idx.GetFeaturePosition(line, uint32(len(line)))
	require.NotNil(t, fp)
	assert.Equal(t, "login", fp.Page)
	assert.Equal(t, "user", fp.Object)
	assert.True(t, fp.HasObject)

	assert.Nil(t, idx.GetFeaturePosition(`When I wait`, 6))
	assert.Nil(t, idx.GetFeaturePosition(`When "login"."user"`, 19))
}

func TestGetCompletionPageNames(t *testing.T) {
	idx, _ := buildIndex(t)

	line := `When I open "lo`
	got := idx.GetCompletion(line, protocol.Position{Character: uint32(len(line))})
	require.Len(t, got, 1)
	assert.Equal(t, "login", got[0].Label)
	assert.Equal(t, protocol.CompletionItemKindModule, *got[0].Kind)
}

func TestGetCompletionObjects(t *testing.T) {
	idx, _ := buildIndex(t)

	line := `When I click "login"."`
	got := idx.GetCompletion(line, protocol.Position{Character: uint32(len(line))})
	require.Len(t, got, 4)

	line = `When I click "login"."user`
	got = idx.GetCompletion(line, protocol.Position{Character: uint32(len(line))})
	require.Len(t, got, 1)
	assert.Equal(t, "userName", got[0].Label)
	assert.Equal(t, protocol.CompletionItemKindVariable, *got[0].Kind)
}

func TestGetCompletionUnknownPage(t *testing.T) {
	idx, _ := buildIndex(t)
	line := `When I click "ghost"."`
	assert.Empty(t, idx.GetCompletion(line, protocol.Position{Character: uint32(len(line))}))
}

func TestGetCompletionResolve(t *testing.T) {
	idx, _ := buildIndex(t)

	line := `When I click "login"."user`
	got := idx.GetCompletion(line, protocol.Position{Character: uint32(len(line))})
	require.Len(t, got, 1)

	resolved := idx.GetCompletionResolve(&got[0])
	require.NotNil(t, resolved)
	require.NotNil(t, resolved.Detail)
	assert.Equal(t, "login.js:4", *resolved.Detail)

	item := protocol.CompletionItem{Data: map[string]any{"source": "page", "key": "login/vanished"}}
	assert.Nil(t, idx.GetCompletionResolve(&item))
}

func TestValidate(t *testing.T) {
	idx, _ := buildIndex(t)

	assert.Empty(t, idx.Validate(`When I click "login"."userName"`, 0))
	assert.Empty(t, idx.Validate(`When no reference here`, 0))

	got := idx.Validate(`When I click "ghost"."userName"`, 3)
	require.Len(t, got, 1)
	assert.Equal(t, `Was unable to find page "ghost"`, got[0].Message)
	assert.Equal(t, uint32(14), got[0].Range.Start.Character)
	assert.Equal(t, uint32(19), got[0].Range.End.Character)

	got = idx.Validate(`When I click "login"."vanished"`, 4)
	require.Len(t, got, 1)
	assert.Equal(t, `Was unable to find page object "vanished" for page "login"`, got[0].Message)
	assert.Equal(t, uint32(4), got[0].Range.Start.Line)
}

func TestValidateMultipleReferences(t *testing.T) {
	idx, _ := buildIndex(t)
	got := idx.Validate(`When "ghost"."a" then "login"."nope"`, 0)
	assert.Len(t, got, 2)
}

func TestGetDefinition(t *testing.T) {
	idx, _ := buildIndex(t)

	line := `When I click "login"."userName"`
	loc := idx.GetDefinition(line, 23)
	require.NotNil(t, loc)
	assert.Contains(t, string(loc.URI), "login.js")
	assert.Equal(t, uint32(3), loc.Range.Start.Line)

	loc = idx.GetDefinition(line, 15)
	require.NotNil(t, loc)
	assert.Equal(t, uint32(0), loc.Range.Start.Line)

	assert.Nil(t, idx.GetDefinition(`When I click "ghost"."x"`, 15))
	assert.Nil(t, idx.GetDefinition(`When plain text`, 3))
}
