package fields

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/scope"
)

const loginPayload = `<Taskguide Title="Login guide">
  <Field Name="User" Type="string" Title="User name"/>
  <Field Name="Password" Type="secret"/>
  <Field Name="Remember"/>
  <Field Type="bool" Title="no name, skipped"/>
  <Field Name=""/>
</Taskguide>
`

func TestExtract(t *testing.T) {
	got := Extract(loginPayload)
	require.Len(t, got, 3)
	assert.Equal(t, Field{Name: "User", Type: "string", Title: "User name"}, got[0])
	assert.Equal(t, Field{Name: "Password", Type: "secret"}, got[1])
	assert.Equal(t, Field{Name: "Remember"}, got[2])
}

func TestExtractEmptyPayload(t *testing.T) {
	assert.Empty(t, Extract(""))
	assert.Empty(t, Extract("<Taskguide>\n</Taskguide>\n"))
}

func TestExtractIsIdempotent(t *testing.T) {
	first := Extract(loginPayload)
	second := Extract(loginPayload)
	assert.Equal(t, first, second)
}

func writePayload(t *testing.T, root string, parts ...string) {
	t.Helper()
	path := filepath.Join(append([]string{root}, parts...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(loginPayload), 0o644))
}

func TestLookupPrimaryRoot(t *testing.T) {
	root := t.TempDir()
	writePayload(t, root, "Taskguides", "Login", "Login.fields.xml")

	h := scope.CaseHandler{Name: "LoginGuide", Bind: scope.BindTaskguide, Target: "Login"}
	got := Lookup(root, h)
	require.Len(t, got, 3)
	assert.Equal(t, "User", got[0].Name)
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writePayload(t, root, "Taskguides", "LOGIN", "LOGIN.Fields.XML")

	h := scope.CaseHandler{Name: "G", Bind: scope.BindWith, Target: "login"}
	got := Lookup(root, h)
	require.Len(t, got, 3)
}

func TestLookupPayloadNameStartsWithTarget(t *testing.T) {
	root := t.TempDir()
	writePayload(t, root, "Taskguides", "LoginGuide", "LoginGuide2.fields.xml")

	h := scope.CaseHandler{Name: "G", Bind: scope.BindTaskguide, Target: "LoginGuide"}
	got := Lookup(root, h)
	require.Len(t, got, 3)
	assert.Equal(t, "User", got[0].Name)
}

func TestLookupAggregatesAllPayloads(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Taskguides", "Forms")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Forms.fields.xml"),
		[]byte(`<Field Name="First"/>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "FormsB.fields.xml"),
		[]byte(`<Field Name="Second"/>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Other.fields.xml"),
		[]byte(`<Field Name="Stray"/>`), 0o644))

	got := Lookup(root, scope.CaseHandler{Target: "Forms"})
	require.Len(t, got, 2)
	assert.Equal(t, "First", got[0].Name)
	assert.Equal(t, "Second", got[1].Name)
}

func TestLookupSkipsUnreadablePayload(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Taskguides", "Forms")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	// A dangling symlink is listed but fails to read.
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "Forms.fields.xml")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "FormsB.fields.xml"),
		[]byte(`<Field Name="Survivor"/>`), 0o644))

	got := Lookup(root, scope.CaseHandler{Target: "Forms"})
	require.Len(t, got, 1)
	assert.Equal(t, "Survivor", got[0].Name)
}

func TestLookupFallbackRoot(t *testing.T) {
	root := t.TempDir()
	writePayload(t, root, "Resources", "Taskguides", "Forms", "Forms.fields.xml")

	h := scope.CaseHandler{Name: "F", Bind: scope.BindWith, Target: "Forms"}
	got := Lookup(root, h)
	require.Len(t, got, 3)
}

func TestLookupPrimaryWinsOverFallback(t *testing.T) {
	root := t.TempDir()
	primary := filepath.Join(root, "Taskguides", "Login", "Login.fields.xml")
	require.NoError(t, os.MkdirAll(filepath.Dir(primary), 0o755))
	require.NoError(t, os.WriteFile(primary, []byte(`<Field Name="FromPrimary"/>`), 0o644))
	fallback := filepath.Join(root, "Resources", "Taskguides", "Login", "Login.fields.xml")
	require.NoError(t, os.MkdirAll(filepath.Dir(fallback), 0o755))
	require.NoError(t, os.WriteFile(fallback, []byte(`<Field Name="FromFallback"/>`), 0o644))

	got := Lookup(root, scope.CaseHandler{Target: "Login"})
	require.Len(t, got, 1)
	assert.Equal(t, "FromPrimary", got[0].Name)
}

func TestLookupMissingTargetDir(t *testing.T) {
	root := t.TempDir()
	writePayload(t, root, "Taskguides", "Login", "Login.fields.xml")
	assert.Empty(t, Lookup(root, scope.CaseHandler{Target: "Nope"}))
}

func TestLookupUnboundHandler(t *testing.T) {
	root := t.TempDir()
	writePayload(t, root, "Taskguides", "Login", "Login.fields.xml")
	assert.Empty(t, Lookup(root, scope.CaseHandler{Name: "Bare"}))
	assert.Empty(t, Lookup("", scope.CaseHandler{Target: "Login"}))
}
