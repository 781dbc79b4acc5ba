package fields

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/scope"
)

const payloadSuffix = ".fields.xml"

// Search roots relative to the workspace root. The primary root wins when it
// exists; the fallback is only consulted otherwise.
var searchRoots = []string{
	"Taskguides",
	filepath.Join("Resources", "Taskguides"),
}

// Lookup resolves a case handler's target to its taskguide directory and
// returns the fields aggregated from every payload inside it. The directory
// is the immediate subdirectory of the root whose name equals the target
// case-insensitively; payloads are its files whose name starts with the
// target and ends with .fields.xml, again case-insensitively. Handlers
// without a target and missing directories yield an empty result; an
// unreadable payload is skipped, the remaining ones still contribute.
func Lookup(root string, h scope.CaseHandler) []Field {
	if root == "" || h.Target == "" {
		return nil
	}
	dir := findTargetDir(resolveRoot(root), h.Target)
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("Failed to list taskguide directory %s: %v", dir, err)
		return nil
	}
	stem := strings.ToLower(h.Target)
	var out []Field
	for _, e := range entries {
		name := strings.ToLower(e.Name())
		if e.IsDir() || !strings.HasPrefix(name, stem) || !strings.HasSuffix(name, payloadSuffix) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Failed to read taskguide payload %s: %v", path, err)
			continue
		}
		out = append(out, Extract(string(data))...)
	}
	return out
}

// resolveRoot picks the first search root that exists under the workspace.
func resolveRoot(root string) string {
	for _, sub := range searchRoots {
		dir := filepath.Join(root, sub)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}

// findTargetDir returns the immediate subdirectory of base whose name
// matches target case-insensitively, or "".
func findTargetDir(base, target string) string {
	if base == "" {
		return ""
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		log.Printf("Failed to list taskguide root %s: %v", base, err)
		return ""
	}
	want := strings.ToLower(target)
	for _, e := range entries {
		if e.IsDir() && strings.ToLower(e.Name()) == want {
			return filepath.Join(base, e.Name())
		}
	}
	return ""
}
