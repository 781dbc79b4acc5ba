// Package settings holds the server configuration pushed by the client.
package settings

import (
	"encoding/json"
	"fmt"
	"sort"
)

// StringList decodes from either a JSON string or a JSON array of strings.
// A plain string becomes a one-element list.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*l = StringList(many)
	return nil
}

// Settings is the client-provided configuration. Steps holds glob patterns
// for step definition files, Pages maps page names to glob patterns, and
// OnTypeFormat gates formatting while typing.
type Settings struct {
	Steps        StringList        `json:"steps,omitempty"`
	Pages        map[string]string `json:"pages,omitempty"`
	OnTypeFormat bool              `json:"onTypeFormat,omitempty"`
}

var defaultSettings = Settings{}

// Default returns the settings used before the client pushes any.
func Default() Settings {
	return defaultSettings
}

// Load decodes settings from an arbitrary JSON-shaped value, typically the
// payload of a configuration notification. Values may carry the settings at
// the top level or nested under a "cucumberautocomplete" section. Fields
// absent from the payload keep their defaults; only fields present in src
// will overwrite.
func Load(v any) (Settings, error) {
	cfg := defaultSettings
	data, err := json.Marshal(v)
	if err != nil {
		return cfg, fmt.Errorf("failed to marshal settings: %w", err)
	}
	if section := extractSection(data); section != nil {
		data = section
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return cfg, nil
}

// extractSection returns the nested "cucumberautocomplete" object when the
// payload wraps the settings in a section, or nil when it does not.
func extractSection(data []byte) json.RawMessage {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil
	}
	if section, ok := wrapper["cucumberautocomplete"]; ok {
		return section
	}
	return nil
}

// HasSteps reports whether step definition patterns are configured.
func (s Settings) HasSteps() bool {
	return len(s.Steps) > 0
}

// HasPages reports whether page index patterns are configured.
func (s Settings) HasPages() bool {
	return len(s.Pages) > 0
}

// AllPatterns returns every configured glob pattern, step patterns first,
// page patterns in stable name order.
func (s Settings) AllPatterns() []string {
	out := make([]string, 0, len(s.Steps)+len(s.Pages))
	out = append(out, s.Steps...)
	names := make([]string, 0, len(s.Pages))
	for name := range s.Pages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, s.Pages[name])
	}
	return out
}
