// Package render generates DNS-server configuration snippets from
// JSON- or YAML-described templates and the current zone registry.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template describes one configuration snippet. All fields are optional;
// a missing field is an empty string or empty mapping.
type Template struct {
	Header     string            `json:"header" yaml:"header"`
	Footer     string            `json:"footer" yaml:"footer"`
	Item       string            `json:"item" yaml:"item"`
	DefaultVar string            `json:"defaultvar" yaml:"defaultvar"`
	ZoneVars   map[string]string `json:"zonevars" yaml:"zonevars"`
}

// Load reads a template file. Files ending .yaml or .yml are decoded as
// YAML, everything else as JSON. Unknown keys are rejected so a typo in
// a template does not silently render an empty snippet.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}

	var t Template
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&t); err != nil {
			return nil, fmt.Errorf("failed to parse YAML template: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&t); err != nil {
			return nil, fmt.Errorf("failed to parse JSON template: %w", err)
		}
	}
	normalizeZoneVars(&t)
	return &t, nil
}

func normalizeZoneVars(t *Template) {
	if len(t.ZoneVars) == 0 {
		return
	}
	vars := make(map[string]string, len(t.ZoneVars))
	for pattern, value := range t.ZoneVars {
		vars[strings.TrimSuffix(strings.ToLower(pattern), ".")] = value
	}
	t.ZoneVars = vars
}
