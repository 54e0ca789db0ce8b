package model

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed uk_cities.yaml
var defaultLocationsYAML []byte

// LoadLocationOptions returns the selectable UK locations. An empty path uses the bundled list;
// otherwise the file must be a YAML (or JSON) list of {label, value} with at least one value.
func LoadLocationOptions(path string) ([]Option, error) {
	b := defaultLocationsYAML
	if p := strings.TrimSpace(path); p != "" {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read locations: %w", err)
		}
		b = data
	}
	var opts []Option
	if err := yaml.Unmarshal(b, &opts); err != nil {
		return nil, fmt.Errorf("parse locations: %w", err)
	}
	out := opts[:0]
	for _, o := range opts {
		if strings.TrimSpace(o.Value) == "" {
			continue
		}
		if strings.TrimSpace(o.Label) == "" {
			o.Label = o.Value
		}
		out = append(out, o)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("parse locations: no options")
	}
	return out, nil
}
