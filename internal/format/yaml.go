package format

import (
	"io"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes YAML using the values' yaml tags.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}
