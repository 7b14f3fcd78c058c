package persist

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

const masked = "********"

// WriteYAML renders values as YAML sorted by key, masking the values of
// sensitive keys.
func WriteYAML(w io.Writer, values map[string]string, sensitive map[string]bool) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		v := values[k]
		if sensitive[k] && v != "" {
			v = masked
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Value: v, Style: yaml.DoubleQuotedStyle},
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to render settings: %w", err)
	}
	return enc.Close()
}
