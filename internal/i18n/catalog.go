package i18n

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Catalog is the nested translation table. Inner nodes are maps; a leaf
// record maps language codes to strings.
type Catalog map[string]any

// LoadCatalog parses a YAML translation table.
func LoadCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("catalog is empty")
	}
	return Catalog(plain(map[string]any(c))), nil
}

// plain rewrites nested nodes as map[string]any. yaml.v3 decodes inner
// mappings into the destination's named map type.
func plain(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if inner, ok := asMap(v); ok {
			v = plain(inner)
		}
		out[k] = v
	}
	return out
}

func asMap(node any) (map[string]any, bool) {
	switch m := node.(type) {
	case map[string]any:
		return m, true
	case Catalog:
		return m, true
	}
	return nil, false
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() (Catalog, error) {
	return LoadCatalog(embeddedCatalog)
}
