// Package catalog describes the UI components a generator may emit and the tags
// that never take a closing counterpart.
package catalog

import (
	"encoding/json"
	"sort"
	"strings"
)

// Shape tells whether a component binds a single record or a list of records.
type Shape string

const (
	// ShapeRecord components bind one record.
	ShapeRecord Shape = "record"
	// ShapeCollection components bind a list of records.
	ShapeCollection Shape = "collection"
)

// Component is the schema of one renderable component.
type Component struct {
	Name   string
	Shape  Shape
	Fields map[string]string
	Config map[string]string
}

type componentDocument struct {
	Data   any               `json:"data"`
	Config map[string]string `json:"config"`
}

// MarshalJSON renders the component the way prompts present it.
func (component Component) MarshalJSON() ([]byte, error) {
	document := componentDocument{Config: component.Config}
	if component.Shape == ShapeCollection {
		document.Data = []map[string]string{component.Fields}
	} else {
		document.Data = component.Fields
	}
	return json.Marshal(document)
}

// Catalog is built once at startup and shared read-only.
type Catalog struct {
	Components      []Component
	SelfClosingTags []string
}

// Lookup returns the component registered under name.
func (catalog Catalog) Lookup(name string) (Component, bool) {
	for _, component := range catalog.Components {
		if component.Name == name {
			return component, true
		}
	}
	return Component{}, false
}

// Names lists component names in lexical order.
func (catalog Catalog) Names() []string {
	names := make([]string, 0, len(catalog.Components))
	for _, component := range catalog.Components {
		names = append(names, component.Name)
	}
	sort.Strings(names)
	return names
}

// WithSelfClosingTags returns a copy of the catalog whose allow-list also holds tags.
// Names are lowercased and duplicates are dropped.
func (catalog Catalog) WithSelfClosingTags(tags ...string) Catalog {
	seen := make(map[string]struct{}, len(catalog.SelfClosingTags)+len(tags))
	merged := make([]string, 0, len(catalog.SelfClosingTags)+len(tags))
	for _, tag := range append(append([]string{}, catalog.SelfClosingTags...), tags...) {
		normalized := strings.ToLower(strings.TrimSpace(tag))
		if normalized == "" {
			continue
		}
		if _, duplicate := seen[normalized]; duplicate {
			continue
		}
		seen[normalized] = struct{}{}
		merged = append(merged, normalized)
	}
	updated := catalog
	updated.Components = append([]Component(nil), catalog.Components...)
	updated.SelfClosingTags = merged
	return updated
}

// SchemaJSON renders every component keyed by name.
func (catalog Catalog) SchemaJSON() (string, error) {
	schemas := make(map[string]Component, len(catalog.Components))
	for _, component := range catalog.Components {
		schemas[component.Name] = component
	}
	encoded, err := json.Marshal(schemas)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
