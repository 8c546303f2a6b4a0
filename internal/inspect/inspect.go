// Package inspect finds data bindings inside generated markup units.
package inspect

import (
	"strings"
)

const (
	// DataSourceAttribute names the attribute that carries a namespace::path reference.
	DataSourceAttribute = "data-source"
	// TypeAttribute names the component type of a slot.
	TypeAttribute = "type"
	// ConfigAttribute holds the JSON configuration of a slot.
	ConfigAttribute = "config"
)

// Binding is one element of a unit that references data.
type Binding struct {
	Tag        string
	Attributes map[string]string
}

// Source returns the data-source reference of the element.
func (binding Binding) Source() string {
	return strings.TrimSpace(binding.Attributes[DataSourceAttribute])
}

// Component returns the slot component type, empty for plain value placeholders.
func (binding Binding) Component() string {
	return binding.Attributes[TypeAttribute]
}

// Inspector lists the elements of a markup fragment that carry a data-source attribute,
// in document order. Tag and attribute names are lowercased.
type Inspector interface {
	Bindings(markup string) []Binding
}

// Sources returns the non-empty data-source references found in markup.
func Sources(inspector Inspector, markup string) []string {
	var sources []string
	for _, binding := range inspector.Bindings(markup) {
		if source := binding.Source(); source != "" {
			sources = append(sources, source)
		}
	}
	return sources
}

func newBinding(tag string) Binding {
	return Binding{Tag: strings.ToLower(tag), Attributes: map[string]string{}}
}

func (binding Binding) hasSource() bool {
	_, present := binding.Attributes[DataSourceAttribute]
	return present
}
