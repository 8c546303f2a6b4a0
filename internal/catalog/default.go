package catalog

const (
	ComponentMetricCard = "MetricCard"
	ComponentBarChart   = "BarChart"
	ComponentTimeline   = "Timeline"
	ComponentMap        = "Map"
	ComponentList       = "List"

	// SlotTag is the placeholder element that carries a component binding.
	SlotTag = "component-slot"
	// ValueTag is the placeholder element that carries a single value binding.
	ValueTag = "data-value"
)

// Default returns the built-in component catalog.
func Default() Catalog {
	return Catalog{
		Components: []Component{
			{
				Name:   ComponentMetricCard,
				Shape:  ShapeRecord,
				Fields: map[string]string{"value": "number", "label": "string", "icon": "string"},
				Config: map[string]string{"trend": "string", "color": "string"},
			},
			{
				Name:   ComponentBarChart,
				Shape:  ShapeCollection,
				Fields: map[string]string{"label": "string", "value": "number"},
				Config: map[string]string{"orientation": "vertical|horizontal", "color": "string"},
			},
			{
				Name:   ComponentTimeline,
				Shape:  ShapeCollection,
				Fields: map[string]string{"date": "string", "title": "string"},
				Config: map[string]string{"style": "minimal|detailed"},
			},
			{
				Name:   ComponentMap,
				Shape:  ShapeCollection,
				Fields: map[string]string{"name": "string", "lat": "number", "lng": "number"},
				Config: map[string]string{"style": "dark|light"},
			},
			{
				Name:   ComponentList,
				Shape:  ShapeCollection,
				Fields: map[string]string{"primary": "string", "secondary": "string"},
				Config: map[string]string{"template": "object"},
			},
		},
		SelfClosingTags: []string{SlotTag, "br", "img"},
	}
}
