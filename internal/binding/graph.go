package binding

import (
	"sort"
)

// Graph is a two-level data store: namespace, then key, then value. Namespaces and
// keys are opaque strings and no schema is shared between namespaces.
type Graph map[string]map[string]Value

// Context is the resolved subset of a Graph needed by one generation request.
// It never aliases storage of the graph it was built from.
type Context map[string]map[string]Value

// Lookup returns the value stored under namespace and key.
func (graph Graph) Lookup(namespace, key string) (Value, bool) {
	entries, namespaceFound := graph[namespace]
	if !namespaceFound {
		return nil, false
	}
	value, keyFound := entries[key]
	if !keyFound || value == nil {
		return nil, false
	}
	return value, true
}

// Sources enumerates every reference the graph can satisfy as namespace::key, sorted.
func (graph Graph) Sources() []string {
	sources := make([]string, 0)
	for namespace, entries := range graph {
		for key := range entries {
			sources = append(sources, namespace+Separator+key)
		}
	}
	sort.Strings(sources)
	return sources
}

// Namespaces returns the namespace names in lexical order.
func (graph Graph) Namespaces() []string {
	return sortedNamespaces(graph)
}

// Namespaces returns the namespace names touched by binding, in lexical order.
func (resolved Context) Namespaces() []string {
	return sortedNamespaces(resolved)
}

// Graph exposes the resolved context as a graph so references can be checked against it.
func (resolved Context) Graph() Graph {
	return Graph(resolved)
}

// Native converts the context into plain maps suitable for generic encoders.
func (resolved Context) Native() map[string]any {
	native := make(map[string]any, len(resolved))
	for namespace, entries := range resolved {
		converted := make(map[string]any, len(entries))
		for key, value := range entries {
			converted[key] = nativeOf(value)
		}
		native[namespace] = converted
	}
	return native
}

func sortedNamespaces[T ~map[string]map[string]Value](entries T) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GraphFromAny converts decoded namespace maps into a Graph. Namespaces whose
// content is not a mapping are skipped.
func GraphFromAny(input map[string]any) Graph {
	graph := make(Graph, len(input))
	for namespace, content := range input {
		record, isRecord := FromAny(content).(Record)
		if !isRecord {
			continue
		}
		entries := make(map[string]Value, len(record))
		for key, value := range record {
			entries[key] = value
		}
		graph[namespace] = entries
	}
	return graph
}
