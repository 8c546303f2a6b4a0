package binding

// Bind resolves references against graph and returns a fresh Context holding only
// the referenced top-level keys. Every namespace that can be read from a reference
// appears in the result, even when nothing under it resolved. Malformed references
// and shape mismatches are skipped; Bind never fails.
func Bind(references []string, graph Graph) Context {
	resolved := Context{}
	for _, raw := range references {
		namespace, derivable := namespaceOf(raw)
		if !derivable {
			continue
		}
		if _, exists := resolved[namespace]; !exists {
			resolved[namespace] = map[string]Value{}
		}
		reference, parseErr := ParseReference(raw)
		if parseErr != nil {
			continue
		}
		topLevel, found := graph.Lookup(reference.Namespace, reference.Key)
		if !found {
			continue
		}
		if _, reachable := walk(topLevel, reference.Accessors); !reachable {
			continue
		}
		if _, bound := resolved[namespace][reference.Key]; bound {
			continue
		}
		resolved[namespace][reference.Key] = Clone(topLevel)
	}
	return resolved
}

// Resolve returns a copy of the value a single reference points at, accessors included.
func Resolve(raw string, graph Graph) (Value, bool) {
	reference, parseErr := ParseReference(raw)
	if parseErr != nil {
		return nil, false
	}
	return ResolveReference(reference, graph)
}

// ResolveReference is Resolve for an already parsed reference.
func ResolveReference(reference Reference, graph Graph) (Value, bool) {
	topLevel, found := graph.Lookup(reference.Namespace, reference.Key)
	if !found {
		return nil, false
	}
	target, reachable := walk(topLevel, reference.Accessors)
	if !reachable {
		return nil, false
	}
	return Clone(target), true
}

// walk applies accessors left to right and stops at the first step that does not resolve.
func walk(current Value, accessors []Accessor) (Value, bool) {
	for _, accessor := range accessors {
		var next Value
		var found bool
		switch accessor.Kind {
		case AccessorIndex:
			next, found = Index(current, accessor.Index)
		case AccessorField:
			next, found = Field(current, accessor.Field)
		}
		if !found || next == nil {
			return nil, false
		}
		current = next
	}
	return current, true
}
