package binding

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Separator divides the namespace from the path of a reference.
const Separator = "::"

const (
	indexOpen      = '['
	indexClose     = ']'
	fieldMarker    = '.'
	keyTerminators = "[."
)

var (
	// ErrSeparator reports a reference without exactly one namespace separator.
	ErrSeparator = errors.New("binding: reference must contain exactly one " + Separator)
	// ErrEmptyNamespace reports a reference whose namespace is empty.
	ErrEmptyNamespace = errors.New("binding: empty namespace")
	// ErrEmptyKey reports a reference whose key is empty.
	ErrEmptyKey = errors.New("binding: empty key")
	// ErrAccessor reports an index or field accessor that cannot be parsed.
	ErrAccessor = errors.New("binding: malformed accessor")
)

// AccessorKind distinguishes sequence indexes from record fields.
type AccessorKind int

const (
	// AccessorIndex selects a sequence element, written [n].
	AccessorIndex AccessorKind = iota
	// AccessorField selects a record field, written .name.
	AccessorField
)

// Accessor is one path step applied after the namespace and key.
type Accessor struct {
	Kind  AccessorKind
	Index int
	Field string
}

// Reference is a parsed namespace::key[index].field path.
type Reference struct {
	Namespace string
	Key       string
	Accessors []Accessor
}

// Source returns the namespace::key form of the reference without accessors.
func (reference Reference) Source() string {
	return reference.Namespace + Separator + reference.Key
}

// String renders the reference in its canonical textual form.
func (reference Reference) String() string {
	var builder strings.Builder
	builder.WriteString(reference.Source())
	for _, accessor := range reference.Accessors {
		switch accessor.Kind {
		case AccessorIndex:
			fmt.Fprintf(&builder, "[%d]", accessor.Index)
		case AccessorField:
			builder.WriteByte(fieldMarker)
			builder.WriteString(accessor.Field)
		}
	}
	return builder.String()
}

// ParseReference parses raw into a Reference. Whitespace around the
// namespace, the key and the whole reference is ignored.
func ParseReference(raw string) (Reference, error) {
	parts := strings.Split(strings.TrimSpace(raw), Separator)
	if len(parts) != 2 {
		return Reference{}, fmt.Errorf("%w: %q", ErrSeparator, raw)
	}
	namespace, remainder := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if namespace == "" {
		return Reference{}, fmt.Errorf("%w: %q", ErrEmptyNamespace, raw)
	}
	keyEnd := strings.IndexAny(remainder, keyTerminators)
	if keyEnd < 0 {
		keyEnd = len(remainder)
	}
	key := strings.TrimSpace(remainder[:keyEnd])
	if key == "" {
		return Reference{}, fmt.Errorf("%w: %q", ErrEmptyKey, raw)
	}
	accessors, accessorErr := parseAccessors(remainder[keyEnd:])
	if accessorErr != nil {
		return Reference{}, fmt.Errorf("%w: %q", accessorErr, raw)
	}
	return Reference{Namespace: namespace, Key: key, Accessors: accessors}, nil
}

// namespaceOf returns the trimmed text before the first separator when it is non-empty.
func namespaceOf(raw string) (string, bool) {
	prefix, _, found := strings.Cut(raw, Separator)
	namespace := strings.TrimSpace(prefix)
	if !found || namespace == "" {
		return "", false
	}
	return namespace, true
}

func parseAccessors(path string) ([]Accessor, error) {
	var accessors []Accessor
	position := 0
	for position < len(path) {
		switch path[position] {
		case indexOpen:
			closeOffset := strings.IndexByte(path[position:], indexClose)
			if closeOffset < 0 {
				return nil, ErrAccessor
			}
			digits := path[position+1 : position+closeOffset]
			if !isDigits(digits) {
				return nil, ErrAccessor
			}
			index, convertErr := strconv.Atoi(digits)
			if convertErr != nil {
				return nil, ErrAccessor
			}
			accessors = append(accessors, Accessor{Kind: AccessorIndex, Index: index})
			position += closeOffset + 1
		case fieldMarker:
			nameStart := position + 1
			nameEnd := strings.IndexAny(path[nameStart:], keyTerminators)
			if nameEnd < 0 {
				nameEnd = len(path) - nameStart
			}
			name := path[nameStart : nameStart+nameEnd]
			if name == "" {
				return nil, ErrAccessor
			}
			accessors = append(accessors, Accessor{Kind: AccessorField, Field: name})
			position = nameStart + nameEnd
		default:
			return nil, ErrAccessor
		}
	}
	return accessors, nil
}

func isDigits(text string) bool {
	if text == "" {
		return false
	}
	for _, character := range text {
		if character < '0' || character > '9' {
			return false
		}
	}
	return true
}
