package binding

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	describeIndent        = "  "
	describeExampleIndent = "    "
	maxExampleRunes       = 25
	truncationSuffix      = "..."
)

// Describe renders a compact, typed outline of graph meant for prompts: one line
// per namespace::key with its shape and one example value.
func Describe(graph Graph) string {
	var builder strings.Builder
	for _, namespace := range graph.Namespaces() {
		fmt.Fprintf(&builder, "%s:\n", namespace)
		entries := graph[namespace]
		keys := make([]string, 0, len(entries))
		for key := range entries {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			describeEntry(&builder, namespace+Separator+key, entries[key])
		}
	}
	return builder.String()
}

func describeEntry(builder *strings.Builder, source string, value Value) {
	switch typed := value.(type) {
	case Sequence:
		if len(typed) == 0 {
			fmt.Fprintf(builder, "%s%s (empty array)\n", describeIndent, source)
			return
		}
		if first, isRecord := typed[0].(Record); isRecord {
			fmt.Fprintf(builder, "%s%s (array of %d) - %s\n", describeIndent, source, len(typed), recordSchema(first))
		} else {
			fmt.Fprintf(builder, "%s%s (array of %d %ss)\n", describeIndent, source, len(typed), typeName(typed[0]))
		}
		fmt.Fprintf(builder, "%s[0]: %s\n", describeExampleIndent, example(typed[0]))
	case Record:
		fmt.Fprintf(builder, "%s%s (object) - %s\n", describeIndent, source, recordSchema(typed))
		fmt.Fprintf(builder, "%s%s\n", describeExampleIndent, example(typed))
	default:
		fmt.Fprintf(builder, "%s%s (%s) = %s\n", describeIndent, source, typeName(value), example(value))
	}
}

func recordSchema(record Record) string {
	fields := make([]string, 0, len(record))
	for _, name := range record.Keys() {
		fields = append(fields, name+": "+typeName(record[name]))
	}
	return "{" + strings.Join(fields, ", ") + "}"
}

func typeName(value Value) string {
	switch typed := value.(type) {
	case Sequence:
		return "array"
	case Record:
		return "object"
	case Scalar:
		switch typed.value.(type) {
		case string:
			return "str"
		case int64:
			return "int"
		case float64:
			return "float"
		case bool:
			return "bool"
		}
	}
	return "null"
}

func example(value Value) string {
	switch typed := value.(type) {
	case Sequence:
		return "[...]"
	case Record:
		fields := make([]string, 0, len(typed))
		for _, name := range typed.Keys() {
			fields = append(fields, name+"="+nestedExample(typed[name]))
		}
		return "{" + strings.Join(fields, ", ") + "}"
	case Scalar:
		switch native := typed.value.(type) {
		case string:
			return quote(native)
		case int64:
			return strconv.FormatInt(native, 10)
		case float64:
			return strconv.FormatFloat(native, 'g', -1, 64)
		case bool:
			return strconv.FormatBool(native)
		}
	}
	return "null"
}

func nestedExample(value Value) string {
	if _, isRecord := value.(Record); isRecord {
		return "{...}"
	}
	return example(value)
}

func quote(text string) string {
	if utf8.RuneCountInString(text) > maxExampleRunes {
		runes := []rune(text)
		text = string(runes[:maxExampleRunes-len(truncationSuffix)]) + truncationSuffix
	}
	return "'" + text + "'"
}
