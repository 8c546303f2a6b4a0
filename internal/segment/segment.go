// Package segment carves a growing markup buffer into complete units that are
// safe to forward before the rest of the document has arrived.
package segment

import (
	"strings"
)

const (
	tagOpenCharacter   = '<'
	tagCloseCharacter  = '>'
	closingTagMarker   = "/"
	selfClosingMarker  = "/"
	declarationMarkers = "!?"
)

// DefaultSelfClosingTags lists the tag names treated as complete without a closing counterpart.
var DefaultSelfClosingTags = []string{"component-slot", "br", "img"}

type tagKind int

const (
	tagKindText tagKind = iota
	tagKindOpening
	tagKindClosing
	tagKindSelfClosing
)

type tag struct {
	kind tagKind
	name string
}

// Extractor finds complete markup units using a fixed self-closing allow-list.
// The zero value treats only explicitly self-closed tags and declarations as self-terminating.
type Extractor struct {
	selfClosing map[string]struct{}
}

// NewExtractor builds an Extractor whose allow-list is copied from selfClosing.
func NewExtractor(selfClosing []string) Extractor {
	names := make(map[string]struct{}, len(selfClosing))
	for _, name := range selfClosing {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		names[normalized] = struct{}{}
	}
	return Extractor{selfClosing: names}
}

var defaultExtractor = NewExtractor(DefaultSelfClosingTags)

// ExtractCompleteUnit returns the shortest prefix of buffer that ends one complete
// self-closed or balanced element, using DefaultSelfClosingTags. It returns the empty
// string when the buffer does not yet hold a complete unit.
func ExtractCompleteUnit(buffer string) string {
	return defaultExtractor.Extract(buffer)
}

// Extract returns the first complete unit of buffer, or the empty string when the
// caller must wait for more input. Text preceding the unit's first tag stays part
// of the returned prefix. Extract never panics on malformed input.
func (extractor Extractor) Extract(buffer string) string {
	end := extractor.unitEnd(buffer)
	if end < 0 {
		return ""
	}
	return buffer[:end]
}

// unitEnd scans buffer with a fresh tag stack and returns the offset just past the
// '>' that completes the first unit, or -1.
func (extractor Extractor) unitEnd(buffer string) int {
	var stack []string
	position := 0
	for position < len(buffer) {
		openOffset := strings.IndexByte(buffer[position:], tagOpenCharacter)
		if openOffset < 0 {
			return -1
		}
		tagStart := position + openOffset
		closeOffset := strings.IndexByte(buffer[tagStart+1:], tagCloseCharacter)
		if closeOffset < 0 {
			return -1
		}
		tagEnd := tagStart + 1 + closeOffset
		afterTag := tagEnd + 1

		current := extractor.classify(buffer[tagStart+1 : tagEnd])
		switch current.kind {
		case tagKindClosing:
			if len(stack) > 0 && strings.EqualFold(stack[len(stack)-1], current.name) {
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					return afterTag
				}
			}
		case tagKindSelfClosing:
			if len(stack) == 0 {
				return afterTag
			}
		case tagKindOpening:
			stack = append(stack, current.name)
		}
		position = afterTag
	}
	return -1
}

// classify inspects the text between '<' and '>'.
func (extractor Extractor) classify(body string) tag {
	if body == "" {
		return tag{kind: tagKindText}
	}
	if strings.ContainsRune(declarationMarkers, rune(body[0])) {
		return tag{kind: tagKindSelfClosing}
	}
	if strings.HasPrefix(body, closingTagMarker) {
		name := tagName(body[len(closingTagMarker):])
		if name == "" {
			return tag{kind: tagKindText}
		}
		return tag{kind: tagKindClosing, name: name}
	}
	name := tagName(body)
	if name == "" {
		return tag{kind: tagKindText}
	}
	if strings.HasSuffix(body, selfClosingMarker) {
		return tag{kind: tagKindSelfClosing, name: strings.TrimSuffix(name, selfClosingMarker)}
	}
	if _, listed := extractor.selfClosing[strings.ToLower(name)]; listed {
		return tag{kind: tagKindSelfClosing, name: name}
	}
	return tag{kind: tagKindOpening, name: name}
}

// tagName returns the token up to the first whitespace; attributes are not parsed.
func tagName(body string) string {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
