package segment

import "strings"

// Segmenter accumulates streamed text deltas and releases complete units as soon
// as they are available. A Segmenter serves a single stream and is not safe for
// concurrent use.
type Segmenter struct {
	extractor Extractor
	pending   string
}

// NewSegmenter creates a Segmenter that classifies tags with extractor.
func NewSegmenter(extractor Extractor) *Segmenter {
	return &Segmenter{extractor: extractor}
}

// Write appends delta to the pending buffer and returns every complete unit now
// available, in stream order. Returned units are removed from the buffer.
func (segmenter *Segmenter) Write(delta string) []string {
	segmenter.pending += delta
	var units []string
	for {
		unit := segmenter.extractor.Extract(segmenter.pending)
		if unit == "" {
			return units
		}
		units = append(units, unit)
		segmenter.pending = segmenter.pending[len(unit):]
	}
}

// Flush empties the buffer and returns its content when it holds anything other
// than whitespace. It is meant to be called once the stream has ended.
func (segmenter *Segmenter) Flush() string {
	remainder := segmenter.pending
	segmenter.pending = ""
	if strings.TrimSpace(remainder) == "" {
		return ""
	}
	return remainder
}

// Pending reports the text received but not yet released.
func (segmenter *Segmenter) Pending() string {
	return segmenter.pending
}

// Reset discards any pending text.
func (segmenter *Segmenter) Reset() {
	segmenter.pending = ""
}
