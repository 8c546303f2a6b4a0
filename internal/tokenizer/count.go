package tokenizer

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrNilCounter is returned when counting without a Counter.
var ErrNilCounter = errors.New("nil tokenizer counter")

// CountResult captures the outcome of counting generated text.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountText estimates tokens for text. Invalid UTF-8 is reported as not counted.
func CountText(counter Counter, text string) (CountResult, error) {
	if counter == nil {
		return CountResult{}, ErrNilCounter
	}
	if !utf8.ValidString(text) {
		return CountResult{Counted: false}, nil
	}
	tokens, err := counter.CountString(text)
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}

// CountUnits estimates tokens for the concatenation of units.
func CountUnits(counter Counter, units []string) (CountResult, error) {
	return CountText(counter, strings.Join(units, ""))
}
