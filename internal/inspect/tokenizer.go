//go:build !cgo

package inspect

import (
	"strings"

	"golang.org/x/net/html"
)

type tokenizerInspector struct{}

// New returns an Inspector backed by the x/net/html tokenizer when cgo is unavailable.
func New() Inspector {
	return tokenizerInspector{}
}

func (tokenizerInspector) Bindings(markup string) []Binding {
	var bindings []Binding
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return bindings
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			binding := newBinding(token.Data)
			for _, attribute := range token.Attr {
				if _, duplicate := binding.Attributes[attribute.Key]; !duplicate {
					binding.Attributes[attribute.Key] = attribute.Val
				}
			}
			if binding.hasSource() {
				bindings = append(bindings, binding)
			}
		}
	}
}
