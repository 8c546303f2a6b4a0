//go:build cgo

package inspect

import (
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	htmlgrammar "github.com/smacker/go-tree-sitter/html"
	"golang.org/x/net/html"
)

const (
	startTagNodeType             = "start_tag"
	selfClosingTagNodeType       = "self_closing_tag"
	tagNameNodeType              = "tag_name"
	attributeNodeType            = "attribute"
	attributeNameNodeType        = "attribute_name"
	attributeValueNodeType       = "attribute_value"
	quotedAttributeValueNodeType = "quoted_attribute_value"
)

type treeSitterInspector struct {
	mutex  sync.Mutex
	parser *sitter.Parser
}

// New returns an Inspector backed by the tree-sitter HTML grammar.
func New() Inspector {
	parser := sitter.NewParser()
	parser.SetLanguage(htmlgrammar.GetLanguage())
	return &treeSitterInspector{parser: parser}
}

func (inspector *treeSitterInspector) Bindings(markup string) []Binding {
	content := []byte(markup)
	inspector.mutex.Lock()
	tree := inspector.parser.Parse(nil, content)
	inspector.mutex.Unlock()
	if tree == nil {
		return nil
	}

	var bindings []Binding
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		switch node.Type() {
		case startTagNodeType, selfClosingTagNodeType:
			if binding, found := tagBinding(node, content); found {
				bindings = append(bindings, binding)
			}
		}
		for index := 0; index < int(node.ChildCount()); index++ {
			walk(node.Child(index))
		}
	}
	walk(tree.RootNode())
	return bindings
}

func tagBinding(node *sitter.Node, content []byte) (Binding, bool) {
	var binding Binding
	for index := 0; index < int(node.ChildCount()); index++ {
		child := node.Child(index)
		switch child.Type() {
		case tagNameNodeType:
			binding = newBinding(child.Content(content))
		case attributeNodeType:
			if binding.Attributes == nil {
				continue
			}
			name, value := attribute(child, content)
			if name == "" {
				continue
			}
			if _, duplicate := binding.Attributes[name]; !duplicate {
				binding.Attributes[name] = value
			}
		}
	}
	return binding, binding.Attributes != nil && binding.hasSource()
}

func attribute(node *sitter.Node, content []byte) (string, string) {
	var name, value string
	for index := 0; index < int(node.ChildCount()); index++ {
		child := node.Child(index)
		switch child.Type() {
		case attributeNameNodeType:
			name = strings.ToLower(child.Content(content))
		case attributeValueNodeType:
			value = child.Content(content)
		case quotedAttributeValueNodeType:
			for inner := 0; inner < int(child.ChildCount()); inner++ {
				if grandchild := child.Child(inner); grandchild.Type() == attributeValueNodeType {
					value = grandchild.Content(content)
				}
			}
		}
	}
	return name, html.UnescapeString(value)
}
