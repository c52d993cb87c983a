package gwr

import (
	"encoding/xml"
	"io"
	"strings"
)

// The gateway does not emit stably-shaped XML: a room's device may arrive as
// a nested element or as an empty field, and error bodies share no schema
// with state bodies at all. Responses are therefore parsed into a generic
// attribute-preserving tree first; the typed projection reads from the tree,
// so schema drift fails at this one boundary instead of deep in field access.

// gwNode is one element of the generic response tree.
type gwNode struct {
	name     string
	attrs    map[string]string
	text     string
	children []*gwNode
}

// parseTree decodes an XML document into a generic tree and returns its root
// element. Character data is accumulated per element; attributes are kept.
func parseTree(body string) (*gwNode, error) {
	dec := xml.NewDecoder(strings.NewReader(body))
	dec.Strict = false

	root := &gwNode{}
	stack := []*gwNode{root}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &gwNode{name: t.Name.Local}
			if len(t.Attr) > 0 {
				n.attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.attrs[a.Name.Local] = a.Value
				}
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			stack[len(stack)-1].text += string(t)
		}
	}

	if len(stack) != 1 || len(root.children) == 0 {
		return nil, ErrMalformedGWR
	}
	return root.children[0], nil
}

// child returns the first child element with the given name, or nil.
func (n *gwNode) child(name string) *gwNode {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// childText returns the trimmed text of the named child, or "".
func (n *gwNode) childText(name string) string {
	c := n.child(name)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.text)
}

// childAll returns every child element with the given name, in document order.
func (n *gwNode) childAll(name string) []*gwNode {
	if n == nil {
		return nil
	}
	var out []*gwNode
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// hasChildren reports whether the element contains any nested elements.
// Distinguishes an empty <device/> field from a populated one.
func (n *gwNode) hasChildren() bool {
	return n != nil && len(n.children) > 0
}
