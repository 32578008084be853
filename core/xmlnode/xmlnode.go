package xmlnode

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Attr is a single attribute on an element.
type Attr struct {
	Name  string
	Value string
}

// Node is one element of a parsed XML document. Unlike a plain
// encoding/xml unmarshal target it keeps the source line of the start
// tag, which the index records for every definition and mod operation.
type Node struct {
	// Tag is the local element name (namespaces are not significant in
	// game config files and are stripped).
	Tag string
	// Attrs are the element attributes in document order.
	Attrs []Attr
	// Text is the character data directly under this element.
	Text string
	// Children are the child elements in document order.
	Children []*Node
	// Line is the 1-based line number of the element's start tag.
	Line int
}

// Parse reads an XML document and returns its root element.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)

	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed xml: %w", err)
		}
		line, _ := dec.InputPos()

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Tag: t.Name.Local, Line: line}
			for _, a := range t.Attr {
				node.Attrs = append(node.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("malformed xml: multiple root elements")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("malformed xml: unexpected end tag </%s>", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("malformed xml: no root element")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("malformed xml: unclosed element <%s>", stack[len(stack)-1].Tag)
	}
	return root, nil
}

// Attr returns the value of the named attribute, or "" if absent.
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present, even if empty.
func (n *Node) HasAttr(name string) bool {
	for _, a := range n.Attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

// ChildrenByTag returns all direct children with the given tag.
func (n *Node) ChildrenByTag(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// TrimmedText returns the element text with surrounding whitespace removed.
func (n *Node) TrimmedText() string {
	return strings.TrimSpace(n.Text)
}

// String serializes the element and its subtree back to XML. Formatting is
// normalized (attribute order preserved, insignificant whitespace dropped),
// so two documents with the same structure serialize identically.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

// SerializeChildren returns the concatenated serialization of all child
// elements. Used to capture the raw payload of append/insert operations.
func (n *Node) SerializeChildren() string {
	var sb strings.Builder
	for _, c := range n.Children {
		c.write(&sb)
	}
	return sb.String()
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func (n *Node) write(sb *strings.Builder) {
	sb.WriteString("<")
	sb.WriteString(n.Tag)
	for _, a := range n.Attrs {
		sb.WriteString(" ")
		sb.WriteString(a.Name)
		sb.WriteString(`="`)
		sb.WriteString(attrEscaper.Replace(a.Value))
		sb.WriteString(`"`)
	}

	text := n.TrimmedText()
	if text == "" && len(n.Children) == 0 {
		sb.WriteString("/>")
		return
	}

	sb.WriteString(">")
	if text != "" {
		sb.WriteString(attrEscaper.Replace(text))
	}
	for _, c := range n.Children {
		c.write(sb)
	}
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteString(">")
}
