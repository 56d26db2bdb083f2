// Package rawxml is a byte-preserving XML tree. Every byte of the parsed
// input belongs to exactly one node, so serializing an unmodified document
// reproduces the input exactly. Only element text can be replaced.
package rawxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// NodeKind classifies a node.
type NodeKind int

// Node kinds.
const (
	KindDocument NodeKind = iota
	KindElement
	KindText
	// KindOther covers comments, processing instructions and directives.
	KindOther
)

// Node is a node of a raw document.
type Node struct {
	kind NodeKind
	name xml.Name
	// raw holds the start tag of an element or the whole source of any
	// other node.
	raw []byte
	// end holds the end tag; empty for self-closing elements.
	end      []byte
	text     string
	children []*Node
}

// Document is a parsed raw document.
type Document struct {
	root *Node
}

// Parse reads data into a document. Only UTF-8 input is supported.
func Parse(data []byte) (*Document, error) {
	data = bytes.Clone(data)
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	doc := &Node{kind: KindDocument}
	stack := []*Node{doc}
	var prev int64

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineAt(data, prev), err)
		}
		off := dec.InputOffset()
		raw := data[prev:off]
		parent := stack[len(stack)-1]

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Node{kind: KindElement, name: t.Name, raw: raw}
			parent.children = append(parent.children, el)
			stack = append(stack, el)
		case xml.EndElement:
			if parent.kind != KindElement || parent.name != t.Name {
				return nil, fmt.Errorf("line %d: unexpected end element </%s>", lineAt(data, prev), qualified(t.Name))
			}
			// A self-closing element yields an end element without consuming input.
			parent.end = raw
			stack = stack[:len(stack)-1]
		case xml.CharData:
			parent.children = append(parent.children, &Node{kind: KindText, raw: raw, text: string(t)})
		default:
			parent.children = append(parent.children, &Node{kind: KindOther, raw: raw})
		}
		prev = off
	}

	if len(stack) != 1 {
		open := stack[len(stack)-1]
		return nil, fmt.Errorf("unexpected end of input: element <%s> is not closed", qualified(open.name))
	}
	if int(prev) != len(data) {
		return nil, fmt.Errorf("unexpected trailing input at offset %d", prev)
	}
	return &Document{root: doc}, nil
}

// Root returns the document element, or nil for a document without one.
func (d *Document) Root() *Node {
	for _, c := range d.root.children {
		if c.kind == KindElement {
			return c
		}
	}
	return nil
}

// Bytes serializes the document.
func (d *Document) Bytes() []byte {
	var b bytes.Buffer
	d.root.write(&b)
	return b.Bytes()
}

// WriteTo writes the serialized document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.Bytes())
	return int64(n), err
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	return &Document{root: d.root.clone()}
}

// Kind returns the node kind.
func (n *Node) Kind() NodeKind { return n.kind }

// Name returns the local name of an element.
func (n *Node) Name() string { return n.name.Local }

// Elements returns the element children in document order.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.kind == KindElement {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the first element child with the given local name.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c.kind == KindElement && c.name.Local == name {
			return c
		}
	}
	return nil
}

// Children returns all element children with the given local name.
func (n *Node) Children(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.children {
		if c.kind == KindElement && c.name.Local == name {
			out = append(out, c)
		}
	}
	return out
}

// Path follows a chain of first element children.
func (n *Node) Path(names ...string) *Node {
	cur := n
	for _, name := range names {
		cur = cur.Child(name)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Text returns the decoded character data directly inside the element.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	var s string
	for _, c := range n.children {
		if c.kind == KindText {
			s += c.text
		}
	}
	return s
}

// SetText replaces the content of the element with escaped text. Nothing
// changes when the element already holds exactly value.
func (n *Node) SetText(value string) {
	if n.kind != KindElement {
		return
	}
	if n.Text() == value && !n.hasElementChildren() {
		return
	}
	if len(n.end) == 0 {
		n.openSelfClosing()
	}
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(value))
	n.children = []*Node{{kind: KindText, raw: b.Bytes(), text: value}}
}

func (n *Node) hasElementChildren() bool {
	for _, c := range n.children {
		if c.kind == KindElement {
			return true
		}
	}
	return false
}

// openSelfClosing turns <name attr="x"/> into <name attr="x"></name>.
func (n *Node) openSelfClosing() {
	start := bytes.TrimSuffix(n.raw, []byte("/>"))
	start = bytes.TrimRight(start, " \t\r\n")
	n.raw = append(append([]byte(nil), start...), '>')
	n.end = []byte("</" + qualified(n.name) + ">")
}

func (n *Node) write(b *bytes.Buffer) {
	b.Write(n.raw)
	for _, c := range n.children {
		c.write(b)
	}
	b.Write(n.end)
}

func (n *Node) clone() *Node {
	c := *n
	c.raw = append([]byte(nil), n.raw...)
	c.end = append([]byte(nil), n.end...)
	if n.children != nil {
		c.children = make([]*Node, len(n.children))
		for i, child := range n.children {
			c.children[i] = child.clone()
		}
	}
	return &c
}

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

func lineAt(data []byte, off int64) int {
	if off > int64(len(data)) {
		off = int64(len(data))
	}
	return bytes.Count(data[:off], []byte("\n")) + 1
}
