package opc

import (
	"bytes"
	"encoding/xml"
	"strings"

	"golang.org/x/net/html/charset"
)

// XML namespaces shared by the OOXML part formats.
const (
	NSRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSPackageRels   = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSMarkupCompat  = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

// Unmarshal decodes XML part content into v. Parts declaring a non-UTF-8
// encoding are transcoded.
func Unmarshal(data []byte, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	return dec.Decode(v)
}

// Node is a generic XML element. It is used where the schema is open-ended:
// timing trees, chart plot areas, SmartArt data models, theme colour slots.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []Node     `xml:",any"`
	Text     string     `xml:",chardata"`
}

// ParseNode decodes a whole part into a Node tree.
func ParseNode(data []byte) (*Node, error) {
	var n Node
	if err := Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Name returns the element's local name.
func (n *Node) Name() string {
	if n == nil {
		return ""
	}
	return n.XMLName.Local
}

// Attr returns the first attribute with the given local name, in any namespace.
func (n *Node) Attr(local string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// AttrNS returns the attribute with the given namespace and local name.
func (n *Node) AttrNS(space, local string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// RelID returns a relationship-namespace attribute such as r:id or r:embed.
func (n *Node) RelID(local string) string {
	v, _ := n.AttrNS(NSRelationships, local)
	return v
}

// Child returns the first direct child with the given local name.
func (n *Node) Child(local string) *Node {
	if n == nil {
		return nil
	}
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			return &n.Children[i]
		}
	}
	return nil
}

// ChildText returns the character data of the first direct child named
// local, or "" if there is none.
func (n *Node) ChildText(local string) string {
	if c := n.Child(local); c != nil {
		return c.Text
	}
	return ""
}

// ChildrenNamed returns all direct children with the given local name.
func (n *Node) ChildrenNamed(local string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			out = append(out, &n.Children[i])
		}
	}
	return out
}

// Elements returns pointers to all direct children.
func (n *Node) Elements() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, len(n.Children))
	for i := range n.Children {
		out[i] = &n.Children[i]
	}
	return out
}

// Path descends through direct children by local name and returns the
// final node, or nil if any step is missing.
func (n *Node) Path(locals ...string) *Node {
	cur := n
	for _, l := range locals {
		cur = cur.Child(l)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Find returns the first descendant (depth-first, document order) with the
// given local name.
func (n *Node) Find(local string) *Node {
	if n == nil {
		return nil
	}
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == local {
			return c
		}
		if found := c.Find(local); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant with the given local name in document order.
func (n *Node) FindAll(local string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == local {
			out = append(out, c)
		}
		out = append(out, c.FindAll(local)...)
	}
	return out
}

// TextOf concatenates the character data of every descendant element named
// local (typically "t"), in document order.
func (n *Node) TextOf(local string) string {
	var b strings.Builder
	for _, t := range n.FindAll(local) {
		b.WriteString(t.Text)
	}
	return b.String()
}
