package ports

import (
	"encoding/xml"
	"strings"
)

// xmlNode is a minimal parsed XML tree node; used only to walk a dotted
// path, not as a general-purpose XML API.
type xmlNode struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children []*xmlNode
}

// ACORDXMLLookup resolves dotted paths against a parsed ACORD 103/121
// document (spec.md §4.3 IndexField.Reference, sources "ACORD103" /
// "ACORD121"). No third-party XML library in the retrieval pack offers
// dotted-path lookup, so this is built directly on encoding/xml (see
// DESIGN.md standard-library justifications).
type ACORDXMLLookup struct{}

func (ACORDXMLLookup) Lookup(doc []byte, dottedPath string) (string, bool) {
	root, err := parseXMLTree(doc)
	if err != nil || root == nil {
		return "", false
	}
	segments := strings.Split(dottedPath, ".")
	node := root
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if attr, ok := strings.CutPrefix(seg, "@"); ok {
			if i != len(segments)-1 {
				return "", false
			}
			v, ok := node.Attrs[attr]
			return v, ok
		}
		child := findChild(node, seg)
		if child == nil {
			return "", false
		}
		node = child
	}
	return strings.TrimSpace(node.Text), true
}

func findChild(n *xmlNode, name string) *xmlNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func parseXMLTree(doc []byte) (*xmlNode, error) {
	dec := xml.NewDecoder(strings.NewReader(string(doc)))
	var stack []*xmlNode
	var root *xmlNode
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node := &xmlNode{Name: t.Name.Local, Attrs: map[string]string{}}
			for _, a := range t.Attr {
				node.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			} else {
				root = node
			}
			stack = append(stack, node)
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return root, nil
}

var _ XMLLookup = ACORDXMLLookup{}
