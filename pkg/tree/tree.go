// Package tree provides the hierarchical data model shared by the JSON,
// YAML, and XML adapters: named nodes with ordered children, optional
// attributes, and scalar values.
//
// Paths address nodes by name from the root, with "/" or ";" as
// separators ("properties/titles" and "properties;titles" are the same
// path). Queries return all occurrences in document order; value
// operations take an all-occurrences flag.
package tree

import (
	"encoding/json"
	"strings"

	"github.com/tabkit/tabkit/pkg/errors"
	"github.com/tabkit/tabkit/pkg/filter"
)

// ImplicitPath is the synthetic header name filter rules may reference
// on tree containers. It evaluates against a node's path.
const ImplicitPath = "XPath"

// Kind classifies a node's value.
type Kind int

const (
	// KindObject nodes hold named children and no value.
	KindObject Kind = iota
	// KindArray nodes hold unnamed children in order.
	KindArray
	// KindString holds scalar text.
	KindString
	// KindNumber holds the source's literal number text.
	KindNumber
	// KindBool holds "true" or "false".
	KindBool
	// KindNull marks an explicit null.
	KindNull
)

// Attr is one attribute of an element node.
type Attr struct {
	Key   string
	Value string
}

// Node is one element of the tree.
type Node struct {
	Name     string
	Kind     Kind
	Value    string
	Attrs    []Attr
	Children []*Node

	parent *Node
}

// NewNode creates a node without a value.
func NewNode(name string, kind Kind) *Node {
	return &Node{Name: name, Kind: kind}
}

// NewScalar creates a leaf node.
func NewScalar(name string, kind Kind, value string) *Node {
	return &Node{Name: name, Kind: kind, Value: value}
}

// AddChild appends a child and wires its parent pointer.
func (n *Node) AddChild(child *Node) *Node {
	child.parent = n
	n.Children = append(n.Children, child)
	return child
}

// Child returns the first child with the given name, nil when absent.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Attr returns the value of an attribute.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute, keeping declaration order.
func (n *Node) SetAttr(key, value string) {
	for i, a := range n.Attrs {
		if a.Key == key {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Value: value})
}

// Path returns the node's path from the root, "/"-joined. The root node
// itself has an empty path.
func (n *Node) Path() string {
	if n.parent == nil {
		return ""
	}
	parent := n.parent.Path()
	if parent == "" {
		return n.Name
	}
	if n.Name == "" {
		return parent
	}
	return parent + "/" + n.Name
}

// IsLeaf reports whether the node holds a scalar value.
func (n *Node) IsLeaf() bool {
	return n.Kind != KindObject && n.Kind != KindArray
}

// Text returns the node rendered for value queries: scalar kinds return
// their raw text, composite kinds their canonical JSON.
func (n *Node) Text() string {
	if n.IsLeaf() {
		if n.Kind == KindNull {
			return ""
		}
		return n.Value
	}
	return n.JSON()
}

// JSON renders the node's value as canonical compact JSON.
func (n *Node) JSON() string {
	var sb strings.Builder
	n.writeJSON(&sb)
	return sb.String()
}

func (n *Node) writeJSON(sb *strings.Builder) {
	switch n.Kind {
	case KindObject:
		sb.WriteByte('{')
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteByte(',')
			}
			key, _ := json.Marshal(c.Name)
			sb.Write(key)
			sb.WriteByte(':')
			c.writeJSON(sb)
		}
		sb.WriteByte('}')
	case KindArray:
		sb.WriteByte('[')
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteByte(',')
			}
			c.writeJSON(sb)
		}
		sb.WriteByte(']')
	case KindString:
		s, _ := json.Marshal(n.Value)
		sb.Write(s)
	case KindNumber, KindBool:
		sb.WriteString(n.Value)
	case KindNull:
		sb.WriteString("null")
	}
}

// SplitPath splits a path on "/" and ";" separators, dropping empty
// segments.
func SplitPath(path string) []string {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == ';'
	})
	return parts
}

// Tree wraps a root node with path-based operations. The root is an
// unnamed object; document elements are its children.
type Tree struct {
	Root *Node
}

// New creates a tree with an empty object root.
func New() *Tree {
	return &Tree{Root: NewNode("", KindObject)}
}

// Find returns all nodes matching a path, in document order. Array
// nodes are transparent: a segment descends through unnamed array
// elements into their children.
func (t *Tree) Find(path string) []*Node {
	parts := SplitPath(path)
	if len(parts) == 0 {
		return []*Node{t.Root}
	}
	current := []*Node{t.Root}
	for _, part := range parts {
		var next []*Node
		for _, n := range current {
			next = append(next, childrenNamed(n, part)...)
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// childrenNamed collects children with the given name, descending
// through unnamed array elements.
func childrenNamed(n *Node, name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		switch {
		case c.Name == name:
			out = append(out, c)
		case c.Name == "" && (c.Kind == KindObject || c.Kind == KindArray):
			out = append(out, childrenNamed(c, name)...)
		}
	}
	return out
}

// Value returns the first matching node's text, empty when the path
// resolves to nothing.
func (t *Tree) Value(path string) string {
	nodes := t.Find(path)
	if len(nodes) == 0 {
		return ""
	}
	return nodes[0].Text()
}

// Values returns the text of every node matching the path.
func (t *Tree) Values(path string) []string {
	nodes := t.Find(path)
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Text())
	}
	return out
}

// Attributes returns the named values found under every node matching
// parentPath: element attributes first, then scalar children carrying
// the name.
func (t *Tree) Attributes(parentPath, name string) []string {
	var out []string
	for _, n := range t.Find(parentPath) {
		if v, ok := n.Attr(name); ok {
			out = append(out, v)
		}
		for _, c := range n.Children {
			if c.Name == name && c.IsLeaf() {
				out = append(out, c.Text())
			}
		}
	}
	return out
}

// SetValue rewrites the value of nodes matching the path. With all
// false only the first occurrence changes. It returns the number of
// nodes updated; zero means the path resolved to nothing.
func (t *Tree) SetValue(path, value string, all bool) int {
	updated := 0
	for _, n := range t.Find(path) {
		if !n.IsLeaf() {
			continue
		}
		n.Kind = KindString
		n.Value = value
		updated++
		if !all {
			break
		}
	}
	return updated
}

// AddValue appends a scalar node at the path, creating intermediate
// object nodes as needed. The last segment names the new node; an
// existing node with that name is not reused.
func (t *Tree) AddValue(path, value string) *Node {
	parts := SplitPath(path)
	if len(parts) == 0 {
		return nil
	}
	current := t.Root
	for _, part := range parts[:len(parts)-1] {
		child := current.Child(part)
		if child == nil || child.IsLeaf() {
			child = current.AddChild(NewNode(part, KindObject))
		}
		current = child
	}
	return current.AddChild(NewScalar(parts[len(parts)-1], KindString, value))
}

// Delete removes nodes matching the path from their parents. With all
// false only the first occurrence is removed. It returns the number of
// nodes removed.
func (t *Tree) Delete(path string, all bool) int {
	removed := 0
	for _, n := range t.Find(path) {
		if detach(n) {
			removed++
		}
		if !all {
			break
		}
	}
	return removed
}

func detach(n *Node) bool {
	p := n.parent
	if p == nil {
		return false
	}
	for i, c := range p.Children {
		if c == n {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			n.parent = nil
			return true
		}
	}
	return false
}

// Walk visits every node below the root in document order. Returning
// false from fn stops the walk.
func (t *Tree) Walk(fn func(n *Node) bool) {
	walk(t.Root, fn)
}

func walk(n *Node, fn func(*Node) bool) bool {
	for _, c := range n.Children {
		if !fn(c) {
			return false
		}
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

// Leaves returns the paths of all scalar nodes in document order.
func (t *Tree) Leaves() []string {
	var out []string
	t.Walk(func(n *Node) bool {
		if n.IsLeaf() && n.Name != "" {
			out = append(out, n.Path())
		}
		return true
	})
	return out
}

// Select returns the scalar nodes matching a filter. Rules referencing
// ImplicitPath evaluate against node paths; any other header is a hard
// error. A nil or empty filter selects every leaf.
func (t *Tree) Select(fltr *filter.Filter) ([]*Node, error) {
	for _, rule := range fltr.Rules() {
		if rule.Header != ImplicitPath {
			return nil, errors.NoSuchHeader(rule.Header, []string{ImplicitPath})
		}
	}

	var out []*Node
	t.Walk(func(n *Node) bool {
		if !n.IsLeaf() {
			return true
		}
		path := n.Path()
		for _, rule := range fltr.Rules() {
			if !rule.Match(path) {
				return true
			}
		}
		out = append(out, n)
		return true
	})
	return out, nil
}
