// Package dom is a small single-document node tree with the parts of the
// browser DOM that the im runtime relies on: element and text nodes,
// attributes, styles, classes, bubbling events, focus, resize observers and
// a cell-based block layout with scrollable containers.
//
// A Document is not safe for concurrent use. All access happens from the
// goroutine that runs render passes.
package dom

import (
	"slices"
	"sort"
	"strings"
)

// NodeType distinguishes elements from text nodes.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
)

// Document owns a tree of nodes rooted at Body.
type Document struct {
	body      *Node
	active    *Node
	width     int
	height    int
	dirty     bool
	mutations uint64
	observers []*ResizeObserver
	animating map[*Node]struct{}

	// Shaper, when set, produces the lines of "markdown" elements.
	Shaper func(src string, width int) []string
}

// NewDocument returns an empty document with an 80x24 viewport.
func NewDocument() *Document {
	d := &Document{width: 80, height: 24, dirty: true, animating: map[*Node]struct{}{}}
	d.body = d.CreateElement("body")
	return d
}

// Body returns the root element.
func (d *Document) Body() *Node { return d.body }

// SetViewport resizes the viewport. The body is laid out at the viewport
// width and clipped to its height when painted.
func (d *Document) SetViewport(width, height int) {
	if width == d.width && height == d.height {
		return
	}
	d.width, d.height = max(width, 0), max(height, 0)
	d.invalidate()
}

// Viewport returns the viewport size.
func (d *Document) Viewport() (width, height int) { return d.width, d.height }

// Mutations counts every write to the tree or to node properties. Tests use
// it to observe whether a pass touched the document at all.
func (d *Document) Mutations() uint64 { return d.mutations }

func (d *Document) invalidate() {
	d.mutations++
	d.dirty = true
}

// CreateElement returns a detached element.
func (d *Document) CreateElement(tag string) *Node {
	return &Node{doc: d, typ: ElementNode, tag: strings.ToLower(tag)}
}

// CreateText returns a detached text node.
func (d *Document) CreateText(s string) *Node {
	return &Node{doc: d, typ: TextNode, text: s}
}

// Node is an element or a text node.
type Node struct {
	doc      *Document
	typ      NodeType
	tag      string
	text     string
	value    string
	attrs    map[string]string
	styles   map[string]string
	classes  map[string]struct{}
	parent   *Node
	children []*Node

	listeners map[string][]*listener

	layout layoutBox
	scroll scrollState
}

func (n *Node) Type() NodeType        { return n.typ }
func (n *Node) Tag() string           { return n.tag }
func (n *Node) Parent() *Node         { return n.parent }
func (n *Node) Document() *Document   { return n.doc }
func (n *Node) Children() []*Node     { return n.children }
func (n *Node) IsElement() bool       { return n.typ == ElementNode }
func (n *Node) ChildCount() int       { return len(n.children) }
func (n *Node) Child(i int) *Node     { return n.children[i] }
func (n *Node) Text() string          { return n.text }
func (n *Node) Value() string         { return n.value }
func (n *Node) Attr(k string) string  { return n.attrs[k] }
func (n *Node) Style(k string) string { return n.styles[k] }

// IsConnected reports whether n is attached to its document's body.
func (n *Node) IsConnected() bool {
	for p := n; p != nil; p = p.parent {
		if p == n.doc.body {
			return true
		}
	}
	return false
}

// Contains reports whether m is n or a descendant of n.
func (n *Node) Contains(m *Node) bool {
	for p := m; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// IndexOf returns the position of child among n's children, or -1.
func (n *Node) IndexOf(child *Node) int {
	if child == nil || child.parent != n {
		return -1
	}
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// AppendChild moves child to the end of n's children.
func (n *Node) AppendChild(child *Node) {
	n.InsertAt(len(n.children), child)
}

// InsertAt places child at position i among n's children, detaching it from
// wherever it was. If child is already at position i nothing changes. i is
// clamped to the valid range.
func (n *Node) InsertAt(i int, child *Node) {
	if i >= 0 && i < len(n.children) && n.children[i] == child {
		return
	}
	if child.parent != nil {
		child.Remove()
	}
	i = min(max(i, 0), len(n.children))
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	child.parent = n
	n.doc.invalidate()
}

// HasRunAt reports whether nodes occupy positions [i, i+len(nodes)) of n's
// children in order.
func (n *Node) HasRunAt(i int, nodes []*Node) bool {
	if i < 0 || i+len(nodes) > len(n.children) {
		return false
	}
	for j, c := range nodes {
		if n.children[i+j] != c {
			return false
		}
	}
	return true
}

// InsertRun inserts a run of nodes at position i in one operation. Nodes
// still attached somewhere are detached first.
func (n *Node) InsertRun(i int, nodes ...*Node) {
	if len(nodes) == 0 {
		return
	}
	for _, c := range nodes {
		if c.parent != nil {
			c.Remove()
		}
	}
	i = min(max(i, 0), len(n.children))
	run := make([]*Node, 0, len(n.children)+len(nodes))
	run = append(run, n.children[:i]...)
	run = append(run, nodes...)
	run = append(run, n.children[i:]...)
	n.children = run
	for _, c := range nodes {
		c.parent = n
	}
	n.doc.invalidate()
}

// RemoveChild detaches child from n. It is a no-op if child is not a child of n.
func (n *Node) RemoveChild(child *Node) {
	i := n.IndexOf(child)
	if i < 0 {
		return
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	n.doc.detached(child)
	n.doc.invalidate()
}

// Remove detaches n from its parent. Removing a detached node is a no-op.
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// TruncateChildren detaches every child at position i or later.
func (n *Node) TruncateChildren(i int) {
	if i < 0 || i >= len(n.children) {
		return
	}
	for _, c := range n.children[i:] {
		c.parent = nil
		n.doc.detached(c)
	}
	clear(n.children[i:])
	n.children = n.children[:i]
	n.doc.invalidate()
}

// detached drops document-level references into a subtree that left the tree.
func (d *Document) detached(n *Node) {
	if d.active != nil && n.Contains(d.active) {
		d.active = nil
	}
	for a := range d.animating {
		if n.Contains(a) {
			delete(d.animating, a)
		}
	}
}

// SetText replaces the text of a text node.
func (n *Node) SetText(s string) {
	if n.text == s {
		return
	}
	n.text = s
	n.doc.invalidate()
}

// TextContent concatenates the text of n and its descendants.
func (n *Node) TextContent() string {
	if n.typ == TextNode {
		return n.text
	}
	var sb strings.Builder
	for _, c := range n.children {
		sb.WriteString(c.TextContent())
	}
	return sb.String()
}

// SetValue sets the value of an input element.
func (n *Node) SetValue(s string) {
	if n.value == s {
		return
	}
	n.value = s
	n.doc.invalidate()
}

func (n *Node) SetAttr(k, v string) {
	if n.attrs == nil {
		n.attrs = map[string]string{}
	}
	n.attrs[k] = v
	n.doc.invalidate()
}

func (n *Node) HasAttr(k string) bool {
	_, ok := n.attrs[k]
	return ok
}

func (n *Node) RemoveAttr(k string) {
	if _, ok := n.attrs[k]; !ok {
		return
	}
	delete(n.attrs, k)
	n.doc.invalidate()
}

// SetStyle sets an inline style property. An empty value removes it.
func (n *Node) SetStyle(k, v string) {
	if v == "" {
		if _, ok := n.styles[k]; ok {
			delete(n.styles, k)
			n.doc.invalidate()
		}
		return
	}
	if n.styles == nil {
		n.styles = map[string]string{}
	}
	n.styles[k] = v
	n.doc.invalidate()
}

// SetClass adds or removes a class name.
func (n *Node) SetClass(name string, on bool) {
	_, has := n.classes[name]
	if has == on {
		return
	}
	if on {
		if n.classes == nil {
			n.classes = map[string]struct{}{}
		}
		n.classes[name] = struct{}{}
	} else {
		delete(n.classes, name)
	}
	n.doc.invalidate()
}

func (n *Node) HasClass(name string) bool {
	_, ok := n.classes[name]
	return ok
}

// Classes returns the class names in sorted order.
func (n *Node) Classes() []string {
	names := make([]string, 0, len(n.classes))
	for c := range n.classes {
		names = append(names, c)
	}
	sort.Strings(names)
	return names
}

// Walk visits n and its descendants in document order until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// String renders a compact outline of the subtree, for tests and debugging.
func (n *Node) String() string {
	var sb strings.Builder
	n.outline(&sb)
	return sb.String()
}

func (n *Node) outline(sb *strings.Builder) {
	if n.typ == TextNode {
		sb.WriteString(`"` + n.text + `"`)
		return
	}
	sb.WriteString("<" + n.tag)
	for _, c := range n.Classes() {
		sb.WriteString("." + c)
	}
	sb.WriteString(">")
	for _, c := range n.children {
		c.outline(sb)
	}
	sb.WriteString("</" + n.tag + ">")
}
