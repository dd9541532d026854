package dom

// Focusable reports whether n can hold focus: inputs, and elements with a
// tabindex attribute.
func Focusable(n *Node) bool {
	if n == nil || n.typ != ElementNode {
		return false
	}
	return n.tag == "input" || n.HasAttr("tabindex")
}

// ActiveElement returns the focused node, or nil.
func (d *Document) ActiveElement() *Node { return d.active }

// Focus moves focus to n, firing blur on the previous element and focus on
// n. Nodes that are detached or not focusable are ignored.
func (d *Document) Focus(n *Node) {
	if n == d.active || !Focusable(n) || !n.IsConnected() {
		return
	}
	d.Blur()
	d.active = n
	d.mutations++
	d.Dispatch(n, &Event{Type: "focus"})
}

// Blur clears focus.
func (d *Document) Blur() {
	prev := d.active
	if prev == nil {
		return
	}
	d.active = nil
	d.mutations++
	d.Dispatch(prev, &Event{Type: "blur"})
}

// Focusables returns the connected focusable nodes in document order.
func (d *Document) Focusables() []*Node {
	var out []*Node
	var visit func(n *Node)
	visit = func(n *Node) {
		if n.typ != ElementNode || n.styles["display"] == "none" {
			return
		}
		if Focusable(n) {
			out = append(out, n)
		}
		for _, c := range n.children {
			visit(c)
		}
	}
	visit(d.body)
	return out
}
