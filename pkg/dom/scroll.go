package dom

import "time"

// ScrollBehavior selects between jumping and animating to a scroll offset.
type ScrollBehavior uint8

const (
	Instant ScrollBehavior = iota
	Smooth
)

type scrollState struct {
	top    int
	target int
	height int
}

// ScrollTop returns the current vertical scroll offset of n's content.
func (n *Node) ScrollTop() int { return n.scroll.top }

// ScrollTarget returns where n is scrolling to; it equals ScrollTop when no
// smooth scroll is in flight.
func (n *Node) ScrollTarget() int {
	if _, ok := n.doc.animating[n]; ok {
		return n.scroll.target
	}
	return n.scroll.top
}

// ScrollHeight returns the height of n's content.
func (n *Node) ScrollHeight() int {
	n.doc.Layout()
	return n.scroll.height
}

// ClientHeight returns the visible height of n's content box.
func (n *Node) ClientHeight() int {
	n.doc.Layout()
	return n.layout.content.H
}

// Scrollable reports whether n clips and scrolls its content.
func (n *Node) Scrollable() bool {
	return n.typ == ElementNode && n.styles["overflow"] == "scroll"
}

func (n *Node) maxScroll() int {
	return max(n.ScrollHeight()-n.ClientHeight(), 0)
}

// ScrollTo moves n's scroll offset to y, clamped to the content. Smooth
// scrolls advance on each Document.Tick.
func (n *Node) ScrollTo(y int, behavior ScrollBehavior) {
	y = min(max(y, 0), n.maxScroll())
	if behavior == Instant {
		delete(n.doc.animating, n)
		if n.scroll.top != y {
			n.scroll.top = y
			n.doc.mutations++
		}
		return
	}
	if y == n.scroll.top {
		delete(n.doc.animating, n)
		return
	}
	n.scroll.target = y
	n.doc.animating[n] = struct{}{}
}

// Animating reports whether any smooth scroll is still in flight.
func (d *Document) Animating() bool { return len(d.animating) > 0 }

// Tick advances smooth scrolls by one frame. Each frame covers half of the
// remaining distance, and at least one row.
func (d *Document) Tick(time.Time) {
	for n := range d.animating {
		diff := n.scroll.target - n.scroll.top
		step := diff / 2
		if step == 0 {
			step = diff
		}
		n.scroll.top += step
		d.mutations++
		if n.scroll.top == n.scroll.target {
			delete(d.animating, n)
		}
	}
}

func (d *Document) clampScrolls(n *Node) {
	if n.typ != ElementNode {
		return
	}
	if n.scroll.top != 0 || n.scroll.target != 0 {
		limit := max(n.scroll.height-n.layout.content.H, 0)
		n.scroll.top = min(n.scroll.top, limit)
		n.scroll.target = min(n.scroll.target, limit)
	}
	for _, c := range n.children {
		d.clampScrolls(c)
	}
}
