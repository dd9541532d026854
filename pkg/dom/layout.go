package dom

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// Rect is a box in cells. Y grows downwards.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Bottom() int { return r.Y + r.H }
func (r Rect) Right() int  { return r.X + r.W }

// Contains reports whether the cell (x, y) is inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Intersect returns the overlap of r and o; empty rects have zero size.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

type layoutBox struct {
	rect    Rect
	content Rect
	lines   []string
	border  string
	pad     int
	hidden  bool
}

// Rect returns n's border box in document coordinates, ignoring the scroll
// offsets of ancestors. Reading it lays the document out first if needed.
func (n *Node) Rect() Rect {
	n.doc.Layout()
	return n.layout.rect
}

// ContentBox returns the box inside n's border and padding.
func (n *Node) ContentBox() Rect {
	n.doc.Layout()
	return n.layout.content
}

// Lines returns the shaped lines of a text node, an input, or a markdown
// element.
func (n *Node) Lines() []string {
	n.doc.Layout()
	return n.layout.lines
}

// Hidden reports whether n was skipped by layout because it or an ancestor
// has display: none, or because it is detached.
func (n *Node) Hidden() bool {
	n.doc.Layout()
	return n.layout.hidden || !n.IsConnected()
}

// BorderStyle returns the border kind applied by layout, or "".
func (n *Node) BorderStyle() string { return n.layout.border }

// Layout recomputes geometry if the document changed since the last layout,
// then notifies resize observers.
func (d *Document) Layout() {
	if !d.dirty {
		return
	}
	d.dirty = false
	d.layoutNode(d.body, 0, 0, d.width)
	d.clampScrolls(d.body)
	d.notifyObservers()
}

func styleInt(n *Node, k string) (int, bool) {
	v := strings.TrimSpace(n.styles[k])
	if v == "" {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

func (d *Document) layoutNode(n *Node, x, y, w int) int {
	lb := &n.layout
	if n.typ == TextNode {
		lb.hidden = false
		lb.lines = wrapText(n.text, w)
		lb.rect = Rect{X: x, Y: y, W: w, H: len(lb.lines)}
		lb.content = lb.rect
		return lb.rect.H
	}
	if n.styles["display"] == "none" {
		hide(n)
		lb.rect = Rect{X: x, Y: y}
		lb.content = lb.rect
		return 0
	}
	lb.hidden = false
	if fw, ok := styleInt(n, "width"); ok {
		w = min(w, fw)
	}
	lb.border = ""
	chrome := 0
	switch b := n.styles["border"]; b {
	case "rounded", "normal", "thick", "double":
		lb.border = b
		chrome = 1
	}
	lb.pad, _ = styleInt(n, "padding")
	inset := chrome + lb.pad
	inner := Rect{X: x + inset, Y: y + inset, W: max(w-2*inset, 0)}

	var contentH int
	switch {
	case n.tag == "markdown":
		lb.lines = d.shape(n.TextContent(), inner.W)
		contentH = len(lb.lines)
		for _, c := range n.children {
			hide(c)
		}
	case n.tag == "input":
		v := n.value
		if v == "" {
			v = n.Attr("placeholder")
		}
		lb.lines = []string{v}
		contentH = 1
	case n.styles["flex-direction"] == "row":
		lb.lines = nil
		contentH = d.layoutRow(n, inner)
	default:
		lb.lines = nil
		cy := inner.Y
		for _, c := range n.children {
			cy += d.layoutNode(c, inner.X, cy, inner.W)
		}
		contentH = cy - inner.Y
	}

	h := contentH + 2*inset
	if fh, ok := styleInt(n, "height"); ok {
		h = fh
	}
	inner.H = max(h-2*inset, 0)
	lb.rect = Rect{X: x, Y: y, W: w, H: h}
	lb.content = inner
	n.scroll.height = contentH
	return h
}

// layoutRow places children side by side. Children with a width style get
// that width; the rest share what remains equally.
func (d *Document) layoutRow(n *Node, inner Rect) int {
	fixed, flex := 0, 0
	for _, c := range n.children {
		if c.typ == ElementNode && c.styles["display"] == "none" {
			continue
		}
		if fw, ok := styleInt(c, "width"); ok && c.typ == ElementNode {
			fixed += fw
		} else {
			flex++
		}
	}
	share, extra := 0, 0
	if flex > 0 {
		rest := max(inner.W-fixed, 0)
		share, extra = rest/flex, rest%flex
	}
	cx, h := inner.X, 0
	for _, c := range n.children {
		cw := share
		if fw, ok := styleInt(c, "width"); ok && c.typ == ElementNode {
			cw = fw
		} else if extra > 0 {
			cw++
			extra--
		}
		cw = max(min(cw, inner.Right()-cx), 0)
		h = max(h, d.layoutNode(c, cx, inner.Y, cw))
		cx += c.layout.rect.W
	}
	return h
}

func hide(n *Node) {
	n.layout.hidden = true
	n.layout.rect = Rect{}
	n.layout.content = Rect{}
	for _, c := range n.children {
		hide(c)
	}
}

func (d *Document) shape(src string, width int) []string {
	if d.Shaper != nil {
		return d.Shaper(src, width)
	}
	return wrapText(src, width)
}

// wrapText word-wraps s to width display cells, hard-wrapping words that do
// not fit. An empty string has no lines.
func wrapText(s string, width int) []string {
	if s == "" {
		return nil
	}
	if width <= 0 {
		return strings.Split(s, "\n")
	}
	out := wrap.String(wordwrap.String(s, width), width)
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}

// StringWidth returns the display width of s in cells.
func StringWidth(s string) int { return runewidth.StringWidth(s) }
