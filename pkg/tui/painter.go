package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/evanschultz/float-notetree/pkg/dom"
)

type cell struct {
	s  string // "" marks the right half of a wide rune
	st cellStyle
}

// Painter draws a laid-out document into a string of terminal lines.
type Painter struct {
	Theme    Theme
	Renderer *lipgloss.Renderer
	// Cursor is the caret position, in runes, inside the focused input.
	Cursor int

	w, h   int
	cells  []cell
	active *dom.Node
}

// NewPainter creates a painter that styles cells through r
func NewPainter(r *lipgloss.Renderer, theme Theme) *Painter {
	return &Painter{Theme: theme, Renderer: r}
}

// Paint lays out doc if needed and renders it at the viewport size.
func (p *Painter) Paint(doc *dom.Document) string {
	doc.Layout()
	p.w, p.h = doc.Viewport()
	p.active = doc.ActiveElement()
	p.cells = make([]cell, p.w*p.h)
	for i := range p.cells {
		p.cells[i].s = " "
	}
	p.paintNode(doc.Body(), dom.Rect{W: p.w, H: p.h}, 0, cellStyle{})
	return p.flush()
}

func (p *Painter) paintNode(n *dom.Node, clip dom.Rect, dy int, st cellStyle) {
	if n.Hidden() {
		return
	}
	r := n.Rect()
	r.Y -= dy
	if !n.IsElement() {
		p.lines(n.Lines(), r, clip, st)
		return
	}
	st = p.Theme.apply(st, n.Classes())
	if r.Intersect(clip).W == 0 {
		return
	}

	if b, ok := borderFor(n.BorderStyle()); ok {
		bst := st
		bst.reverse = false
		if n == p.active || n.HasClass("focused") {
			bst.fg = p.Theme.Accent
		} else if bst.fg == "" {
			bst.fg = p.Theme.Muted
		}
		p.border(b, r, clip, bst)
		if n.Scrollable() {
			p.scrollbar(n, r, clip, bst)
		}
	}

	content := n.ContentBox()
	content.Y -= dy
	switch n.Tag() {
	case "markdown":
		p.lines(n.Lines(), content, clip.Intersect(content), st)
		return
	case "input":
		p.input(n, content, clip.Intersect(content), st)
		return
	}

	// Fill so that reversed or coloured blocks span their whole width
	if st.reverse {
		p.fill(content, clip, st)
	}

	inner := clip
	childDY := dy
	if n.Scrollable() {
		inner = clip.Intersect(content)
		childDY += n.ScrollTop()
	}
	for _, c := range n.Children() {
		p.paintNode(c, inner, childDY, st)
	}
}

func (p *Painter) set(x, y int, s string, st cellStyle, clip dom.Rect) int {
	w := runewidth.StringWidth(s)
	if w == 0 {
		return 0
	}
	if !clip.Contains(x, y) || x < 0 || y < 0 || x >= p.w || y >= p.h {
		return w
	}
	if w == 2 && !clip.Contains(x+1, y) {
		s, w = " ", 1
	}
	p.cells[y*p.w+x] = cell{s: s, st: st}
	if w == 2 && x+1 < p.w {
		p.cells[y*p.w+x+1] = cell{st: st}
	}
	return w
}

func (p *Painter) text(x, y int, s string, st cellStyle, clip dom.Rect) {
	for _, r := range s {
		x += p.set(x, y, string(r), st, clip)
	}
}

func (p *Painter) lines(lines []string, r, clip dom.Rect, st cellStyle) {
	for i, l := range lines {
		if i >= r.H && r.H > 0 {
			break
		}
		p.text(r.X, r.Y+i, truncate.String(l, uint(max(r.W, 0))), st, clip)
	}
}

func (p *Painter) fill(r, clip dom.Rect, st cellStyle) {
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			p.set(x, y, " ", st, clip)
		}
	}
}

func (p *Painter) border(b lipgloss.Border, r, clip dom.Rect, st cellStyle) {
	if r.W < 2 || r.H < 2 {
		return
	}
	right, bottom := r.Right()-1, r.Bottom()-1
	p.set(r.X, r.Y, b.TopLeft, st, clip)
	p.set(right, r.Y, b.TopRight, st, clip)
	p.set(r.X, bottom, b.BottomLeft, st, clip)
	p.set(right, bottom, b.BottomRight, st, clip)
	for x := r.X + 1; x < right; x++ {
		p.set(x, r.Y, b.Top, st, clip)
		p.set(x, bottom, b.Bottom, st, clip)
	}
	for y := r.Y + 1; y < bottom; y++ {
		p.set(r.X, y, b.Left, st, clip)
		p.set(right, y, b.Right, st, clip)
	}
}

// scrollbar draws a thumb on the right border of a scroll container.
func (p *Painter) scrollbar(n *dom.Node, r, clip dom.Rect, st cellStyle) {
	track := r.H - 2
	total, view := n.ScrollHeight(), n.ClientHeight()
	if track <= 0 || total <= view || view <= 0 {
		return
	}
	size := max(track*view/total, 1)
	pos := (track - size) * n.ScrollTop() / max(total-view, 1)
	x := r.Right() - 1
	for i := 0; i < size; i++ {
		p.set(x, r.Y+1+pos+i, "┃", st, clip)
	}
}

// input draws the value of an input, scrolled so that the caret is visible
// when the input is focused.
func (p *Painter) input(n *dom.Node, r, clip dom.Rect, st cellStyle) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	value := []rune(n.Value())
	if n != p.active {
		if len(value) == 0 {
			ph := st
			ph.fg, ph.faint = p.Theme.Muted, true
			p.text(r.X, r.Y, truncate.String(n.Attr("placeholder"), uint(r.W)), ph, clip)
			return
		}
		p.text(r.X, r.Y, truncate.String(string(value), uint(r.W)), st, clip)
		return
	}

	cur := min(max(p.Cursor, 0), len(value))
	start := 0
	for runewidth.StringWidth(string(value[start:cur])) >= r.W && start < cur {
		start++
	}
	x := r.X
	for i := start; i <= len(value) && x < r.Right(); i++ {
		s, cs := " ", st
		if i < len(value) {
			s = string(value[i])
		}
		if i == cur {
			cs.reverse = !cs.reverse
		}
		x += p.set(x, r.Y, s, cs, clip)
		if i == len(value) {
			break
		}
	}
}

// flush renders cell rows, grouping runs of equal style into one lipgloss
// render. Trailing unstyled blanks are dropped.
func (p *Painter) flush() string {
	rows := make([]string, p.h)
	for y := 0; y < p.h; y++ {
		row := p.cells[y*p.w : (y+1)*p.w]
		end := len(row)
		for end > 0 && (row[end-1].s == " " && row[end-1].st == cellStyle{}) {
			end--
		}
		var sb, run strings.Builder
		var cur cellStyle
		for x := 0; x < end; x++ {
			c := row[x]
			if c.st != cur && run.Len() > 0 {
				sb.WriteString(cur.render(p.Renderer, run.String()))
				run.Reset()
			}
			cur = c.st
			run.WriteString(c.s)
		}
		if run.Len() > 0 {
			sb.WriteString(cur.render(p.Renderer, run.String()))
		}
		rows[y] = sb.String()
	}
	return strings.Join(rows, "\n")
}
