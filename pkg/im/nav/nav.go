// Package nav is a keyboard-navigable list inside a scroll container, built
// on the im primitives. The selected row is kept in view after each pass.
package nav

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"

	"github.com/evanschultz/float-notetree/pkg/dom"
	"github.com/evanschultz/float-notetree/pkg/im"
)

// KeyMap holds the bindings a list reacts to while it has focus.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
}

// DefaultKeyMap returns vim-flavoured bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Home:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
		End:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Home, k.End}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.PageUp, k.PageDown, k.Home, k.End}}
}

// Options configure a list.
type Options struct {
	// Height of the scroll container in rows; 0 leaves it unbounded.
	Height int
	// AllowNone lets the selection rest at -1.
	AllowNone bool
	Keys      KeyMap
	Class     string
	// Border is a border style for the container, such as "rounded".
	Border string
}

// State is the selection state of one list. It persists across passes at
// the list's position.
type State struct {
	Selected int
	Count    int

	last    int
	pending bool
	instant bool
	jump    bool
	mounted bool
}

// Select moves the selection to i and scrolls it into view instantly on the
// next pass, as a view change rather than a step.
func (s *State) Select(i int) {
	s.Selected = i
	s.jump = true
}

// ScrollPending reports whether a scroll to the selection is waiting for the
// selected row to be laid out.
func (s *State) ScrollPending() bool { return s.pending }

func (s *State) clamp(allowNone bool) {
	lo := 0
	if allowNone {
		lo = -1
	}
	switch {
	case s.Count == 0:
		s.Selected = -1
	case s.Selected < lo:
		s.Selected = lo
	case s.Selected >= s.Count:
		s.Selected = s.Count - 1
	}
}

// List is the per-pass handle returned by Begin.
type List struct {
	State *State
	El    *im.El
	// Key is the key event the list consumed this pass, if any.
	Key *dom.Event

	opts     Options
	rows     map[int]*dom.Node
	index    int
	selected *dom.Node
}

// Row describes the item opened by Item.
type Row struct {
	Index    int
	Selected bool
	El       *im.El
}

// Begin opens a list of count rows. The container is focusable and handles
// navigation keys while focused.
func Begin(c *im.Ctx, count int, opts Options) *List {
	if len(opts.Keys.Up.Keys()) == 0 {
		opts.Keys = DefaultKeyMap()
	}
	el := im.Begin(c, "div")
	st := im.State(c, func() *State { return &State{last: -2} })
	if el.First {
		el.Node.SetAttr("tabindex", "0")
		el.Node.SetStyle("overflow", "scroll")
		el.Node.SetClass("nav-list", true)
		if opts.Class != "" {
			el.Node.SetClass(opts.Class, true)
		}
		if opts.Border != "" {
			el.Node.SetStyle("border", opts.Border)
		}
	}
	height := ""
	if opts.Height > 0 {
		height = strconv.Itoa(opts.Height)
	}
	im.Style(c, el, "height", height)

	l := &List{State: st, El: el, opts: opts, rows: map[int]*dom.Node{}}
	st.Count = count
	st.clamp(opts.AllowNone)
	if ev := im.On(c, el.Node, "keydown"); ev != nil && !ev.DefaultPrevented() {
		if l.handleKey(ev) {
			ev.PreventDefault()
			l.Key = ev
		}
	}
	im.Class(c, el, "focused", c.Doc().ActiveElement() == el.Node)
	im.BeginList(c)
	return l
}

func (l *List) handleKey(ev *dom.Event) bool {
	msg, ok := ev.Data.(tea.KeyMsg)
	if !ok {
		return false
	}
	st, k := l.State, l.opts.Keys
	page := max(l.opts.Height-1, 1)
	switch {
	case key.Matches(msg, k.Up):
		st.Selected--
	case key.Matches(msg, k.Down):
		st.Selected++
	case key.Matches(msg, k.PageUp):
		st.Selected -= page
	case key.Matches(msg, k.PageDown):
		st.Selected += page
	case key.Matches(msg, k.Home):
		st.Selected = 0
	case key.Matches(msg, k.End):
		st.Selected = st.Count - 1
	default:
		return false
	}
	if st.Count > 0 && !l.opts.AllowNone && st.Selected < 0 {
		st.Selected = 0
	}
	st.clamp(l.opts.AllowNone)
	return true
}

// Focus moves document focus to the list container.
func (l *List) Focus(c *im.Ctx) { c.Doc().Focus(l.El.Node) }

// Item opens the row for key. The row element is keyed, so its node and
// state follow the key when rows are reordered.
func (l *List) Item(c *im.Ctx, k any) Row {
	im.BeginKey(c, k)
	el := im.Begin(c, "div")
	i := l.index
	l.index++
	sel := i == l.State.Selected
	im.Class(c, el, "selected", sel)
	l.rows[i] = el.Node
	if sel {
		l.selected = el.Node
	}
	return Row{Index: i, Selected: sel, El: el}
}

// EndItem closes the row opened by Item.
func (l *List) EndItem(c *im.Ctx) {
	im.End(c)
	im.EndKey(c)
}

// End closes the list and scrolls the selected row into view if the
// selection moved. A jump or the first render scrolls instantly, a step
// scrolls smoothly. When the selected row has not been rendered yet the
// scroll is retried on the next pass.
func (l *List) End(c *im.Ctx) {
	im.EndList(c)
	st := l.State
	if st.Selected != st.last || st.jump {
		st.pending = true
		st.instant = st.instant || st.jump || !st.mounted
		st.last = st.Selected
		st.jump = false
	}
	st.mounted = true
	if st.pending {
		l.scrollToSelected()
	}
	im.End(c)
}

// RowNode returns the node of the row rendered at index i this pass.
func (l *List) RowNode(i int) *dom.Node { return l.rows[i] }

func (l *List) scrollToSelected() {
	st := l.State
	box := l.El.Node
	if st.Selected < 0 {
		box.ScrollTo(0, behaviour(st.instant))
		st.pending, st.instant = false, false
		return
	}
	row := l.selected
	if row == nil || !row.IsConnected() || row.Hidden() {
		return
	}
	content := box.ContentBox()
	r := row.Rect()
	top := r.Y - content.Y
	view := box.ClientHeight()
	cur := box.ScrollTarget()
	y := cur
	switch {
	case top < cur:
		y = top
	case top+r.H > cur+view:
		y = top + r.H - view
	}
	if y != cur {
		box.ScrollTo(y, behaviour(st.instant))
	}
	st.pending, st.instant = false, false
}

func behaviour(instant bool) dom.ScrollBehavior {
	if instant {
		return dom.Instant
	}
	return dom.Smooth
}
