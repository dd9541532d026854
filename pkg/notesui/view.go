package notesui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/evanschultz/float-notetree/pkg/dom"
	"github.com/evanschultz/float-notetree/pkg/im"
	"github.com/evanschultz/float-notetree/pkg/im/nav"
	"github.com/evanschultz/float-notetree/pkg/notes"
)

const (
	debugLines  = 6
	durationCol = 12
)

type rowCache struct {
	rows []notes.Row
}

// View renders one pass of the application.
func (a *App) View(c *im.Ctx, h Host) {
	if a.saver == nil {
		a.saver = im.NewDebouncer(h, a.opts.SaveDelay)
	}
	doc := c.Doc()
	width, height := doc.Viewport()
	now := a.opts.Now()

	root := im.Begin(c, "div")
	if root.First {
		root.Node.SetClass("app", true)
	}
	if ev := im.On(c, root.Node, "keydown"); ev != nil {
		a.handleKey(ev, h)
	}
	durations := a.tree.Durations(now)

	a.header(c, durations)
	a.searchBar(c)

	showDebug := a.opts.Debug != nil && a.opts.Debug.IsVisible()
	chrome := 3
	if a.mode == modeSearch {
		chrome++
	}
	if showDebug {
		chrome += debugLines + 3
	}
	paneH := max(height-chrome, 3)

	main := im.Begin(c, "div")
	if main.First {
		main.Node.SetStyle("flex-direction", "row")
	}
	side := im.Begin(c, "div")
	im.Style(c, side, "width", strconv.Itoa(max(width*3/5, 20)))
	listNode := a.noteList(c, paneH, durations)
	im.End(c)

	detail := im.Begin(c, "div")
	if detail.First {
		detail.Node.SetStyle("border", "rounded")
		detail.Node.SetClass("detail", true)
	}
	im.Style(c, detail, "height", strconv.Itoa(paneH))
	im.Boundary(c, func(c *im.Ctx) error {
		return a.detail(c, durations)
	}, nil)
	im.End(c)
	im.End(c)

	a.statusLine(c)
	if im.If(c, showDebug) {
		a.debugPanel(c)
	}
	im.EndIf(c)

	a.help.Width = width
	bindings := append(keys.ShortHelp(), nav.DefaultKeyMap().ShortHelp()...)
	helpEl := im.Begin(c, "div")
	im.Class(c, helpEl, "muted", true)
	im.Text(c, a.help.ShortHelpView(bindings))
	im.End(c)

	im.End(c)

	// Whatever held focus was torn down: give it back to the list
	if doc.ActiveElement() == nil {
		doc.Focus(listNode)
		h.RequestPass()
	}
	a.armClock(h)
}

func (a *App) header(c *im.Ctx, durations map[string]time.Duration) {
	hd := im.Begin(c, "div")
	if hd.First {
		hd.Node.SetStyle("flex-direction", "row")
	}
	title := im.Begin(c, "span")
	if title.First {
		title.Node.SetClass("title", true)
		title.Node.SetStyle("width", "16")
	}
	im.Text(c, "float-notetree")
	im.End(c)

	summary := fmt.Sprintf("%d notes · %s tracked", a.tree.Len(), notes.FormatDuration(a.tree.Total(a.tree.Root, durations)))
	if cur := a.tree.Current(); cur != nil {
		summary += " · running: " + firstLine(a.tree.Notes[cur.NoteID].Text)
	}
	im.Text(c, summary)
	im.End(c)
}

func (a *App) searchBar(c *im.Ctx) {
	if im.If(c, a.mode == modeSearch) {
		in := im.Begin(c, "input")
		if in.First {
			in.Node.SetAttr("placeholder", "search notes")
			in.Node.SetClass("search", true)
			c.Doc().Focus(in.Node)
		}
		if ev := im.On(c, in.Node, "input"); ev != nil {
			a.query = in.Node.Value()
		}
		im.End(c)
	}
	im.EndIf(c)
}

// rows returns the notes to list: search hits while searching, the
// outline otherwise. They are recomputed only when the tree or the query
// changed.
func (a *App) rows(c *im.Ctx) []notes.Row {
	rc := im.State(c, func() *rowCache { return &rowCache{} })
	searching := a.mode == modeSearch && strings.TrimSpace(a.query) != ""
	if im.MemoMany(c, a.version, a.query, searching) {
		if searching {
			hits := a.tree.Search(a.query)
			rc.rows = make([]notes.Row, len(hits))
			for i, m := range hits {
				rc.rows[i] = notes.Row{ID: m.ID}
			}
		} else {
			rc.rows = a.tree.Flatten()
		}
	}
	return rc.rows
}

func indexOf(rows []notes.Row, id string) int {
	for i, r := range rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (a *App) noteList(c *im.Ctx, height int, durations map[string]time.Duration) *dom.Node {
	rows := a.rows(c)
	l := nav.Begin(c, len(rows), nav.Options{Height: height, Border: "rounded", Class: "capture-tab"})
	a.list = l.State
	if a.follow != "" {
		if i := indexOf(rows, a.follow); i >= 0 {
			l.State.Selected = i
		}
		a.follow = ""
	}
	if a.jump != "" {
		if i := indexOf(rows, a.jump); i >= 0 {
			l.State.Select(i)
		}
		a.jump = ""
	}

	a.selected = ""
	var running string
	if cur := a.tree.Current(); cur != nil {
		running = cur.NoteID
	}
	for _, r := range rows {
		n := a.tree.Notes[r.ID]
		row := l.Item(c, r.ID)
		if row.El.First {
			row.El.Node.SetStyle("flex-direction", "row")
		}
		im.Class(c, row.El, "accent", r.ID == running)
		if row.Selected {
			a.selected = r.ID
		}

		if im.If(c, a.mode == modeEdit && a.editing == r.ID) {
			a.editInput(c)
		} else if im.Else(c) {
			im.Text(c, rowLabel(n, r.Depth))
			dur := im.Begin(c, "span")
			if dur.First {
				dur.Node.SetStyle("width", strconv.Itoa(durationCol))
				dur.Node.SetClass("muted", true)
			}
			im.Text(c, durationLabel(a.tree, n, durations))
			im.End(c)
		}
		im.EndIf(c)
		l.EndItem(c)
	}
	node := l.El.Node
	l.End(c)
	return node
}

func firstLine(text string) string {
	first, _, _ := strings.Cut(text, "\n")
	return first
}

func rowLabel(n *notes.Note, depth int) string {
	bullet := "•"
	if n.Collapsed {
		bullet = "▸"
	}
	text := notes.StripAnnotations(firstLine(n.Text))
	if kind, rest := notes.Kind(text); kind != "" {
		text = kind + ": " + rest
	}
	if text == "" {
		text = "…"
	}
	return strings.Repeat("  ", depth) + bullet + " " + text
}

func durationLabel(t *notes.Tree, n *notes.Note, durations map[string]time.Duration) string {
	spent := t.Total(n.ID, durations)
	est, hasEst := notes.Estimate(n.Text)
	switch {
	case hasEst:
		return notes.FormatDuration(spent) + "/" + notes.FormatDuration(est)
	case spent > 0:
		return notes.FormatDuration(spent)
	}
	return ""
}

// editInput renders the input that replaces a row while it is edited.
// Typing is kept away from the list's navigation keys.
func (a *App) editInput(c *im.Ctx) {
	in := im.Begin(c, "input")
	stop := im.State(c, func() func() {
		return in.Node.AddEventListener("keydown", func(ev *dom.Event) {
			switch ev.Key {
			case "enter", "esc", "ctrl+c":
			default:
				ev.StopPropagation()
			}
		})
	})
	im.OnDestroy(c, stop)
	if ev := im.On(c, in.Node, "input"); ev != nil {
		a.draft = in.Node.Value()
	}
	im.Value(c, in, a.draft)
	if in.First {
		c.Doc().Focus(in.Node)
	}
	im.End(c)
}

// detail renders the selected note. Errors are shown in place by the
// enclosing boundary.
func (a *App) detail(c *im.Ctx, durations map[string]time.Duration) error {
	if im.If(c, a.selected == "") {
		im.Text(c, "no note selected")
	} else if im.Else(c) {
		if err := a.noteDetail(c, durations); err != nil {
			return err
		}
	}
	im.EndIf(c)
	return nil
}

// annotationKey tells repeated annotation keys apart by occurrence.
type annotationKey struct {
	key string
	n   int
}

func (a *App) noteDetail(c *im.Ctx, durations map[string]time.Duration) error {
	n, err := a.tree.Get(a.selected)
	if err != nil {
		return err
	}
	path, err := a.tree.Path(n.ID)
	if err != nil {
		return err
	}
	crumbs := make([]string, 0, len(path))
	for _, id := range path[:len(path)-1] {
		crumbs = append(crumbs, notes.StripAnnotations(firstLine(a.tree.Notes[id].Text)))
	}

	trail := im.Begin(c, "div")
	im.Class(c, trail, "muted", true)
	im.Text(c, strings.Join(crumbs, " › "))
	im.End(c)

	im.Begin(c, "markdown")
	im.Text(c, n.Text)
	im.End(c)

	meta := im.Begin(c, "div")
	im.Class(c, meta, "muted", true)
	im.Text(c, "spent "+notes.FormatDuration(a.tree.Total(n.ID, durations)))

	v, hasEst := notes.AnnotationMap(n.Text)["est"]
	if im.If(c, hasEst) {
		est, ok := notes.Estimate(n.Text)
		if !ok {
			return fmt.Errorf("invalid estimate %q", v)
		}
		im.Text(c, "estimate "+notes.FormatDuration(est))
	}
	im.EndIf(c)

	im.Begin(c, "div")
	seen := map[string]int{}
	im.BeginList(c)
	for _, an := range notes.Annotations(n.Text) {
		im.BeginKey(c, annotationKey{an.Key, seen[an.Key]})
		seen[an.Key]++
		im.Text(c, an.Key+": "+an.Value)
		im.EndKey(c)
	}
	im.EndList(c)
	im.End(c)

	im.Text(c, "edited "+n.Edited.Format("2006-01-02 15:04"))
	im.End(c)
	return nil
}

func (a *App) statusLine(c *im.Ctx) {
	st := im.Begin(c, "div")
	im.Class(c, st, "error", a.status != "")
	text := a.status
	if text == "" {
		switch a.mode {
		case modeEdit:
			text = "editing · enter to save, esc to cancel"
		case modeSearch:
			text = "search · enter to jump, esc to close"
		}
	}
	im.Text(c, text)
	im.End(c)
}

func (a *App) debugPanel(c *im.Ctx) {
	p := im.Begin(c, "div")
	if p.First {
		p.Node.SetStyle("border", "normal")
		p.Node.SetClass("debug", true)
	}
	s := c.Stats()
	im.Text(c, fmt.Sprintf("passes %d · slots %d · groups +%d -%d",
		s.Passes, s.SlotsCreated, s.GroupsCreated, s.GroupsDestroyed))

	for _, m := range a.opts.Debug.Messages(debugLines) {
		line := im.Begin(c, "div")
		if line.First {
			line.Node.SetStyle("flex-direction", "row")
		}
		ts := im.Begin(c, "span")
		if ts.First {
			ts.Node.SetStyle("width", "11")
			ts.Node.SetClass("muted", true)
		}
		im.Text(c, m.Stamp())
		im.End(c)

		typ := im.Begin(c, "span")
		im.Style(c, typ, "width", strconv.Itoa(len(m.Type)+1))
		for _, class := range []string{"error", "accent", "muted"} {
			im.Class(c, typ, class, class == m.Level.Class())
		}
		im.Text(c, m.Type)
		im.End(c)

		im.Text(c, m.Content)
		im.End(c)
	}
	im.End(c)
}
