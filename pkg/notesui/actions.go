package notesui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/evanschultz/float-notetree/pkg/dom"
	"github.com/evanschultz/float-notetree/pkg/notes"
)

// handleKey applies a keydown that bubbled up to the app container.
func (a *App) handleKey(ev *dom.Event, h Host) {
	msg, ok := ev.Data.(tea.KeyMsg)
	if !ok {
		return
	}
	if ev.Target != nil && ev.Target.Tag() == "input" && !keys.isInputKey(msg.String()) {
		return
	}

	switch a.mode {
	case modeEdit:
		a.editKey(msg, h)
	case modeSearch:
		a.searchKey(msg, h)
	default:
		a.normalKey(msg, h)
	}
}

func (a *App) normalKey(msg tea.KeyMsg, h Host) {
	now := a.opts.Now()
	sel := a.selected
	a.status = ""

	switch {
	case key.Matches(msg, keys.Quit):
		a.Flush()
		h.Quit()
		return
	case key.Matches(msg, keys.Debug):
		if a.opts.Debug != nil {
			a.opts.Debug.Toggle()
		}
		return
	case key.Matches(msg, keys.Search):
		a.mode = modeSearch
		a.query = ""
		return
	case key.Matches(msg, keys.New):
		at := sel
		if at == "" {
			at = a.tree.Root
		}
		id, err := a.tree.InsertAfter(at, "", now)
		if err != nil {
			a.fail(err)
			return
		}
		a.changed()
		a.startEdit(id, true)
		return
	case key.Matches(msg, keys.NewChild):
		parent := sel
		if parent == "" {
			parent = a.tree.Root
		}
		id, err := a.tree.Insert(parent, len(a.tree.Notes[parent].Children), "", now)
		if err != nil {
			a.fail(err)
			return
		}
		a.changed()
		a.startEdit(id, true)
		return
	}

	if sel == "" {
		return
	}
	var err error
	switch {
	case key.Matches(msg, keys.Delete):
		err = a.tree.Remove(sel)
	case key.Matches(msg, keys.Indent):
		err = a.tree.Indent(sel)
		a.follow = sel
	case key.Matches(msg, keys.Outdent):
		err = a.tree.Outdent(sel)
		a.follow = sel
	case key.Matches(msg, keys.MoveUp):
		err = a.tree.Move(sel, -1)
		a.follow = sel
	case key.Matches(msg, keys.MoveDown):
		err = a.tree.Move(sel, 1)
		a.follow = sel
	case key.Matches(msg, keys.Collapse):
		err = a.tree.ToggleCollapsed(sel)
	case key.Matches(msg, keys.Start):
		if cur := a.tree.Current(); cur != nil && cur.NoteID == sel {
			a.tree.StopActivity(now)
		} else {
			err = a.tree.StartActivity(sel, now)
		}
	case key.Matches(msg, keys.Edit):
		a.startEdit(sel, false)
		return
	case key.Matches(msg, keys.Copy):
		if err := a.opts.Copy(a.tree.Notes[sel].Text); err != nil {
			a.fail(err)
			return
		}
		a.status = "copied to clipboard"
		return
	default:
		return
	}

	switch {
	case errors.Is(err, notes.ErrNoMove):
		a.status = "can't move further"
	case err != nil:
		a.fail(err)
	default:
		a.changed()
	}
}

func (a *App) startEdit(id string, created bool) {
	a.mode = modeEdit
	a.editing = id
	a.draft = a.tree.Notes[id].Text
	a.created = ""
	if created {
		a.created = id
	}
	a.follow = id
}

func (a *App) editKey(msg tea.KeyMsg, h Host) {
	switch {
	case key.Matches(msg, keys.Edit):
		if err := a.tree.SetText(a.editing, a.draft, a.opts.Now()); err != nil {
			a.fail(err)
		} else {
			a.changed()
		}
	case key.Matches(msg, keys.Cancel):
		// A note created for this edit is dropped if it is still empty
		if n, ok := a.tree.Notes[a.created]; ok && n.Text == "" {
			if err := a.tree.Remove(a.created); err == nil {
				a.changed()
			}
		}
	case msg.String() == "ctrl+c":
		a.Flush()
		h.Quit()
		return
	default:
		return
	}
	a.follow = a.editing
	a.mode = modeNormal
	a.editing, a.created, a.draft = "", "", ""
}

func (a *App) searchKey(msg tea.KeyMsg, h Host) {
	switch k := msg.String(); {
	case k == "up" || k == "down":
		if a.list != nil {
			if k == "up" {
				a.list.Selected--
			} else {
				a.list.Selected++
			}
		}
	case key.Matches(msg, keys.Edit):
		if a.selected != "" {
			a.reveal(a.selected)
			a.jump = a.selected
		}
		a.mode, a.query = modeNormal, ""
	case key.Matches(msg, keys.Cancel):
		a.follow = a.selected
		a.mode, a.query = modeNormal, ""
	case k == "ctrl+c":
		a.Flush()
		h.Quit()
	}
}

// reveal unfolds the ancestors of id so that it appears in the outline.
func (a *App) reveal(id string) {
	path, err := a.tree.Path(id)
	if err != nil {
		return
	}
	unfolded := false
	for _, p := range path[:len(path)-1] {
		if n := a.tree.Notes[p]; n.Collapsed {
			n.Collapsed = false
			unfolded = true
		}
	}
	if unfolded {
		a.changed()
	}
}
