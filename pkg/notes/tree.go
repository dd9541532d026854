// Package notes is the note tree the application edits: notes linked by ID
// in a flat map so the whole tree serialises as plain JSON, plus activities
// that record which note was being worked on and when.
package notes

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("note not found")
	ErrRoot     = errors.New("operation not allowed on the root note")
	ErrNoMove   = errors.New("note cannot move further")
	ErrCorrupt  = errors.New("note tree is inconsistent")
)

// Note is one node of the tree.
type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Parent    string    `json:"parent,omitempty"`
	Children  []string  `json:"children,omitempty"`
	Collapsed bool      `json:"collapsed,omitempty"`
	Created   time.Time `json:"created"`
	Edited    time.Time `json:"edited"`
}

// Tree holds every note by ID. Root is the ID of the invisible top note.
type Tree struct {
	Root       string           `json:"root"`
	Notes      map[string]*Note `json:"notes"`
	Activities []Activity       `json:"activities,omitempty"`
}

// NewTree returns a tree with only a root note.
func NewTree(now time.Time) *Tree {
	root := &Note{ID: uuid.NewString(), Created: now, Edited: now}
	return &Tree{Root: root.ID, Notes: map[string]*Note{root.ID: root}}
}

// Get returns the note with the given ID.
func (t *Tree) Get(id string) (*Note, error) {
	n, ok := t.Notes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return n, nil
}

// Len returns the number of notes, not counting the root.
func (t *Tree) Len() int { return len(t.Notes) - 1 }

// Insert adds a note under parent at position index (clamped), returning
// its ID.
func (t *Tree) Insert(parent string, index int, text string, now time.Time) (string, error) {
	p, err := t.Get(parent)
	if err != nil {
		return "", err
	}
	n := &Note{ID: uuid.NewString(), Text: text, Parent: parent, Created: now, Edited: now}
	t.Notes[n.ID] = n
	index = min(max(index, 0), len(p.Children))
	p.Children = insertAt(p.Children, index, n.ID)
	p.Collapsed = false
	return n.ID, nil
}

// InsertAfter adds a sibling directly after id.
func (t *Tree) InsertAfter(id, text string, now time.Time) (string, error) {
	if id == t.Root {
		return t.Insert(t.Root, 0, text, now)
	}
	n, err := t.Get(id)
	if err != nil {
		return "", err
	}
	p := t.Notes[n.Parent]
	return t.Insert(n.Parent, indexOf(p.Children, id)+1, text, now)
}

// Remove deletes id and its descendants, with their activities.
func (t *Tree) Remove(id string) error {
	if id == t.Root {
		return ErrRoot
	}
	n, err := t.Get(id)
	if err != nil {
		return err
	}
	p := t.Notes[n.Parent]
	p.Children = removeID(p.Children, id)

	gone := map[string]bool{}
	var drop func(id string)
	drop = func(id string) {
		gone[id] = true
		for _, c := range t.Notes[id].Children {
			drop(c)
		}
		delete(t.Notes, id)
	}
	drop(id)

	kept := t.Activities[:0]
	for _, a := range t.Activities {
		if !gone[a.NoteID] {
			kept = append(kept, a)
		}
	}
	t.Activities = kept
	return nil
}

// SetText replaces the text of id.
func (t *Tree) SetText(id, text string, now time.Time) error {
	n, err := t.Get(id)
	if err != nil {
		return err
	}
	if n.Text != text {
		n.Text = text
		n.Edited = now
	}
	return nil
}

// ToggleCollapsed folds or unfolds the children of id.
func (t *Tree) ToggleCollapsed(id string) error {
	n, err := t.Get(id)
	if err != nil {
		return err
	}
	n.Collapsed = !n.Collapsed && len(n.Children) > 0
	return nil
}

// Move shifts id by delta positions among its siblings.
func (t *Tree) Move(id string, delta int) error {
	if id == t.Root {
		return ErrRoot
	}
	n, err := t.Get(id)
	if err != nil {
		return err
	}
	sibs := t.Notes[n.Parent].Children
	i := indexOf(sibs, id)
	j := i + delta
	if j < 0 || j >= len(sibs) {
		return ErrNoMove
	}
	sibs[i], sibs[j] = sibs[j], sibs[i]
	return nil
}

// Indent makes id the last child of its previous sibling.
func (t *Tree) Indent(id string) error {
	if id == t.Root {
		return ErrRoot
	}
	n, err := t.Get(id)
	if err != nil {
		return err
	}
	p := t.Notes[n.Parent]
	i := indexOf(p.Children, id)
	if i == 0 {
		return ErrNoMove
	}
	prev := t.Notes[p.Children[i-1]]
	p.Children = removeID(p.Children, id)
	prev.Children = append(prev.Children, id)
	prev.Collapsed = false
	n.Parent = prev.ID
	return nil
}

// Outdent moves id out of its parent, directly after it.
func (t *Tree) Outdent(id string) error {
	if id == t.Root {
		return ErrRoot
	}
	n, err := t.Get(id)
	if err != nil {
		return err
	}
	if n.Parent == t.Root {
		return ErrNoMove
	}
	p := t.Notes[n.Parent]
	gp := t.Notes[p.Parent]
	p.Children = removeID(p.Children, id)
	gp.Children = insertAt(gp.Children, indexOf(gp.Children, p.ID)+1, id)
	n.Parent = gp.ID
	return nil
}

// Row is one visible note in display order.
type Row struct {
	ID    string
	Depth int
}

// Flatten lists the visible notes in pre-order. Children of collapsed notes
// are skipped. The root is not included.
func (t *Tree) Flatten() []Row {
	var rows []Row
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		n := t.Notes[id]
		for _, c := range n.Children {
			rows = append(rows, Row{ID: c, Depth: depth})
			if !t.Notes[c].Collapsed {
				walk(c, depth+1)
			}
		}
	}
	walk(t.Root, 0)
	return rows
}

// Path returns the IDs from the top-level ancestor of id down to id.
func (t *Tree) Path(id string) ([]string, error) {
	var path []string
	for cur := id; cur != t.Root; {
		n, err := t.Get(cur)
		if err != nil {
			return nil, err
		}
		path = append(path, cur)
		cur = n.Parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Validate checks that parent and child links agree and every note is
// reachable from the root exactly once.
func (t *Tree) Validate() error {
	if _, ok := t.Notes[t.Root]; !ok {
		return fmt.Errorf("%w: missing root %q", ErrCorrupt, t.Root)
	}
	seen := map[string]bool{}
	var visit func(id string) error
	visit = func(id string) error {
		if seen[id] {
			return fmt.Errorf("%w: %s reached twice", ErrCorrupt, id)
		}
		seen[id] = true
		for _, c := range t.Notes[id].Children {
			cn, ok := t.Notes[c]
			if !ok {
				return fmt.Errorf("%w: %s lists missing child %s", ErrCorrupt, id, c)
			}
			if cn.Parent != id {
				return fmt.Errorf("%w: %s has parent %s, listed under %s", ErrCorrupt, c, cn.Parent, id)
			}
			if err := visit(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(t.Root); err != nil {
		return err
	}
	if len(seen) != len(t.Notes) {
		return fmt.Errorf("%w: %d notes unreachable", ErrCorrupt, len(t.Notes)-len(seen))
	}
	return nil
}

// Marshal encodes the tree as JSON.
func (t *Tree) Marshal() ([]byte, error) { return json.Marshal(t) }

// Unmarshal decodes and validates a tree.
func Unmarshal(data []byte) (*Tree, error) {
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode note tree: %w", err)
	}
	for id, n := range t.Notes {
		if n == nil || n.ID != id {
			return nil, fmt.Errorf("%w: entry %s", ErrCorrupt, id)
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func indexOf(ids []string, id string) int {
	for i, x := range ids {
		if x == id {
			return i
		}
	}
	return -1
}

func insertAt(ids []string, i int, id string) []string {
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

func removeID(ids []string, id string) []string {
	i := indexOf(ids, id)
	if i < 0 {
		return ids
	}
	return append(ids[:i], ids[i+1:]...)
}
