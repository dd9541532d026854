// Package notesui is the note-tree application written against the im
// runtime: a navigable outline of notes with time tracking, fuzzy search and
// a markdown preview of the selected note.
package notesui

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"

	"github.com/evanschultz/float-notetree/pkg/im"
	"github.com/evanschultz/float-notetree/pkg/im/nav"
	"github.com/evanschultz/float-notetree/pkg/notes"
	"github.com/evanschultz/float-notetree/pkg/store"
	"github.com/evanschultz/float-notetree/pkg/tui"
)

// StateKey is the storage key of the serialised note tree.
const StateKey = "notetree/state"

// Host is what the view needs from the program running it.
type Host interface {
	im.Scheduler
	RequestPass()
	Quit()
}

type mode int

const (
	modeNormal mode = iota
	modeEdit
	modeSearch
)

// Options configure an App.
type Options struct {
	SaveDelay time.Duration
	Logger    *log.Logger
	// Debug is shown by ctrl+l; nil disables the panel.
	Debug *tui.DebugLog
	// Now and Copy default to time.Now and the system clipboard.
	Now  func() time.Time
	Copy func(string) error
}

// App is the application state shared by all passes.
type App struct {
	tree    *notes.Tree
	storage store.Storage
	saver   *im.Debouncer
	opts    Options
	log     *log.Logger
	help    help.Model

	mode    mode
	editing string
	created string
	draft   string
	query   string

	// selected is the note under the cursor as of the last pass.
	selected string
	// follow moves the cursor to a note on the next pass; jump does the
	// same as a view change, scrolling instantly.
	follow string
	jump   string
	list   *nav.State

	version    uint64
	status     string
	clockArmed bool
}

// Load reads the tree stored under StateKey, or returns a fresh tree if
// nothing is stored yet.
func Load(s store.Storage, now time.Time) (*notes.Tree, error) {
	data, err := s.Get(StateKey)
	if errors.Is(err, store.ErrNoKey) {
		return notes.NewTree(now), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	t, err := notes.Unmarshal([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	return t, nil
}

// Save writes t under StateKey.
func Save(s store.Storage, t *notes.Tree) error {
	data, err := t.Marshal()
	if err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	if err := s.Set(StateKey, string(data)); err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	return nil
}

// New creates an app editing tree and persisting it to s.
func New(tree *notes.Tree, s store.Storage, opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	hm := help.New()
	hm.Styles = help.Styles{}
	return &App{
		tree:    tree,
		storage: s,
		opts:    opts,
		log:     opts.Logger,
		help:    hm,
	}
}

// Tree returns the tree being edited
func (a *App) Tree() *notes.Tree { return a.tree }

// SetSaveDelay changes the debounce delay of saves
func (a *App) SetSaveDelay(d time.Duration) {
	a.opts.SaveDelay = d
	if a.saver != nil {
		a.saver.SetDelay(d)
	}
}

// Flush writes any pending save immediately.
func (a *App) Flush() {
	if a.saver != nil {
		a.saver.Flush()
	}
}

// changed records a mutation of the tree and schedules a save.
func (a *App) changed() {
	a.version++
	if a.saver != nil {
		a.saver.Trigger(a.save)
	}
}

func (a *App) save() {
	if err := Save(a.storage, a.tree); err != nil {
		a.fail(err)
		return
	}
	a.log.Printf("saved: %d notes", a.tree.Len())
}

func (a *App) fail(err error) {
	a.status = err.Error()
	a.log.Printf("error: %v", err)
}

// armClock re-renders once a second while an activity runs, so that its
// duration counts up.
func (a *App) armClock(h Host) {
	if a.clockArmed || a.tree.Current() == nil {
		return
	}
	a.clockArmed = true
	h.AfterFunc(time.Second, func() { a.clockArmed = false })
}
