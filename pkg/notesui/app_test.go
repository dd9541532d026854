package notesui

import (
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanschultz/float-notetree/pkg/im"
	"github.com/evanschultz/float-notetree/pkg/notes"
	"github.com/evanschultz/float-notetree/pkg/store"
	"github.com/evanschultz/float-notetree/pkg/tui"
)

var _ Host = (*tui.Host)(nil)

type memStore map[string]string

func (m memStore) Get(k string) (string, error) {
	v, ok := m[k]
	if !ok {
		return "", store.ErrNoKey
	}
	return v, nil
}

func (m memStore) Set(k, v string) error {
	m[k] = v
	return nil
}

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	t      *testing.T
	app    *App
	host   *tui.Host
	store  memStore
	clock  time.Time
	copied string
	errs   []error
	debug  *tui.DebugLog
}

func newFixture(t *testing.T, tree *notes.Tree) *fixture {
	t.Helper()
	f := &fixture{t: t, store: memStore{}, clock: epoch, debug: tui.NewDebugLog(20)}
	f.app = New(tree, f.store, Options{
		SaveDelay: time.Second,
		Logger:    log.New(f.debug, "", 0),
		Debug:     f.debug,
		Now:       func() time.Time { return f.clock },
		Copy: func(s string) error {
			f.copied = s
			return nil
		},
	})
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	f.host = tui.NewHost(func(c *im.Ctx, h *tui.Host) { f.app.View(c, h) }, tui.Options{
		Renderer: r,
		Logger:   log.New(f.debug, "", 0),
		OnError:  func(err error) { f.errs = append(f.errs, err) },
	})
	f.host.Init()
	f.host.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	require.NoError(t, f.host.Err())
	return f
}

// build returns a tree holding the given top-level notes and their IDs.
func build(t *testing.T, texts ...string) (*notes.Tree, []string) {
	t.Helper()
	tr := notes.NewTree(epoch)
	var ids []string
	for i, s := range texts {
		id, err := tr.Insert(tr.Root, i, s, epoch)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return tr, ids
}

func (f *fixture) keys(ks ...string) {
	f.t.Helper()
	for _, k := range ks {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "shift+tab":
			msg = tea.KeyMsg{Type: tea.KeyShiftTab}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "ctrl+l":
			msg = tea.KeyMsg{Type: tea.KeyCtrlL}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		f.host.Update(msg)
		require.NoError(f.t, f.host.Err())
	}
}

func (f *fixture) typeText(s string) {
	f.t.Helper()
	for _, r := range s {
		f.keys(string(r))
	}
}

func (f *fixture) screen() string { return f.host.View() }

func TestLoadAndSave(t *testing.T) {
	s := memStore{}
	tr, err := Load(s, epoch)
	require.NoError(t, err)
	assert.Equal(t, 0, tr.Len())

	_, err = tr.Insert(tr.Root, 0, "kept", epoch)
	require.NoError(t, err)
	require.NoError(t, Save(s, tr))

	back, err := Load(s, epoch)
	require.NoError(t, err)
	assert.Equal(t, 1, back.Len())

	s[StateKey] = `{"root":"missing","notes":{}}`
	_, err = Load(s, epoch)
	assert.ErrorIs(t, err, notes.ErrCorrupt)
}

func TestNewNoteIsEditedAndSaved(t *testing.T) {
	tr, _ := build(t)
	f := newFixture(t, tr)
	assert.Contains(t, f.screen(), "no note selected")

	f.keys("n")
	require.Equal(t, modeEdit, f.app.mode)
	f.typeText("hello")
	assert.Equal(t, "hello", f.app.draft)
	f.keys("enter")

	assert.Equal(t, modeNormal, f.app.mode)
	require.Equal(t, 1, tr.Len())
	assert.Equal(t, "hello", tr.Notes[tr.Notes[tr.Root].Children[0]].Text)
	assert.Contains(t, f.screen(), "• hello")

	_, err := f.store.Get(StateKey)
	assert.ErrorIs(t, err, store.ErrNoKey, "save is debounced")
	f.app.Flush()
	saved, err := Load(f.store, epoch)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Len())
}

func TestTypingDoesNotNavigate(t *testing.T) {
	tr, ids := build(t, "alpha", "beta")
	f := newFixture(t, tr)
	f.keys("enter")
	f.typeText("jjk")
	assert.Equal(t, ids[0], f.app.selected, "j and k go to the input")
	f.keys("esc")
	assert.Equal(t, "alpha", tr.Notes[ids[0]].Text, "esc discards the draft")
}

func TestEscDropsEmptyNewNote(t *testing.T) {
	tr, _ := build(t, "alpha")
	f := newFixture(t, tr)
	f.keys("n", "esc")
	assert.Equal(t, 1, tr.Len())
	assert.Equal(t, modeNormal, f.app.mode)
}

func TestNavigateIndentAndMove(t *testing.T) {
	tr, ids := build(t, "a", "b", "c")
	f := newFixture(t, tr)
	assert.Equal(t, ids[0], f.app.selected)

	f.keys("j")
	assert.Equal(t, ids[1], f.app.selected)

	f.keys("tab")
	assert.Equal(t, ids[0], tr.Notes[ids[1]].Parent)
	assert.Equal(t, ids[1], f.app.selected, "selection follows the note")
	assert.Contains(t, f.screen(), "  • b")

	f.keys("shift+tab", "K")
	assert.Equal(t, []string{ids[1], ids[0], ids[2]}, tr.Notes[tr.Root].Children)
	assert.Equal(t, ids[1], f.app.selected)

	f.keys("K")
	assert.Equal(t, "can't move further", f.app.status)
	assert.Contains(t, f.screen(), "can't move further")

	f.keys("G", "d")
	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, ids[0], f.app.selected, "selection is clamped after delete")
}

func TestCollapse(t *testing.T) {
	tr, ids := build(t, "parent")
	_, err := tr.Insert(ids[0], 0, "child", epoch)
	require.NoError(t, err)
	f := newFixture(t, tr)
	assert.Contains(t, f.screen(), "  • child")

	f.keys("space")
	assert.True(t, tr.Notes[ids[0]].Collapsed)
	out := f.screen()
	assert.Contains(t, out, "▸ parent")
	assert.NotContains(t, out, "child")
}

func TestSearchRevealsAndJumps(t *testing.T) {
	tr, ids := build(t, "project", "misc")
	needle, err := tr.Insert(ids[0], 0, "find the needle", epoch)
	require.NoError(t, err)
	tr.Notes[ids[0]].Collapsed = true
	f := newFixture(t, tr)
	assert.NotContains(t, f.screen(), "needle")

	f.keys("/")
	require.Equal(t, modeSearch, f.app.mode)
	f.typeText("needle")
	assert.Equal(t, "needle", f.app.query)
	assert.Equal(t, needle, f.app.selected)
	assert.NotContains(t, f.screen(), "misc", "only hits are listed")

	f.keys("enter")
	assert.Equal(t, modeNormal, f.app.mode)
	assert.False(t, tr.Notes[ids[0]].Collapsed)
	assert.Equal(t, needle, f.app.selected)
	assert.Contains(t, f.screen(), "  • find the needle")
	assert.Equal(t, 1, f.app.list.Selected)
}

func TestSearchEscKeepsOutline(t *testing.T) {
	tr, _ := build(t, "alpha", "beta")
	f := newFixture(t, tr)
	f.keys("/")
	f.typeText("zzz")
	assert.Empty(t, f.app.selected)
	f.keys("esc")
	assert.Equal(t, modeNormal, f.app.mode)
	out := f.screen()
	assert.Contains(t, out, "• alpha")
	assert.Contains(t, out, "• beta")
}

func TestCopyAndActivity(t *testing.T) {
	tr, ids := build(t, "alpha [est:: 1h]")
	f := newFixture(t, tr)

	f.keys("y")
	assert.Equal(t, "alpha [est:: 1h]", f.copied)
	assert.Contains(t, f.screen(), "copied to clipboard")

	f.keys("s")
	require.NotNil(t, tr.Current())
	assert.Equal(t, ids[0], tr.Current().NoteID)

	f.clock = f.clock.Add(12 * time.Minute)
	f.keys("j")
	out := f.screen()
	assert.Contains(t, out, "running: alpha")
	assert.Contains(t, out, "12m/1h00m")

	f.keys("s")
	assert.Nil(t, tr.Current())
}

func TestDetailErrorIsContained(t *testing.T) {
	tr, ids := build(t, "plan [est:: soon]", "ok")
	f := newFixture(t, tr)

	out := f.screen()
	assert.Contains(t, out, "invalid estimate")
	assert.Contains(t, out, "• ok", "the rest of the view still renders")
	require.NotEmpty(t, f.errs)

	f.keys("j")
	assert.Equal(t, ids[1], f.app.selected)
	assert.NotContains(t, f.screen(), "invalid estimate")
}

func TestDetailFollowsSelection(t *testing.T) {
	t.Run("empty tree to first note", func(t *testing.T) {
		tr, _ := build(t)
		f := newFixture(t, tr)
		assert.Contains(t, f.screen(), "no note selected")

		f.keys("n")
		f.typeText("first")
		f.keys("enter")
		require.NoError(t, f.host.Err())
		out := f.screen()
		assert.NotContains(t, out, "no note selected")
		assert.Contains(t, out, "spent 0s")

		f.keys("d")
		require.NoError(t, f.host.Err())
		assert.Contains(t, f.screen(), "no note selected")
	})

	t.Run("search without hits to a hit", func(t *testing.T) {
		tr, _ := build(t, "alpha", "beta")
		f := newFixture(t, tr)
		f.keys("/")
		f.typeText("zzz")
		assert.Contains(t, f.screen(), "no note selected")

		f.keys("backspace", "backspace", "backspace")
		f.typeText("bet")
		require.NoError(t, f.host.Err())
		assert.Equal(t, "bet", f.app.query)
		assert.NotContains(t, f.screen(), "no note selected")
		assert.Contains(t, f.screen(), "spent 0s")
	})
}

func TestDetailAnnotationsChange(t *testing.T) {
	tr, ids := build(t, "plain", "tagged [tag:: a] [tag:: b] [est:: 2h]")
	f := newFixture(t, tr)
	assert.NotContains(t, f.screen(), "estimate")

	f.keys("j")
	require.NoError(t, f.host.Err())
	out := f.screen()
	assert.Contains(t, out, "estimate 2h00m")
	assert.Contains(t, out, "tag: a")
	assert.Contains(t, out, "tag: b")

	require.NoError(t, tr.SetText(ids[1], "tagged [tag:: b]", epoch))
	f.app.changed()
	f.keys("k", "j")
	require.NoError(t, f.host.Err())
	out = f.screen()
	assert.NotContains(t, out, "estimate")
	assert.NotContains(t, out, "tag: a")
	assert.Contains(t, out, "tag: b")
}

func TestDebugPanel(t *testing.T) {
	tr, _ := build(t, "alpha")
	f := newFixture(t, tr)
	f.keys("n")
	f.typeText("x")
	f.keys("enter")
	f.app.Flush()

	assert.NotContains(t, f.screen(), "SAVED")
	f.keys("ctrl+l")
	out := f.screen()
	assert.Contains(t, out, "SAVED")
	assert.Contains(t, out, "passes ")

	f.keys("ctrl+l")
	assert.NotContains(t, f.screen(), "SAVED")
}

func TestQuitFlushesSave(t *testing.T) {
	tr, _ := build(t, "alpha")
	f := newFixture(t, tr)
	f.keys("space", "n")
	f.typeText("z")
	f.keys("enter", "q")
	assert.Empty(t, f.screen())

	saved, err := Load(f.store, epoch)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Len())
}

type failingStore struct{ memStore }

func (failingStore) Set(string, string) error { return errors.New("disk full") }

func TestSaveErrorIsReported(t *testing.T) {
	tr, _ := build(t, "alpha")
	f := newFixture(t, tr)
	f.app.storage = failingStore{memStore{}}
	f.keys("space")
	f.app.changed()
	f.app.Flush()
	assert.True(t, strings.Contains(f.app.status, "disk full"))
}
