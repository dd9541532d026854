package nav

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanschultz/float-notetree/pkg/dom"
	"github.com/evanschultz/float-notetree/pkg/im"
)

type harness struct {
	t    *testing.T
	doc  *dom.Document
	ctx  *im.Ctx
	list *List
	opts Options
}

func newHarness(t *testing.T, opts Options) *harness {
	d := dom.NewDocument()
	root := d.CreateElement("main")
	d.Body().AppendChild(root)
	return &harness{t: t, doc: d, ctx: im.New(root), opts: opts}
}

// pass renders a list of count rows of which only the first rendered are
// emitted.
func (h *harness) pass(count, rendered int) {
	h.t.Helper()
	require.NoError(h.t, h.ctx.Render(func(c *im.Ctx) {
		l := Begin(c, count, h.opts)
		for i := 0; i < min(count, rendered); i++ {
			l.Item(c, fmt.Sprintf("row-%d", i))
			im.Text(c, fmt.Sprintf("row %d", i))
			l.EndItem(c)
		}
		l.End(c)
		h.list = l
	}))
}

func (h *harness) press(msg tea.KeyMsg) {
	h.doc.Dispatch(h.list.El.Node, &dom.Event{Type: "keydown", Key: msg.String(), Data: msg})
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestKeyNavigation(t *testing.T) {
	h := newHarness(t, Options{Height: 4})
	h.pass(10, 10)
	require.Equal(t, 0, h.list.State.Selected)

	steps := []struct {
		msg  tea.KeyMsg
		want int
	}{
		{tea.KeyMsg{Type: tea.KeyDown}, 1},
		{runes("j"), 2},
		{runes("k"), 1},
		{runes("G"), 9},
		{tea.KeyMsg{Type: tea.KeyDown}, 9},
		{tea.KeyMsg{Type: tea.KeyPgUp}, 6},
		{runes("g"), 0},
		{tea.KeyMsg{Type: tea.KeyUp}, 0},
		{tea.KeyMsg{Type: tea.KeyPgDown}, 3},
		{tea.KeyMsg{Type: tea.KeyEnd}, 9},
		{tea.KeyMsg{Type: tea.KeyHome}, 0},
	}
	for _, s := range steps {
		h.press(s.msg)
		h.pass(10, 10)
		assert.Equal(t, s.want, h.list.State.Selected, s.msg.String())
		assert.NotNil(t, h.list.Key)
	}

	h.press(runes("x"))
	h.pass(10, 10)
	assert.Nil(t, h.list.Key, "unbound keys are left for the host")
}

func TestAllowNone(t *testing.T) {
	h := newHarness(t, Options{AllowNone: true})
	h.pass(3, 3)
	h.press(tea.KeyMsg{Type: tea.KeyUp})
	h.pass(3, 3)
	assert.Equal(t, -1, h.list.State.Selected)
	h.press(tea.KeyMsg{Type: tea.KeyUp})
	h.pass(3, 3)
	assert.Equal(t, -1, h.list.State.Selected)
}

func TestSelectionReclampedEveryPass(t *testing.T) {
	h := newHarness(t, Options{})
	h.pass(10, 10)
	h.list.State.Select(8)
	h.pass(10, 10)
	assert.Equal(t, 8, h.list.State.Selected)

	h.pass(3, 3)
	assert.Equal(t, 2, h.list.State.Selected)
	h.pass(0, 0)
	assert.Equal(t, -1, h.list.State.Selected)
	h.pass(4, 4)
	assert.Equal(t, 0, h.list.State.Selected)
}

func TestSelectedClass(t *testing.T) {
	h := newHarness(t, Options{})
	h.pass(3, 3)
	h.press(tea.KeyMsg{Type: tea.KeyDown})
	h.pass(3, 3)
	assert.False(t, h.list.RowNode(0).HasClass("selected"))
	assert.True(t, h.list.RowNode(1).HasClass("selected"))
}

func TestStepScrollsSmoothly(t *testing.T) {
	h := newHarness(t, Options{Height: 4})
	h.pass(10, 10)
	box := h.list.El.Node
	for i := 0; i < 5; i++ {
		h.press(tea.KeyMsg{Type: tea.KeyDown})
		h.pass(10, 10)
	}
	assert.Equal(t, 5, h.list.State.Selected)
	assert.True(t, h.doc.Animating())
	assert.Equal(t, 2, box.ScrollTarget())
	assert.Equal(t, 0, box.ScrollTop())

	for h.doc.Animating() {
		h.doc.Tick(time.Time{})
	}
	assert.Equal(t, 2, box.ScrollTop())
}

func TestJumpScrollsInstantly(t *testing.T) {
	h := newHarness(t, Options{Height: 4})
	h.pass(10, 10)
	h.list.State.Select(8)
	h.pass(10, 10)
	box := h.list.El.Node
	assert.False(t, h.doc.Animating())
	assert.Equal(t, 5, box.ScrollTop())

	h.list.State.Select(0)
	h.pass(10, 10)
	assert.Equal(t, 0, box.ScrollTop())
}

func TestScrollDeferredUntilRowExists(t *testing.T) {
	h := newHarness(t, Options{Height: 4})
	h.pass(60, 5)
	h.list.State.Select(50)

	assert.NotPanics(t, func() { h.pass(60, 5) })
	assert.True(t, h.list.State.ScrollPending())
	assert.Equal(t, 0, h.list.El.Node.ScrollTop())

	h.pass(60, 60)
	assert.False(t, h.list.State.ScrollPending())
	assert.Equal(t, 47, h.list.El.Node.ScrollTop())
}

func TestContainerIsFocusable(t *testing.T) {
	h := newHarness(t, Options{})
	h.pass(2, 2)
	h.list.Focus(h.ctx)
	assert.Equal(t, h.list.El.Node, h.doc.ActiveElement())
	h.pass(2, 2)
	assert.True(t, h.list.El.Node.HasClass("focused"))
}
