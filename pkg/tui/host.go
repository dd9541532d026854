// Package tui hosts an im view in a bubbletea program. The host owns the
// document, runs passes in response to messages, routes keys through the
// document as keydown events, edits focused inputs with bubbles/textinput,
// drives smooth scrolling with frame ticks and paints the result.
package tui

import (
	"io"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evanschultz/float-notetree/pkg/dom"
	"github.com/evanschultz/float-notetree/pkg/im"
)

// maxPasses bounds the passes run for one message when the view keeps
// asking for another.
const maxPasses = 4

// ThemeMsg replaces the painter's theme.
type ThemeMsg struct{ Theme Theme }

// CallMsg runs its function on the program goroutine, then re-renders.
// Other goroutines use it to change state the view reads.
type CallMsg func()

type frameMsg time.Time

type timerMsg struct{ id int }

// Options configures a Host.
type Options struct {
	Logger        *log.Logger
	Theme         Theme
	FrameInterval time.Duration
	// Renderer styles painted cells; nil uses the lipgloss default.
	Renderer *lipgloss.Renderer
	// OnError receives errors caught by boundaries in the view.
	OnError func(error)
}

// Host is a tea.Model that renders view on every message.
type Host struct {
	doc     *dom.Document
	ctx     *im.Ctx
	view    func(*im.Ctx)
	painter *Painter
	ring    *FocusRing
	log     *log.Logger

	input     textinput.Model
	inputNode *dom.Node

	frame    time.Duration
	ticking  bool
	again    bool
	quitting bool
	err      error

	timers    map[int]func()
	nextTimer int
	cmds      []tea.Cmd
}

// NewHost creates a host for view. The view is not run until Init.
func NewHost(view func(c *im.Ctx, h *Host), opts Options) *Host {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Renderer == nil {
		opts.Renderer = lipgloss.DefaultRenderer()
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = time.Second / 60
	}
	if opts.Theme == (Theme{}) {
		opts.Theme = DefaultTheme()
	}

	doc := dom.NewDocument()
	doc.Shaper = NewMarkdownShaper().Shape

	ti := textinput.New()
	ti.Prompt = ""

	h := &Host{
		doc:     doc,
		painter: NewPainter(opts.Renderer, opts.Theme),
		ring:    NewFocusRing(doc),
		log:     opts.Logger,
		input:   ti,
		frame:   opts.FrameInterval,
		timers:  map[int]func(){},
	}
	imOpts := []im.Option{im.WithLogger(opts.Logger)}
	if opts.OnError != nil {
		imOpts = append(imOpts, im.WithErrorHandler(opts.OnError))
	}
	h.ctx = im.New(doc.Body(), imOpts...)
	h.view = func(c *im.Ctx) { view(c, h) }
	return h
}

// Doc returns the host's document
func (h *Host) Doc() *dom.Document { return h.doc }

// Ctx returns the traversal context the view runs in
func (h *Host) Ctx() *im.Ctx { return h.ctx }

// FocusRing returns the ring that tab and shift+tab cycle through
func (h *Host) FocusRing() *FocusRing { return h.ring }

// Err returns the error that stopped the host, if any
func (h *Host) Err() error { return h.err }

// RequestPass asks for another pass after the current one, for views that
// need to read layout produced by the pass they are in.
func (h *Host) RequestPass() { h.again = true }

// Quit stops the program after the current message.
func (h *Host) Quit() { h.quitting = true }

// SetTheme replaces the painter's theme
func (h *Host) SetTheme(t Theme) { h.painter.Theme = t }

// AfterFunc runs fn on the update loop after d, followed by a pass. It
// implements im.Scheduler.
func (h *Host) AfterFunc(d time.Duration, fn func()) (cancel func()) {
	h.nextTimer++
	id := h.nextTimer
	h.timers[id] = fn
	h.cmds = append(h.cmds, tea.Tick(d, func(time.Time) tea.Msg { return timerMsg{id} }))
	return func() { delete(h.timers, id) }
}

var _ im.Scheduler = (*Host)(nil)

// Init runs the first pass
func (h *Host) Init() tea.Cmd {
	h.pass()
	return h.flush()
}

// Update handles one message and runs the passes it causes
func (h *Host) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h.doc.SetViewport(msg.Width, msg.Height)
		h.pass()

	case tea.KeyMsg:
		h.key(msg)
		h.pass()

	case frameMsg:
		h.ticking = false
		h.doc.Tick(time.Time(msg))
		h.pass()

	case timerMsg:
		fn, ok := h.timers[msg.id]
		if !ok {
			return h, h.flush()
		}
		delete(h.timers, msg.id)
		fn()
		h.pass()

	case CallMsg:
		msg()
		h.pass()

	case ThemeMsg:
		h.SetTheme(msg.Theme)
	}
	return h, h.flush()
}

// View paints the document
func (h *Host) View() string {
	if h.quitting {
		return ""
	}
	h.painter.Cursor = h.cursor()
	return h.painter.Paint(h.doc)
}

func (h *Host) pass() {
	if h.err != nil {
		return
	}
	for i := 0; i < maxPasses; i++ {
		h.again = false
		if err := h.ctx.Render(h.view); err != nil {
			h.err = err
			h.log.Printf("error: render: %v", err)
			h.quitting = true
			return
		}
		h.doc.Layout()
		if !h.again {
			break
		}
	}
}

func (h *Host) flush() tea.Cmd {
	cmds := h.cmds
	h.cmds = nil
	if h.doc.Animating() && !h.ticking && !h.quitting {
		h.ticking = true
		cmds = append(cmds, tea.Tick(h.frame, func(t time.Time) tea.Msg { return frameMsg(t) }))
	}
	if h.quitting {
		cmds = append(cmds, tea.Quit)
	}
	return tea.Batch(cmds...)
}

// key dispatches msg as a keydown to the focused node and, unless a listener
// prevented it, applies the default action: editing inputs, moving focus on
// tab and quitting on ctrl+c.
func (h *Host) key(msg tea.KeyMsg) {
	target := h.doc.ActiveElement()
	ev := &dom.Event{Type: "keydown", Key: msg.String(), Data: msg}
	if !h.doc.Dispatch(target, ev) {
		return
	}

	switch k := msg.String(); {
	case k == "ctrl+c":
		h.quitting = true
	case k == "tab" && !capturesTab(target):
		h.ring.Next()
	case k == "shift+tab" && !capturesTab(target):
		h.ring.Previous()
	case target != nil && target.Tag() == "input" && editsInput(k):
		h.edit(target, msg)
	}
}

func editsInput(k string) bool {
	switch k {
	case "enter", "esc", "tab", "shift+tab", "up", "down", "pgup", "pgdown":
		return false
	}
	return true
}

// edit applies msg to n through the shared textinput and fires an input
// event if the value changed.
func (h *Host) edit(n *dom.Node, msg tea.KeyMsg) {
	if h.inputNode != n {
		h.inputNode = n
		h.input.SetValue(n.Value())
		h.input.CursorEnd()
		h.input.Focus()
	} else if h.input.Value() != n.Value() {
		h.input.SetValue(n.Value())
		h.input.CursorEnd()
	}
	h.input, _ = h.input.Update(msg)
	if v := h.input.Value(); v != n.Value() {
		n.SetValue(v)
		h.doc.Dispatch(n, &dom.Event{Type: "input", Data: v})
	}
}

// cursor returns the caret position for the focused input.
func (h *Host) cursor() int {
	n := h.doc.ActiveElement()
	if n == nil || n.Tag() != "input" {
		return 0
	}
	if n == h.inputNode && h.input.Value() == n.Value() {
		return h.input.Position()
	}
	return len([]rune(n.Value()))
}
