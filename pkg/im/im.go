// Package im is an immediate-mode tree builder over pkg/dom.
//
// View code runs top to bottom on every pass and calls Begin/End, Text, Memo,
// State, If/EndIf, BeginList/BeginKey and friends in a stable nesting order.
// Each call is matched by position against the slots recorded during the
// previous pass, so the same call site gets back the same DOM node, state
// value and event listener every time. Slots that were not revisited are torn
// down when their enclosing group closes.
//
// A Ctx is not safe for concurrent use; passes are run one at a time from the
// goroutine that owns the document.
package im

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/evanschultz/float-notetree/pkg/dom"
)

var (
	// ErrSlotMismatch means a call site read a slot written by a different kind
	// of primitive in an earlier pass.
	ErrSlotMismatch = errors.New("slot kind mismatch")
	// ErrUnbalanced means begin and end calls did not pair up.
	ErrUnbalanced = errors.New("unbalanced begin/end")
	// ErrDuplicateKey means a keyed list saw the same key twice in one pass.
	ErrDuplicateKey = errors.New("duplicate key in list")
	// ErrBadKey means a list key is not a comparable value.
	ErrBadKey = errors.New("list key is not comparable")
	// ErrReentrant means Render was called while a pass was already running.
	ErrReentrant = errors.New("render called during a pass")
	// ErrNotInPass means a primitive was used outside Render.
	ErrNotInPass = errors.New("primitive used outside a pass")
	// ErrBroken is returned by every Render after a structural failure.
	ErrBroken = errors.New("context broken by an earlier structural error")
)

// StructuralError reports a bug in view code that desynchronised the cache
// from the call sites using it.
type StructuralError struct {
	Err  error
	Path string
	Slot int
	Msg  string
}

func (e *StructuralError) Error() string {
	var sb strings.Builder
	sb.WriteString("im: ")
	sb.WriteString(e.Err.Error())
	if e.Path != "" {
		fmt.Fprintf(&sb, " at %s", e.Path)
	}
	if e.Slot >= 0 {
		fmt.Fprintf(&sb, " slot %d", e.Slot)
	}
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	return sb.String()
}

func (e *StructuralError) Unwrap() error { return e.Err }

// Stats counts cache activity since the context was created.
type Stats struct {
	Passes          int
	SlotsCreated    int
	GroupsCreated   int
	GroupsDestroyed int
}

// Ctx is the traversal context for one root node.
type Ctx struct {
	node      *dom.Node
	root      *group
	frames    []*frame
	rendering bool
	broken    error

	logger  *log.Logger
	onError func(error)
	stats   Stats
}

// Option configures a Ctx.
type Option func(*Ctx)

// WithLogger sets the logger used for boundary failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Ctx) { c.logger = l }
}

// WithErrorHandler registers fn to receive every error caught by a Boundary.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Ctx) { c.onError = fn }
}

// New returns a context that owns the children of root.
func New(root *dom.Node, opts ...Option) *Ctx {
	c := &Ctx{
		node:   root,
		root:   &group{},
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Root returns the node whose children the context manages.
func (c *Ctx) Root() *dom.Node { return c.node }

// Doc returns the document of the root node.
func (c *Ctx) Doc() *dom.Document { return c.node.Document() }

// Stats returns a snapshot of the cache counters.
func (c *Ctx) Stats() Stats { return c.stats }

// Rendering reports whether a pass is running.
func (c *Ctx) Rendering() bool { return c.rendering }

// Err returns the structural error that broke the context, if any.
func (c *Ctx) Err() error { return c.broken }

// Render runs one pass of fn against the cache.
//
// A structural error raised during the pass aborts it and is returned; the
// context is unusable afterwards. Panics from view code that are not
// structural also break the context, and are re-raised.
func (c *Ctx) Render(fn func(*Ctx)) (err error) {
	if c.broken != nil {
		return fmt.Errorf("%w: %w", ErrBroken, c.broken)
	}
	if c.rendering {
		return &StructuralError{Err: ErrReentrant, Path: c.path(), Slot: -1}
	}

	c.rendering = true
	defer func() {
		c.rendering = false
		c.frames = c.frames[:0]
		r := recover()
		if r == nil {
			return
		}
		var se *StructuralError
		if e, ok := r.(error); ok && errors.As(e, &se) {
			c.broken = se
			err = se
			return
		}
		c.broken = fmt.Errorf("panic during pass: %v", r)
		panic(r)
	}()

	c.root.cursor = 0
	p := &elementPlacer{host: c.node}
	c.push(&frame{kind: frameElement, group: c.root, placer: p, label: c.node.Tag()})
	fn(c)
	if len(c.frames) != 1 {
		top := c.top()
		panic(c.structural(ErrUnbalanced, -1, "%q still open at end of pass", top.label))
	}
	c.truncate(c.root, c.root.cursor, true)
	c.node.TruncateChildren(p.idx)
	c.stats.Passes++
	return nil
}

func (c *Ctx) structural(err error, slot int, format string, args ...any) *StructuralError {
	return &StructuralError{Err: err, Path: c.path(), Slot: slot, Msg: fmt.Sprintf(format, args...)}
}

func (c *Ctx) path() string {
	labels := make([]string, 0, len(c.frames))
	for _, f := range c.frames {
		labels = append(labels, f.label)
	}
	return strings.Join(labels, "/")
}
