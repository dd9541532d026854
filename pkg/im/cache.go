package im

import (
	"fmt"

	"github.com/evanschultz/float-notetree/pkg/dom"
)

type slotKind uint8

const (
	kindElement slotKind = iota + 1
	kindText
	kindState
	kindMemo
	kindMemoMany
	kindListener
	kindObserver
	kindDestroy
	kindCond
	kindList
	kindBoundary
)

var kindNames = [...]string{
	kindElement:  "element",
	kindText:     "text",
	kindState:    "state",
	kindMemo:     "memo",
	kindMemoMany: "memoMany",
	kindListener: "listener",
	kindObserver: "observer",
	kindDestroy:  "onDestroy",
	kindCond:     "if",
	kindList:     "list",
	kindBoundary: "boundary",
}

func (k slotKind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// slot is one cached record at a fixed position in its group.
type slot struct {
	kind    slotKind
	tag     string
	node    *dom.Node
	group   *group
	value   any
	release func()
}

// group is an ordered run of slots plus the read position of the current
// pass.
type group struct {
	slots  []*slot
	cursor int
}

type frameKind uint8

const (
	frameElement frameKind = iota + 1
	frameCond
	frameBranch
	frameList
	frameItem
)

type frame struct {
	kind   frameKind
	group  *group
	placer placer
	label  string

	cond *branchSet
	list *listState
	// owner is the frame a branch or item frame was opened from.
	owner *frame
}

func (c *Ctx) push(f *frame) { c.frames = append(c.frames, f) }

func (c *Ctx) top() *frame {
	if len(c.frames) == 0 {
		panic(&StructuralError{Err: ErrNotInPass, Slot: -1})
	}
	return c.frames[len(c.frames)-1]
}

func (c *Ctx) pop() *frame {
	f := c.top()
	c.frames[len(c.frames)-1] = nil
	c.frames = c.frames[:len(c.frames)-1]
	return f
}

// next returns the slot under the cursor of the current group, appending a
// fresh one when the group has none left. The second result is true for new
// slots.
func (c *Ctx) next(k slotKind) (*slot, bool) {
	if !c.rendering {
		panic(&StructuralError{Err: ErrNotInPass, Slot: -1, Msg: k.String()})
	}
	f := c.top()
	g := f.group
	if g == nil {
		panic(c.structural(ErrUnbalanced, -1, "%s called directly inside %q", k, f.label))
	}
	if g.cursor < len(g.slots) {
		s := g.slots[g.cursor]
		if s.kind != k {
			panic(c.structural(ErrSlotMismatch, g.cursor, "found %s, called %s", s.kind, k))
		}
		g.cursor++
		return s, false
	}
	s := &slot{kind: k}
	g.slots = append(g.slots, s)
	g.cursor++
	c.stats.SlotsCreated++
	return s, true
}

func (c *Ctx) newGroup() *group {
	c.stats.GroupsCreated++
	return &group{}
}

// truncate tears down every slot of g from position from onwards. When detach
// is set, nodes owned directly by those slots are removed from their parent.
func (c *Ctx) truncate(g *group, from int, detach bool) {
	for i := len(g.slots) - 1; i >= from; i-- {
		c.destroySlot(g.slots[i], detach)
	}
	if from < len(g.slots) {
		clear(g.slots[from:])
		g.slots = g.slots[:from]
	}
}

func (c *Ctx) destroyGroup(g *group, detach bool) {
	if g == nil {
		return
	}
	c.truncate(g, 0, detach)
	c.stats.GroupsDestroyed++
}

func (c *Ctx) destroySlot(s *slot, detach bool) {
	switch s.kind {
	case kindElement:
		// Descendants leave with the element, so only release their resources.
		c.destroyGroup(s.group, false)
		if detach {
			s.node.Remove()
		}
	case kindText:
		if detach {
			s.node.Remove()
		}
	case kindCond, kindBoundary:
		bs := s.value.(*branchSet)
		c.destroyGroup(bs.group, detach)
		bs.group, bs.active = nil, -1
	case kindList:
		ls := s.value.(*listState)
		for k, it := range ls.items {
			c.destroyGroup(it.group, detach)
			delete(ls.items, k)
		}
	}
	if s.release != nil {
		fn := s.release
		s.release = nil
		fn()
	}
}

// placer puts the nodes of the current group into the DOM.
type placer interface {
	place(n *dom.Node)
	placeRun(nodes []*dom.Node)
	mark() int
	reset(m int)
}

// elementPlacer writes children of host in order, moving a node only when it
// is not already at its position.
type elementPlacer struct {
	host *dom.Node
	idx  int
}

func (p *elementPlacer) place(n *dom.Node) {
	p.host.InsertAt(p.idx, n)
	p.idx++
}

func (p *elementPlacer) placeRun(nodes []*dom.Node) {
	if len(nodes) == 0 {
		return
	}
	if !p.host.HasRunAt(p.idx, nodes) {
		p.host.InsertRun(p.idx, nodes...)
	}
	p.idx += len(nodes)
}

func (p *elementPlacer) mark() int  { return p.idx }
func (p *elementPlacer) reset(m int) { p.idx = m }

// listPlacer collects the nodes of keyed items so the list can attach them
// in one batch when it closes.
type listPlacer struct {
	ls *listState
}

func (p listPlacer) place(n *dom.Node)          { p.ls.pending = append(p.ls.pending, n) }
func (p listPlacer) placeRun(nodes []*dom.Node) { p.ls.pending = append(p.ls.pending, nodes...) }
func (p listPlacer) mark() int                  { return len(p.ls.pending) }

func (p listPlacer) reset(m int) {
	clear(p.ls.pending[m:])
	p.ls.pending = p.ls.pending[:m]
}
