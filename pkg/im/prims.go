package im

import (
	"reflect"

	"github.com/evanschultz/float-notetree/pkg/dom"
)

// El is the handle of an element opened by Begin. It is valid until the
// matching End of the same pass.
type El struct {
	Node *dom.Node
	// First is true on the pass that created the node.
	First bool
}

// Begin opens an element with the given tag at the current position. The
// node is created on the first pass and reused afterwards.
func Begin(c *Ctx, tag string) *El {
	s, fresh := c.next(kindElement)
	if fresh {
		s.tag = tag
		s.node = c.Doc().CreateElement(tag)
		s.group = c.newGroup()
	} else if s.tag != tag {
		panic(c.structural(ErrSlotMismatch, c.top().group.cursor-1, "found element <%s>, called <%s>", s.tag, tag))
	}
	c.top().placer.place(s.node)

	s.group.cursor = 0
	c.push(&frame{kind: frameElement, group: s.group, placer: &elementPlacer{host: s.node}, label: tag})
	return &El{Node: s.node, First: fresh}
}

// End closes the element opened by the matching Begin and removes whatever
// the element held in the previous pass but did not revisit.
func End(c *Ctx) {
	f := c.top()
	if f.kind != frameElement || len(c.frames) == 1 {
		panic(c.structural(ErrUnbalanced, -1, "End called while %q is open", f.label))
	}
	c.truncate(f.group, f.group.cursor, true)
	p := f.placer.(*elementPlacer)
	p.host.TruncateChildren(p.idx)
	c.pop()
}

// Text writes a text node at the current position.
func Text(c *Ctx, s string) *dom.Node {
	sl, fresh := c.next(kindText)
	if fresh {
		sl.node = c.Doc().CreateText(s)
	} else {
		sl.node.SetText(s)
	}
	c.top().placer.place(sl.node)
	return sl.node
}

// State returns the value stored at the current position, calling factory to
// create it on the first pass.
func State[T any](c *Ctx, factory func() T) T {
	s, fresh := c.next(kindState)
	if fresh {
		s.value = factory()
	}
	v, ok := s.value.(T)
	if !ok {
		panic(c.structural(ErrSlotMismatch, c.top().group.cursor-1, "state holds %T", s.value))
	}
	return v
}

// OnDestroy registers fn to run once when the current position is torn
// down. The most recent fn wins.
func OnDestroy(c *Ctx, fn func()) {
	s, _ := c.next(kindDestroy)
	s.release = fn
}

// Memo reports whether v differs from the value passed at this position in
// the previous pass. It is true on the first pass.
func Memo(c *Ctx, v any) bool {
	s, fresh := c.next(kindMemo)
	if !fresh && same(s.value, v) {
		return false
	}
	s.value = v
	return true
}

// MemoMany is Memo over several values; it reports a change if any of them
// changed or the count differs.
func MemoMany(c *Ctx, vs ...any) bool {
	s, fresh := c.next(kindMemoMany)
	if !fresh {
		prev := s.value.([]any)
		if len(prev) == len(vs) {
			changed := false
			for i := range vs {
				if !same(prev[i], vs[i]) {
					changed = true
					break
				}
			}
			if !changed {
				return false
			}
		}
	}
	s.value = append([]any(nil), vs...)
	return true
}

// same compares comparable values with ==, slices and maps by identity, and
// treats everything else (funcs) as always changed.
func same(a, b any) (eq bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta.Comparable() {
		// A struct holding an interface with an uncomparable value panics.
		defer func() {
			if recover() != nil {
				eq = false
			}
		}()
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Map:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

// Style sets a style property on el, touching the node only when v changed.
func Style(c *Ctx, el *El, k, v string) {
	if Memo(c, v) {
		el.Node.SetStyle(k, v)
	}
}

// Attr sets an attribute on el when v changed.
func Attr(c *Ctx, el *El, k, v string) {
	if Memo(c, v) {
		el.Node.SetAttr(k, v)
	}
}

// Class toggles a class on el when on changed.
func Class(c *Ctx, el *El, name string, on bool) {
	if Memo(c, on) {
		el.Node.SetClass(name, on)
	}
}

// Value sets the value of an input element when v changed.
func Value(c *Ctx, el *El, v string) {
	if Memo(c, v) {
		el.Node.SetValue(v)
	}
}
