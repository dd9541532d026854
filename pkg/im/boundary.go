package im

import (
	"errors"
	"fmt"
)

// PanicError wraps a value recovered from a panicking boundary body.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Boundary renders body in its own branch. If body returns an error or
// panics, everything it rendered this pass is torn down, the error is
// logged and passed to the context's error handler, and fallback renders in
// its place. A nil fallback renders ErrorPanel. The next pass tries body
// again.
//
// Structural errors are not contained; they abort the pass.
func Boundary(c *Ctx, body func(*Ctx) error, fallback func(*Ctx, error)) {
	s, fresh := c.next(kindBoundary)
	if fresh {
		s.value = &branchSet{active: -1}
	}
	bs := s.value.(*branchSet)
	owner := &frame{kind: frameCond, placer: c.top().placer, label: "boundary", cond: bs}

	depth := len(c.frames)
	mark := owner.placer.mark()
	c.enter(owner, bs, 0, "boundary")
	err := c.guard(body)
	if err == nil {
		if len(c.frames) != depth+1 {
			panic(c.structural(ErrUnbalanced, -1, "boundary body left %q open", c.top().label))
		}
		c.leave()
		return
	}

	// Drop whatever the body left open, then the partial branch itself.
	clear(c.frames[depth:])
	c.frames = c.frames[:depth]
	owner.placer.reset(mark)
	c.destroyGroup(bs.group, true)
	bs.group, bs.active = nil, -1

	c.logger.Printf("im: boundary at %s: %v", c.path(), err)
	if c.onError != nil {
		c.onError(err)
	}

	if fallback == nil {
		fallback = ErrorPanel
	}
	c.enter(owner, bs, 1, "boundary-fallback")
	fallback(c, err)
	c.leave()
}

func (c *Ctx) guard(body func(*Ctx) error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(error); ok {
			var se *StructuralError
			if errors.As(e, &se) {
				panic(r)
			}
		}
		err = &PanicError{Value: r}
	}()
	return body(c)
}

// ErrorPanel renders err as an inline error box.
func ErrorPanel(c *Ctx, err error) {
	el := Begin(c, "div")
	if el.First {
		el.Node.SetClass("error", true)
		el.Node.SetStyle("border", "rounded")
	}
	Text(c, "error: "+err.Error())
	End(c)
}
