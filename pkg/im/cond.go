package im

import "fmt"

// branchSet keeps the one live branch of a conditional or boundary.
type branchSet struct {
	active int
	group  *group
	// per pass
	calls int
	taken bool
}

// enter makes branch i the live one, destroying whatever other branch was
// live, and opens it on top of the frame stack.
func (c *Ctx) enter(owner *frame, bs *branchSet, i int, label string) {
	if bs.group == nil || bs.active != i {
		c.destroyGroup(bs.group, true)
		bs.group = c.newGroup()
		bs.active = i
	}
	bs.group.cursor = 0
	c.push(&frame{kind: frameBranch, group: bs.group, placer: owner.placer, label: label, owner: owner})
}

// leave closes the branch on top of the stack, truncating what it did not
// revisit.
func (c *Ctx) leave() {
	f := c.pop()
	c.truncate(f.group, f.group.cursor, true)
}

// If opens a conditional and reports whether cond holds. Chain further
// branches with ElseIf and Else, and close the chain with EndIf:
//
//	if im.If(c, a) {
//		...
//	} else if im.ElseIf(c, b) {
//		...
//	} else if im.Else(c) {
//		...
//	}
//	im.EndIf(c)
//
// Each branch has its own slots. A branch that stops being taken is torn
// down in the same pass.
func If(c *Ctx, cond bool) bool {
	s, fresh := c.next(kindCond)
	if fresh {
		s.value = &branchSet{active: -1}
	}
	bs := s.value.(*branchSet)
	bs.calls, bs.taken = 0, false

	f := &frame{kind: frameCond, placer: c.top().placer, label: "if", cond: bs}
	c.push(f)
	return c.branch(f, cond)
}

// ElseIf adds a branch to the conditional opened by If.
func ElseIf(c *Ctx, cond bool) bool {
	return c.branch(c.condFrame("ElseIf"), cond)
}

// Else adds the final branch; it is taken when no earlier branch was.
func Else(c *Ctx) bool {
	return c.branch(c.condFrame("Else"), true)
}

// EndIf closes the conditional. If no branch was taken this pass the
// previously live branch is torn down.
func EndIf(c *Ctx) {
	f := c.condFrame("EndIf")
	bs := f.cond
	if !bs.taken && bs.group != nil {
		c.destroyGroup(bs.group, true)
		bs.group, bs.active = nil, -1
	}
	c.pop()
}

func (c *Ctx) condFrame(op string) *frame {
	f := c.top()
	if f.kind == frameBranch && f.owner != nil && f.owner.kind == frameCond {
		c.leave()
		f = c.top()
	}
	if f.kind != frameCond {
		panic(c.structural(ErrUnbalanced, -1, "%s without If", op))
	}
	return f
}

func (c *Ctx) branch(f *frame, cond bool) bool {
	bs := f.cond
	i := bs.calls
	bs.calls++
	if !cond || bs.taken {
		return false
	}
	bs.taken = true
	c.enter(f, bs, i, fmt.Sprintf("if[%d]", i))
	return true
}
