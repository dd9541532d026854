package im

import (
	"fmt"
	"reflect"

	"github.com/evanschultz/float-notetree/pkg/dom"
)

type listItem struct {
	group *group
	seen  uint64
}

type listState struct {
	items   map[any]*listItem
	gen     uint64
	pending []*dom.Node
}

// BeginList opens a keyed list at the current position. Items are added
// with BeginKey/EndKey; EndList removes the items whose keys were not seen
// this pass and attaches the rest in the order they were rendered.
func BeginList(c *Ctx) {
	s, fresh := c.next(kindList)
	if fresh {
		s.value = &listState{items: map[any]*listItem{}}
	}
	ls := s.value.(*listState)
	ls.gen++
	clear(ls.pending)
	ls.pending = ls.pending[:0]
	c.push(&frame{kind: frameList, placer: c.top().placer, label: "list", list: ls})
}

// BeginKey opens the item for key. It reports whether the item is new. The
// same key always maps to the same slots and nodes while it stays in the
// list. Keys must be comparable and unique within a pass.
func BeginKey(c *Ctx, key any) bool {
	f := c.top()
	if f.kind != frameList {
		panic(c.structural(ErrUnbalanced, -1, "BeginKey called inside %q", f.label))
	}
	if key == nil || !reflect.TypeOf(key).Comparable() {
		panic(c.structural(ErrBadKey, -1, "key %v (%T)", key, key))
	}
	ls := f.list
	label := fmt.Sprintf("key(%v)", key)
	it, ok := ls.items[key]
	if ok && it.seen == ls.gen {
		panic(c.structural(ErrDuplicateKey, -1, "%v", key))
	}
	if !ok {
		it = &listItem{group: c.newGroup()}
		ls.items[key] = it
	}
	it.seen = ls.gen
	it.group.cursor = 0
	c.push(&frame{kind: frameItem, group: it.group, placer: listPlacer{ls: ls}, label: label, owner: f})
	return !ok
}

// EndKey closes the item opened by BeginKey.
func EndKey(c *Ctx) {
	if c.top().kind != frameItem {
		panic(c.structural(ErrUnbalanced, -1, "EndKey called while %q is open", c.top().label))
	}
	c.leave()
}

// EndList closes the list: unseen items are torn down, then the nodes of the
// surviving items are attached in one batch.
func EndList(c *Ctx) {
	f := c.top()
	if f.kind != frameList {
		panic(c.structural(ErrUnbalanced, -1, "EndList called while %q is open", f.label))
	}
	ls := f.list
	for k, it := range ls.items {
		if it.seen != ls.gen {
			c.destroyGroup(it.group, true)
			delete(ls.items, k)
		}
	}
	c.pop()
	c.top().placer.placeRun(ls.pending)
}

// Keyed renders one item per element of items, keyed by key, inside its own
// list.
func Keyed[T any, K comparable](c *Ctx, items []T, key func(T) K, render func(c *Ctx, i int, item T)) {
	BeginList(c)
	for i, item := range items {
		BeginKey(c, key(item))
		render(c, i, item)
		EndKey(c)
	}
	EndList(c)
}
