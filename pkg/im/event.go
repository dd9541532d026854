package im

import "github.com/evanschultz/float-notetree/pkg/dom"

type listenerState struct {
	node *dom.Node
	typ  string
	last *dom.Event
}

// On returns the most recent event of type typ that reached n since the
// previous read at this position, or nil. The listener is added once and
// removed when the position is torn down.
func On(c *Ctx, n *dom.Node, typ string) *dom.Event {
	s, fresh := c.next(kindListener)
	if fresh {
		s.value = &listenerState{}
	}
	ls := s.value.(*listenerState)
	if ls.node != n || ls.typ != typ {
		if s.release != nil {
			s.release()
		}
		ls.node, ls.typ, ls.last = n, typ, nil
		s.release = n.AddEventListener(typ, func(e *dom.Event) { ls.last = e })
	}
	ev := ls.last
	ls.last = nil
	return ev
}

type observerState struct {
	node *dom.Node
	last *dom.ResizeEntry
}

// OnResize observes the size of n and returns the latest size change since
// the previous read at this position, or nil. The observer is disconnected
// when the position is torn down.
func OnResize(c *Ctx, n *dom.Node) *dom.ResizeEntry {
	s, fresh := c.next(kindObserver)
	if fresh {
		s.value = &observerState{}
	}
	st := s.value.(*observerState)
	if st.node != n {
		if s.release != nil {
			s.release()
		}
		st.node, st.last = n, nil
		ro := c.Doc().NewResizeObserver(func(entries []dom.ResizeEntry) {
			e := entries[len(entries)-1]
			st.last = &e
		})
		ro.Observe(n)
		s.release = ro.Disconnect
	}
	e := st.last
	st.last = nil
	return e
}
