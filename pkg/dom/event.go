package dom

// Event is dispatched to a target node and bubbles towards the body.
type Event struct {
	Type          string
	Target        *Node
	CurrentTarget *Node
	// Key is the key name for keyboard events ("up", "ctrl+c", "a").
	Key string
	// Data carries a host-specific payload, such as the original key message.
	Data any

	stopped   bool
	prevented bool
}

// StopPropagation keeps the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// PreventDefault marks the event so that hosts skip their default action.
func (e *Event) PreventDefault() { e.prevented = true }

func (e *Event) DefaultPrevented() bool { return e.prevented }

type listener struct {
	fn      func(*Event)
	removed bool
}

// AddEventListener registers fn for events of the given type on n. The
// returned function removes the listener; calling it more than once is safe.
func (n *Node) AddEventListener(typ string, fn func(*Event)) (remove func()) {
	if n.listeners == nil {
		n.listeners = map[string][]*listener{}
	}
	l := &listener{fn: fn}
	n.listeners[typ] = append(n.listeners[typ], l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		ls := n.listeners[typ]
		for i, x := range ls {
			if x == l {
				n.listeners[typ] = append(ls[:i], ls[i+1:]...)
				break
			}
		}
		if len(n.listeners[typ]) == 0 {
			delete(n.listeners, typ)
		}
	}
}

// ListenerCount returns the number of listeners registered for typ on n.
func (n *Node) ListenerCount(typ string) int { return len(n.listeners[typ]) }

// Dispatch delivers ev to target and then to each ancestor until the body
// is reached or a listener stops propagation. It returns false if a
// listener called PreventDefault.
func (d *Document) Dispatch(target *Node, ev *Event) bool {
	if target == nil {
		target = d.body
	}
	ev.Target = target
	for n := target; n != nil; n = n.parent {
		ls := n.listeners[ev.Type]
		if len(ls) > 0 {
			ev.CurrentTarget = n
			snapshot := append([]*listener(nil), ls...)
			for _, l := range snapshot {
				if !l.removed {
					l.fn(ev)
				}
			}
		}
		if ev.stopped {
			break
		}
	}
	ev.CurrentTarget = nil
	return !ev.prevented
}
