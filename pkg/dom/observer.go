package dom

// ResizeEntry reports the new size of an observed node.
type ResizeEntry struct {
	Target *Node
	Rect   Rect
}

// ResizeObserver calls its callback after layout for observed nodes whose
// size changed, including the first layout after Observe.
type ResizeObserver struct {
	doc      *Document
	fn       func([]ResizeEntry)
	targets  map[*Node]Rect
	seen     map[*Node]bool
	disposed bool
}

// NewResizeObserver registers an observer with the document.
func (d *Document) NewResizeObserver(fn func([]ResizeEntry)) *ResizeObserver {
	ro := &ResizeObserver{doc: d, fn: fn, targets: map[*Node]Rect{}, seen: map[*Node]bool{}}
	d.observers = append(d.observers, ro)
	return ro
}

// Observe starts watching n.
func (ro *ResizeObserver) Observe(n *Node) {
	if ro.disposed {
		return
	}
	ro.targets[n] = Rect{}
	ro.seen[n] = false
	ro.doc.dirty = true
}

// Disconnect stops all observation and unregisters the observer. It is safe
// to call more than once.
func (ro *ResizeObserver) Disconnect() {
	if ro.disposed {
		return
	}
	ro.disposed = true
	clear(ro.targets)
	obs := ro.doc.observers
	for i, o := range obs {
		if o == ro {
			ro.doc.observers = append(obs[:i], obs[i+1:]...)
			break
		}
	}
}

// ObserverCount returns the number of live observers.
func (d *Document) ObserverCount() int { return len(d.observers) }

func (d *Document) notifyObservers() {
	for _, ro := range append([]*ResizeObserver(nil), d.observers...) {
		var entries []ResizeEntry
		for n, last := range ro.targets {
			r := n.layout.rect
			if n.layout.hidden || !n.IsConnected() {
				r = Rect{}
			}
			if !ro.seen[n] || r.W != last.W || r.H != last.H {
				ro.seen[n] = true
				ro.targets[n] = r
				entries = append(entries, ResizeEntry{Target: n, Rect: r})
			}
		}
		if len(entries) > 0 && !ro.disposed {
			ro.fn(entries)
		}
	}
}
