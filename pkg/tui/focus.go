package tui

import (
	"github.com/evanschultz/float-notetree/pkg/dom"
)

// FocusRing cycles document focus over the focusable nodes in document
// order. The ring is recomputed on every move, so nodes added or removed by
// a pass are picked up without registration.
type FocusRing struct {
	doc     *dom.Document
	enabled bool
}

// NewFocusRing creates a focus ring for doc
func NewFocusRing(doc *dom.Document) *FocusRing {
	return &FocusRing{doc: doc, enabled: true}
}

// Next moves focus to the next focusable node, wrapping around
func (fr *FocusRing) Next() bool { return fr.step(1) }

// Previous moves focus to the previous focusable node, wrapping around
func (fr *FocusRing) Previous() bool { return fr.step(-1) }

func (fr *FocusRing) step(dir int) bool {
	nodes := fr.doc.Focusables()
	if !fr.enabled || len(nodes) == 0 {
		return false
	}

	cur := fr.Current()
	var next int
	if cur < 0 {
		// Nothing focused yet: forward starts at the top, backward at the bottom
		next = 0
		if dir < 0 {
			next = len(nodes) - 1
		}
	} else {
		next = (cur + dir + len(nodes)) % len(nodes)
	}
	fr.doc.Focus(nodes[next])
	return true
}

// SetFocus focuses the focusable node at index
func (fr *FocusRing) SetFocus(index int) bool {
	nodes := fr.doc.Focusables()
	if !fr.enabled || index < 0 || index >= len(nodes) {
		return false
	}
	fr.doc.Focus(nodes[index])
	return true
}

// Current returns the index of the focused node in the ring, or -1
func (fr *FocusRing) Current() int {
	active := fr.doc.ActiveElement()
	if active == nil {
		return -1
	}
	for i, n := range fr.doc.Focusables() {
		if n == active {
			return i
		}
	}
	return -1
}

// SetEnabled turns focus cycling on or off. Disabling blurs the document.
func (fr *FocusRing) SetEnabled(enabled bool) {
	fr.enabled = enabled
	if !enabled {
		fr.doc.Blur()
	}
}

// Enabled reports whether Next and Previous move focus
func (fr *FocusRing) Enabled() bool { return fr.enabled }

// capturesTab reports whether n or one of its ancestors handles tab itself.
func capturesTab(n *dom.Node) bool {
	for ; n != nil; n = n.Parent() {
		if n.IsElement() && n.HasClass("capture-tab") {
			return true
		}
	}
	return false
}
