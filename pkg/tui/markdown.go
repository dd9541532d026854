package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
)

// MarkdownShaper renders markdown to plain lines for dom.Document.Shaper.
// Colour is left to the painter, so glamour runs with the ASCII style and no
// document margin. One renderer is kept per wrap width.
type MarkdownShaper struct {
	renderers map[int]*glamour.TermRenderer
	style     glamour.TermRendererOption
}

// NewMarkdownShaper creates a shaper with an empty renderer cache
func NewMarkdownShaper() *MarkdownShaper {
	cfg := styles.ASCIIStyleConfig
	var zero uint
	cfg.Document.Margin = &zero
	return &MarkdownShaper{
		renderers: map[int]*glamour.TermRenderer{},
		style:     glamour.WithStyles(cfg),
	}
}

func (ms *MarkdownShaper) renderer(width int) (*glamour.TermRenderer, error) {
	if r, ok := ms.renderers[width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		ms.style,
		glamour.WithColorProfile(termenv.Ascii),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	ms.renderers[width] = r
	return r, nil
}

// Shape renders src wrapped to width. Blank lines around the document and
// trailing padding are removed. If glamour fails the source lines are
// returned unchanged.
func (ms *MarkdownShaper) Shape(src string, width int) []string {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	width = max(width, 1)
	r, err := ms.renderer(width)
	if err != nil {
		return strings.Split(src, "\n")
	}
	out, err := r.Render(src)
	if err != nil {
		return strings.Split(src, "\n")
	}

	lines := strings.Split(out, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
