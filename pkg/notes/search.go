package notes

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Match is a search hit.
type Match struct {
	ID      string
	Score   int
	Indexes []int
}

type noteSource struct {
	ids   []string
	texts []string
}

func (s noteSource) String(i int) string { return s.texts[i] }
func (s noteSource) Len() int            { return len(s.ids) }

// Search fuzzy-matches query against the first line of every note,
// collapsed or not, best matches first. An empty query matches nothing.
func (t *Tree) Search(query string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	var src noteSource
	var walk func(id string)
	walk = func(id string) {
		for _, c := range t.Notes[id].Children {
			first, _, _ := strings.Cut(t.Notes[c].Text, "\n")
			src.ids = append(src.ids, c)
			src.texts = append(src.texts, first)
			walk(c)
		}
	}
	walk(t.Root)

	found := fuzzy.FindFrom(query, src)
	out := make([]Match, len(found))
	for i, m := range found {
		out[i] = Match{ID: src.ids[m.Index], Score: m.Score, Indexes: m.MatchedIndexes}
	}
	return out
}
