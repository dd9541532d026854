package notes

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// WriteOutline writes the tree as an indented bullet list, two spaces per
// level. Multi-line notes continue on lines indented past the bullet.
func (t *Tree) WriteOutline(w io.Writer) error {
	bw := bufio.NewWriter(w)
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		for _, c := range t.Notes[id].Children {
			indent := strings.Repeat("  ", depth)
			lines := strings.Split(t.Notes[c].Text, "\n")
			fmt.Fprintf(bw, "%s• %s\n", indent, lines[0])
			for _, l := range lines[1:] {
				fmt.Fprintf(bw, "%s  %s\n", indent, l)
			}
			walk(c, depth+1)
		}
	}
	walk(t.Root, 0)
	return bw.Flush()
}

// Outline returns the tree in outline form.
func (t *Tree) Outline() string {
	var sb strings.Builder
	_ = t.WriteOutline(&sb)
	return sb.String()
}

// ParseOutline builds a tree from outline text. Levels are counted in pairs
// of leading spaces; a line that is not a bullet continues the previous
// note. A level deeper than one past its predecessor is clamped.
func ParseOutline(r io.Reader, now time.Time) (*Tree, error) {
	t := NewTree(now)
	// stack[d] is the last note inserted at depth d
	stack := []string{}
	last := ""

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		level := 0
		rest := line
		for strings.HasPrefix(rest, "  ") {
			level++
			rest = rest[2:]
		}
		text, isBullet := cutBullet(rest)
		if !isBullet {
			if last == "" {
				return nil, fmt.Errorf("outline line %d: text before the first bullet", lineNo)
			}
			n := t.Notes[last]
			n.Text += "\n" + strings.TrimSpace(rest)
			continue
		}

		level = min(level, len(stack))
		parent := t.Root
		if level > 0 {
			parent = stack[level-1]
		}
		id, err := t.Insert(parent, len(t.Notes[parent].Children), text, now)
		if err != nil {
			return nil, err
		}
		stack = append(stack[:level], id)
		last = id
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read outline: %w", err)
	}
	return t, nil
}

func cutBullet(s string) (string, bool) {
	for _, b := range []string{"• ", "◦ ", "- ", "* "} {
		if strings.HasPrefix(s, b) {
			return s[len(b):], true
		}
	}
	if s == "•" || s == "◦" || s == "-" || s == "*" {
		return "", true
	}
	return s, false
}
