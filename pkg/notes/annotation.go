package notes

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	// [key:: value] anywhere in a note
	annotationRe = regexp.MustCompile(`\[(\w+)::\s*([^\]]+)\]`)
	// leading "kind:: rest", e.g. "decision:: ship it"
	kindRe = regexp.MustCompile(`^\s*(\w+)::\s*(.*)$`)
)

// Annotation is a [key:: value] pair found in note text.
type Annotation struct {
	Key   string
	Value string
}

// Annotations returns the [key:: value] pairs of text in order of
// appearance. Later duplicates of a key win in AnnotationMap.
func Annotations(text string) []Annotation {
	var out []Annotation
	for _, m := range annotationRe.FindAllStringSubmatch(text, -1) {
		out = append(out, Annotation{Key: strings.TrimSpace(m[1]), Value: strings.TrimSpace(m[2])})
	}
	return out
}

// AnnotationMap returns the annotations of text keyed by name.
func AnnotationMap(text string) map[string]string {
	out := map[string]string{}
	for _, a := range Annotations(text) {
		out[a.Key] = a.Value
	}
	return out
}

// Kind splits a leading "kind:: rest" prefix off text. It returns "" and
// the text unchanged when there is none.
func Kind(text string) (kind, rest string) {
	first, tail, _ := strings.Cut(text, "\n")
	m := kindRe.FindStringSubmatch(first)
	if m == nil {
		return "", text
	}
	rest = m[2]
	if tail != "" {
		rest += "\n" + tail
	}
	return strings.ToLower(m[1]), rest
}

// StripAnnotations removes [key:: value] pairs and the space they leave.
func StripAnnotations(text string) string {
	return strings.Join(strings.Fields(annotationRe.ReplaceAllString(text, "")), " ")
}

// Estimate returns the duration in an [est:: ...] annotation.
func Estimate(text string) (time.Duration, bool) {
	v, ok := AnnotationMap(text)["est"]
	if !ok {
		return 0, false
	}
	d, err := time.ParseDuration(strings.ReplaceAll(v, " ", ""))
	if err != nil {
		return 0, false
	}
	return d, true
}

// Tags collects the distinct kinds and annotation keys used in the tree.
func (t *Tree) Tags() []string {
	set := map[string]bool{}
	for id, n := range t.Notes {
		if id == t.Root {
			continue
		}
		if k, _ := Kind(n.Text); k != "" {
			set[k+"::"] = true
		}
		for _, a := range Annotations(n.Text) {
			set["["+a.Key+"::]"] = true
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
