package routes

import (
	"sort"
	"strings"

	"loramgr/internal/common/fsutil"
)

// Classifier decides the category of a directory that is reachable only
// through a link. ok is false when the classifier has no opinion; the mapper
// then tries its next strategy.
type Classifier interface {
	Classify(target string, links []string) (c Category, ok bool)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(target string, links []string) (Category, bool)

func (f ClassifierFunc) Classify(target string, links []string) (Category, bool) {
	return f(target, links)
}

// ContainmentClassifier is the substring heuristic: a path is a checkpoint if
// it contains, or is contained in, any checkpoint root; else a lora if the
// same holds for a lora root. It is not path-boundary aware, and a lora root
// nested under a checkpoint root (or the reverse) classifies as checkpoint.
type ContainmentClassifier struct {
	CheckpointRoots []string
	LoraRoots       []string
}

func (c ContainmentClassifier) Classify(target string, links []string) (Category, bool) {
	candidates := make([]string, 0, len(links)+1)
	candidates = append(candidates, fsutil.Normalize(target))
	for _, l := range links {
		candidates = append(candidates, fsutil.Normalize(l))
	}
	if overlapsAny(candidates, c.CheckpointRoots) {
		return Checkpoint, true
	}
	if overlapsAny(candidates, c.LoraRoots) {
		return Lora, true
	}
	return "", false
}

func overlapsAny(candidates, roots []string) bool {
	for _, r := range roots {
		nr := fsutil.Normalize(r)
		if nr == "" {
			continue
		}
		for _, p := range candidates {
			if strings.Contains(p, nr) || strings.Contains(nr, p) {
				return true
			}
		}
	}
	return false
}

// ExplicitClassifier maps directory prefixes to categories. The longest
// matching prefix (on a path boundary) wins.
type ExplicitClassifier struct {
	prefixes []string
	cats     map[string]Category
}

// NewExplicitClassifier builds a classifier from a prefix → category map.
// Entries with an unknown category are ignored.
func NewExplicitClassifier(m map[string]string) *ExplicitClassifier {
	ec := &ExplicitClassifier{cats: make(map[string]Category, len(m))}
	for p, raw := range m {
		c, ok := ParseCategory(raw)
		np := fsutil.Normalize(p)
		if !ok || np == "" {
			continue
		}
		ec.cats[np] = c
		ec.prefixes = append(ec.prefixes, np)
	}
	sort.Slice(ec.prefixes, func(i, j int) bool {
		if len(ec.prefixes[i]) != len(ec.prefixes[j]) {
			return len(ec.prefixes[i]) > len(ec.prefixes[j])
		}
		return ec.prefixes[i] < ec.prefixes[j]
	})
	return ec
}

// Len returns the number of usable prefixes.
func (e *ExplicitClassifier) Len() int { return len(e.prefixes) }

func (e *ExplicitClassifier) Classify(target string, links []string) (Category, bool) {
	paths := append([]string{target}, links...)
	for _, p := range paths {
		np := fsutil.Normalize(p)
		for _, pre := range e.prefixes {
			if np == pre || strings.HasPrefix(np, strings.TrimSuffix(pre, "/")+"/") {
				return e.cats[pre], true
			}
		}
	}
	return "", false
}
