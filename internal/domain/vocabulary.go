package domain

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// vocabularyYAML is the curated mapping from canonical category to the raw
// label variants observed in the Storm Events database. It is data, not
// logic: audit and extend it without touching the classifier.
//
//go:embed vocabulary.yaml
var vocabularyYAML []byte

type vocabularyFile struct {
	Categories map[string][]string `yaml:"categories"`
}

// Classifier maps raw free-text event labels to canonical categories via a
// reverse index built once at construction. Matching is exact-string after
// label normalization; there is deliberately no substring, prefix, or fuzzy
// matching, so the behavior of any given label can be read directly out of
// the vocabulary file.
type Classifier struct {
	index      map[string]CanonicalEvent
	categories int
}

// NewClassifier builds a Classifier from the embedded vocabulary.
func NewClassifier() (*Classifier, error) {
	return newClassifier(vocabularyYAML)
}

func newClassifier(data []byte) (*Classifier, error) {
	var vf vocabularyFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}

	known := make(map[CanonicalEvent]bool, len(CanonicalEvents))
	for _, ev := range CanonicalEvents {
		known[ev] = true
	}

	index := make(map[string]CanonicalEvent)
	for name, synonyms := range vf.Categories {
		event := CanonicalEvent(name)
		if !known[event] {
			return nil, fmt.Errorf("vocabulary category %q is not a canonical event", name)
		}
		if len(synonyms) == 0 {
			return nil, fmt.Errorf("vocabulary category %q has no synonyms", name)
		}
		for _, raw := range synonyms {
			label := NormalizeLabel(raw)
			if label == "" {
				return nil, fmt.Errorf("vocabulary category %q contains an empty synonym", name)
			}
			if prev, dup := index[label]; dup {
				if prev != event {
					return nil, fmt.Errorf("label %q mapped to both %q and %q", label, prev, event)
				}
				return nil, fmt.Errorf("label %q listed twice under %q", label, event)
			}
			index[label] = event
		}
	}

	return &Classifier{index: index, categories: len(vf.Categories)}, nil
}

// Classify resolves a raw event label to its canonical category. The boolean
// is false when the label is not in any category's membership set; such
// records are excluded from event-keyed aggregation, which is why callers
// must surface the miss rather than swallow it.
func (c *Classifier) Classify(rawLabel string) (CanonicalEvent, bool) {
	event, ok := c.index[NormalizeLabel(rawLabel)]
	return event, ok
}

// Labels returns the number of distinct raw labels in the index.
func (c *Classifier) Labels() int { return len(c.index) }

// Categories returns the number of categories loaded from the vocabulary.
func (c *Classifier) Categories() int { return c.categories }

// NormalizeLabel lower-cases a raw label and collapses interior whitespace
// runs to single spaces. This is the only preprocessing applied before the
// exact-match lookup.
func NormalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
