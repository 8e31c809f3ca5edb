package slots

import (
	"log/slog"
	"strings"
)

type Extractor struct {
	catalog   Catalog
	threshold int
	fuzzy     bool
}

type Option func(*Extractor)

// WithFuzzyThreshold sets the minimum similarity for fuzzy keyword matches.
// Values outside 1..100 keep the default.
func WithFuzzyThreshold(t int) Option {
	return func(e *Extractor) {
		if t > 0 && t <= 100 {
			e.threshold = t
		}
	}
}

func WithoutFuzzy() Option {
	return func(e *Extractor) {
		e.fuzzy = false
	}
}

func NewExtractor(catalog Catalog, opts ...Option) *Extractor {
	e := &Extractor{
		catalog:   catalog,
		threshold: DefaultFuzzyThreshold,
		fuzzy:     true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs one pass over the raw request and one over its tokenized form,
// then merges them. Multi-valued slots take the union of both passes, single
// valued slots prefer the raw pass.
func (e *Extractor) Extract(raw, tokenized string) Set {
	rawPass := e.extractOnce(raw)
	tokenPass := e.extractOnce(tokenized)

	out := make(Set, len(rawPass)+len(tokenPass))
	for name, v := range tokenPass {
		out[name] = v
	}
	for name, v := range rawPass {
		if prev, ok := out[name]; ok && name.MultiValued() {
			out[name] = prev.union(v)
			continue
		}
		out[name] = v
	}

	if len(out) > 0 {
		slog.Debug("slots extracted", "slots", out.String())
	}
	return out
}

// extractOnce matches numeric patterns and, per keyword slot, the first
// keyword contained in text. Slots without an exact hit fall back to fuzzy
// matching.
func (e *Extractor) extractOnce(text string) Set {
	out := make(Set)
	if strings.TrimSpace(text) == "" {
		return out
	}

	extractNumeric(text, out)

	for _, entry := range e.catalog {
		if word, ok := firstContained(text, entry.Words); ok {
			out.add(entry.Slot, word)
			continue
		}
		if !e.fuzzy {
			continue
		}
		if word, ok := bestFuzzy(text, entry.Words, e.threshold); ok {
			out.add(entry.Slot, word)
		}
	}

	return out
}

func firstContained(text string, words []string) (string, bool) {
	for _, w := range words {
		if strings.Contains(text, w) {
			return w, true
		}
	}
	return "", false
}
