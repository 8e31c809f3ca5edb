package intent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/imkonsowa/waiter-prompts/slots"
)

// Scorer is a statistical model returning a probability per label.
type Scorer interface {
	Score(ctx context.Context, text string) (map[Label]float64, error)
}

type Classifier struct {
	keywords map[Label][]string
	bonuses  []Bonus
	priority []Label
	scorer   Scorer
}

type Option func(*Classifier)

func WithScorer(s Scorer) Option {
	return func(c *Classifier) {
		c.scorer = s
	}
}

func NewClassifier(rules Rules, opts ...Option) (*Classifier, error) {
	if err := rules.validate(); err != nil {
		return nil, fmt.Errorf("invalid intent rules: %w", err)
	}

	c := &Classifier{
		keywords: make(map[Label][]string, len(rules.Keywords)),
		bonuses:  rules.Bonuses,
		priority: rules.Priority,
	}
	for label, words := range rules.Keywords {
		c.keywords[label] = dedupe(words)
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Scores combines keyword hits, scorer probabilities and slot bonuses.
func (c *Classifier) Scores(ctx context.Context, text string, set slots.Set) Scores {
	raw := make(map[Label]float64, len(Labels))

	for _, label := range Labels {
		for _, word := range c.keywords[label] {
			if strings.Contains(text, word) {
				raw[label]++
			}
		}
	}

	if c.scorer != nil && text != "" {
		probs, err := c.scorer.Score(ctx, text)
		if err != nil {
			slog.Warn("intent scorer failed, using keyword scores only", "error", err)
		} else {
			for label, p := range probs {
				if label.Valid() {
					raw[label] += p
				}
			}
		}
	}

	for _, b := range c.bonuses {
		if b.applies(set) {
			raw[b.Label] += b.Weight
		}
	}

	scores := make(Scores, len(raw))
	for label, v := range raw {
		if v > 0 {
			scores[label] = v
		}
	}

	return scores
}

func (c *Classifier) Classify(ctx context.Context, text string, set slots.Set) Label {
	scores := c.Scores(ctx, text, set)
	label := scores.Best(c.priority)

	slog.Debug("intent classified", "intent", label, "scores", scores)
	return label
}

func dedupe(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
