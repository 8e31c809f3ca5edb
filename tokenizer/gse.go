package tokenizer

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/go-ego/gse"
)

// Gse segments with a base dictionary plus any number of user dictionaries.
// Dictionaries use the gse text format: "word frequency [pos]" per line.
type Gse struct {
	loadMu    sync.Mutex
	mu        sync.RWMutex
	seg       *gse.Segmenter
	base      string
	userDicts []string
	hmm       bool
}

type GseOption func(*Gse)

// WithHMM enables HMM based recognition of words missing from the dictionaries.
func WithHMM(enabled bool) GseOption {
	return func(g *Gse) {
		g.hmm = enabled
	}
}

func WithUserDictionary(path string) GseOption {
	return func(g *Gse) {
		if path != "" {
			g.userDicts = append(g.userDicts, path)
		}
	}
}

// NewGse loads base as the main dictionary, or the embedded Chinese dictionary
// when base is empty.
func NewGse(base string, opts ...GseOption) (*Gse, error) {
	g := &Gse{base: base, hmm: true}
	for _, opt := range opts {
		opt(g)
	}

	seg, err := g.load(g.userDicts)
	if err != nil {
		return nil, err
	}
	g.seg = seg

	return g, nil
}

func (g *Gse) Tokenize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	g.mu.RLock()
	words := g.seg.Cut(text, g.hmm)
	g.mu.RUnlock()

	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}

// LoadUserDictionary adds path to the user dictionaries and rebuilds the
// segmenter.
func (g *Gse) LoadUserDictionary(path string) error {
	g.loadMu.Lock()
	defer g.loadMu.Unlock()

	g.mu.RLock()
	dicts := append(append([]string(nil), g.userDicts...), path)
	g.mu.RUnlock()

	return g.rebuild(dicts)
}

// ReloadUserDictionary rebuilds the segmenter from the current dictionary
// files on disk.
func (g *Gse) ReloadUserDictionary() error {
	g.loadMu.Lock()
	defer g.loadMu.Unlock()

	g.mu.RLock()
	dicts := append([]string(nil), g.userDicts...)
	g.mu.RUnlock()

	return g.rebuild(dicts)
}

// rebuild must be called with loadMu held.
func (g *Gse) rebuild(dicts []string) error {
	seg, err := g.load(dicts)
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.seg = seg
	g.userDicts = dicts
	g.mu.Unlock()

	slog.Info("tokenizer dictionaries loaded", "base", g.base, "user", dicts)
	return nil
}

func (g *Gse) load(userDicts []string) (*gse.Segmenter, error) {
	for _, path := range userDicts {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("user dictionary %s: %w", path, err)
		}
	}

	seg := new(gse.Segmenter)
	if g.base == "" {
		if err := seg.LoadDictEmbed(); err != nil {
			return nil, fmt.Errorf("load embedded dictionary: %w", err)
		}
	} else {
		if err := seg.LoadDict(g.base); err != nil {
			return nil, fmt.Errorf("load dictionary %s: %w", g.base, err)
		}
	}

	if len(userDicts) > 0 {
		if err := seg.LoadDict(userDicts...); err != nil {
			return nil, fmt.Errorf("load user dictionaries: %w", err)
		}
	}

	return seg, nil
}
