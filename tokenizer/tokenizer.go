// Package tokenizer segments Chinese text into space separated words.
package tokenizer

import (
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

type Tokenizer interface {
	// Tokenize returns the words of text joined by single spaces. Empty input
	// yields "".
	Tokenize(text string) string
	LoadUserDictionary(path string) error
	ReloadUserDictionary() error
}

// Cached memoizes Tokenize results. Loading or reloading a dictionary purges
// the cache.
type Cached struct {
	next  Tokenizer
	cache *lru.Cache[string, string]
}

func NewCached(next Tokenizer, size int) (*Cached, error) {
	if size < 1 {
		size = 1000
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}

	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Tokenize(text string) string {
	if text == "" {
		return ""
	}
	if out, ok := c.cache.Get(text); ok {
		return out
	}

	out := c.next.Tokenize(text)
	c.cache.Add(text, out)
	return out
}

func (c *Cached) LoadUserDictionary(path string) error {
	defer c.cache.Purge()
	return c.next.LoadUserDictionary(path)
}

func (c *Cached) ReloadUserDictionary() error {
	defer c.cache.Purge()
	return c.next.ReloadUserDictionary()
}

// Lazy builds the underlying tokenizer on first use. A failed build is retried
// on the next call; until then Tokenize returns its input unchanged.
type Lazy struct {
	mu    sync.Mutex
	build func() (Tokenizer, error)
	tok   Tokenizer
}

func NewLazy(build func() (Tokenizer, error)) *Lazy {
	return &Lazy{build: build}
}

func (l *Lazy) Get() (Tokenizer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.tok != nil {
		return l.tok, nil
	}

	tok, err := l.build()
	if err != nil {
		return nil, err
	}
	l.tok = tok
	return tok, nil
}

func (l *Lazy) Tokenize(text string) string {
	if text == "" {
		return ""
	}

	tok, err := l.Get()
	if err != nil {
		slog.Warn("tokenizer unavailable, using raw text", "error", err)
		return text
	}
	return tok.Tokenize(text)
}

func (l *Lazy) LoadUserDictionary(path string) error {
	tok, err := l.Get()
	if err != nil {
		return err
	}
	return tok.LoadUserDictionary(path)
}

func (l *Lazy) ReloadUserDictionary() error {
	tok, err := l.Get()
	if err != nil {
		return err
	}
	return tok.ReloadUserDictionary()
}
