// Package templates loads the prompt template catalogue, picks a template for a
// request and renders it against an assembled context.
package templates

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrTemplateNotFound     = errors.New("template not found")
	ErrLanguageNotSupported = errors.New("language not supported")
)

// Catalog maps template name to language to raw template text.
type Catalog struct {
	mu        sync.RWMutex
	paths     []string
	templates map[string]map[string]string
	files     []FileInfo
	loadedAt  time.Time
	onReload  []func()
}

type FileInfo struct {
	Path string `json:"path"`
	SHA1 string `json:"sha1"`
}

type Info struct {
	Files     []FileInfo          `json:"files"`
	Templates map[string][]string `json:"templates"`
	LoadedAt  time.Time           `json:"loaded_at"`
}

// LoadCatalog reads and validates every file in paths. A template name may only
// be defined once across all files.
func LoadCatalog(paths ...string) (*Catalog, error) {
	if len(paths) == 0 {
		return nil, errors.New("no template files configured")
	}

	c := &Catalog{paths: append([]string(nil), paths...)}
	if err := c.Reload(); err != nil {
		return nil, err
	}

	return c, nil
}

// NewCatalog builds an in-memory catalogue. Reload is a no-op on it.
func NewCatalog(templates map[string]map[string]string) (*Catalog, error) {
	for name, langs := range templates {
		for lang, text := range langs {
			if err := checkSyntax(name, lang, text); err != nil {
				return nil, err
			}
		}
	}

	return &Catalog{templates: templates, loadedAt: time.Now()}, nil
}

// Reload re-reads all catalogue files and swaps the contents in one step. On
// error the previous contents stay in place.
func (c *Catalog) Reload() error {
	if len(c.paths) == 0 {
		return nil
	}

	merged := make(map[string]map[string]string)
	files := make([]FileInfo, 0, len(c.paths))
	origin := make(map[string]string)

	for _, path := range c.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read template file %s: %w", path, err)
		}

		parsed, err := parseCatalog(data)
		if err != nil {
			return fmt.Errorf("invalid template file %s: %w", path, err)
		}

		for name, langs := range parsed {
			if prev, ok := origin[name]; ok {
				return fmt.Errorf("template %q defined in both %s and %s", name, prev, path)
			}
			origin[name] = path
			merged[name] = langs
		}

		sum := sha1.Sum(data)
		files = append(files, FileInfo{Path: path, SHA1: hex.EncodeToString(sum[:])})
	}

	c.mu.Lock()
	c.templates = merged
	c.files = files
	c.loadedAt = time.Now()
	hooks := append([]func(){}, c.onReload...)
	c.mu.Unlock()

	for _, h := range hooks {
		h()
	}

	slog.Info("template catalog loaded", "files", len(files), "templates", len(merged))
	return nil
}

// OnReload registers fn to run after every successful reload.
func (c *Catalog) OnReload(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReload = append(c.onReload, fn)
}

func (c *Catalog) Paths() []string {
	return append([]string(nil), c.paths...)
}

// Lookup returns the raw text for name in lang.
func (c *Catalog) Lookup(name, lang string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	langs, ok := c.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	text, ok := langs[lang]
	if !ok {
		return "", fmt.Errorf("%w: %s has no %s variant", ErrLanguageNotSupported, name, lang)
	}

	return text, nil
}

func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.templates))
	for name := range c.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) Languages(name string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	langs := make([]string, 0, len(c.templates[name]))
	for lang := range c.templates[name] {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

func (c *Catalog) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.templates[name]
	return ok
}

func (c *Catalog) HasLanguage(name, lang string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.templates[name][lang]
	return ok
}

func (c *Catalog) Info() Info {
	info := Info{Templates: make(map[string][]string)}
	for _, name := range c.Names() {
		info.Templates[name] = c.Languages(name)
	}

	c.mu.RLock()
	info.Files = append([]FileInfo(nil), c.files...)
	info.LoadedAt = c.loadedAt
	c.mu.RUnlock()

	return info
}

// parseCatalog accepts exactly a mapping of template name to a mapping of
// language to template text.
func parseCatalog(data []byte) (map[string]map[string]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("empty document")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: top level must be a mapping of template names", root.Line)
	}

	out := make(map[string]map[string]string, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if !isString(key) || key.Value == "" {
			return nil, fmt.Errorf("line %d: template name must be a non-empty string", key.Line)
		}
		name := key.Value
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("line %d: duplicate template %q", key.Line, name)
		}
		if val.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: template %q must map languages to text", val.Line, name)
		}
		if len(val.Content) == 0 {
			return nil, fmt.Errorf("line %d: template %q has no languages", val.Line, name)
		}

		langs := make(map[string]string, len(val.Content)/2)
		for j := 0; j+1 < len(val.Content); j += 2 {
			lk, lv := val.Content[j], val.Content[j+1]
			if !isString(lk) || lk.Value == "" {
				return nil, fmt.Errorf("line %d: language of %q must be a non-empty string", lk.Line, name)
			}
			if !isString(lv) {
				return nil, fmt.Errorf("line %d: %s/%s must be a string", lv.Line, name, lk.Value)
			}
			if _, dup := langs[lk.Value]; dup {
				return nil, fmt.Errorf("line %d: duplicate language %q for %q", lk.Line, lk.Value, name)
			}
			if err := checkSyntax(name, lk.Value, lv.Value); err != nil {
				return nil, err
			}
			langs[lk.Value] = lv.Value
		}
		out[name] = langs
	}

	return out, nil
}

func isString(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

func checkSyntax(name, lang, text string) error {
	if _, err := template.New(name).Funcs(funcs).Parse(text); err != nil {
		return fmt.Errorf("template %s/%s: %w", name, lang, err)
	}
	return nil
}
