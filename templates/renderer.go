package templates

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

var funcs = template.FuncMap{
	"join": join,
}

func join(v any, sep string) string {
	switch items := v.(type) {
	case []string:
		return strings.Join(items, sep)
	case []any:
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, sep)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

type cacheKey struct {
	name string
	lang string
	raw  string
}

type compiled struct {
	tmpl *template.Template
	vars []string
}

type Renderer struct {
	catalog *Catalog

	mu    sync.RWMutex
	cache map[cacheKey]*compiled
}

func NewRenderer(catalog *Catalog) *Renderer {
	r := &Renderer{
		catalog: catalog,
		cache:   make(map[cacheKey]*compiled),
	}
	catalog.OnReload(r.ClearCache)
	return r
}

// Render fills the template name/lang with the keys of ctx it references.
// Referenced keys missing from ctx render empty, keys starting with "_" are
// always passed through. Blank lines are dropped from the output.
func (r *Renderer) Render(name, lang string, ctx map[string]any) (string, error) {
	c, err := r.compile(name, lang)
	if err != nil {
		return "", err
	}

	data := make(map[string]any, len(c.vars))
	for _, v := range c.vars {
		if val, ok := ctx[v]; ok && val != nil {
			data[v] = val
		} else {
			data[v] = ""
		}
	}
	for k, v := range ctx {
		if strings.HasPrefix(k, "_") {
			data[k] = v
		}
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s/%s: %w", name, lang, err)
	}

	return stripBlankLines(buf.String()), nil
}

// Variables returns the context keys the template reads, sorted.
func (r *Renderer) Variables(name, lang string) ([]string, error) {
	c, err := r.compile(name, lang)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), c.vars...), nil
}

func (r *Renderer) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.cache)
}

func (r *Renderer) compile(name, lang string) (*compiled, error) {
	raw, err := r.catalog.Lookup(name, lang)
	if err != nil {
		return nil, err
	}

	key := cacheKey{name: name, lang: lang, raw: raw}

	r.mu.RLock()
	c, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=zero").Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse template %s/%s: %w", name, lang, err)
	}
	c = &compiled{tmpl: tmpl, vars: referencedVars(tmpl)}

	r.mu.Lock()
	r.cache[key] = c
	r.mu.Unlock()

	return c, nil
}

func stripBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
