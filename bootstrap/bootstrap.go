// Package bootstrap wires the prompt pipeline and its stores from config.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/imkonsowa/waiter-prompts/assembler"
	"github.com/imkonsowa/waiter-prompts/config"
	"github.com/imkonsowa/waiter-prompts/history"
	"github.com/imkonsowa/waiter-prompts/intent"
	"github.com/imkonsowa/waiter-prompts/prompt"
	"github.com/imkonsowa/waiter-prompts/slots"
	"github.com/imkonsowa/waiter-prompts/templates"
	"github.com/imkonsowa/waiter-prompts/tokenizer"
	"github.com/imkonsowa/waiter-prompts/weather"
)

type Runtime struct {
	Builder       *prompt.Builder
	Catalog       *templates.Catalog
	Tokenizer     tokenizer.Tokenizer
	History       *history.DB
	Conversations *history.Conversations

	rdb     *redis.Client
	watcher *templates.Watcher
}

// New builds the pipeline. Hot reload starts when templates.watch is set and
// stops with ctx.
func New(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{}

	catalog, err := templates.LoadCatalog(cfg.Templates.Files...)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	rt.Catalog = catalog

	tok, err := NewTokenizer(cfg.Tokenizer)
	if err != nil {
		return nil, err
	}
	rt.Tokenizer = tok

	classifier, err := newClassifier(cfg)
	if err != nil {
		return nil, err
	}

	selector, err := templates.NewSelector(templates.DefaultIntentTable(), catalog)
	if err != nil {
		return nil, err
	}

	asm, err := assembler.New(assembler.DefaultTables())
	if err != nil {
		return nil, err
	}

	deps := prompt.Deps{
		Tokenizer:  tok,
		Extractor:  slots.NewExtractor(slots.DefaultCatalog(), slots.WithFuzzyThreshold(cfg.Prompt.FuzzyThreshold)),
		Classifier: classifier,
		Selector:   selector,
		Assembler:  asm,
		Renderer:   templates.NewRenderer(catalog),
		Weather:    weather.NewStatic(weatherOverrides(cfg.Weather)),
	}

	db, err := OpenHistory(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rt.History = db
	deps.History = db

	if cfg.Redis.Addr != "" {
		rt.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		deps.History = history.NewCached(db, rt.rdb, time.Duration(cfg.History.CacheTTLSecs)*time.Second)
	}

	if cfg.History.ChatDBPath != "" {
		conv, err := history.OpenConversations(cfg.History.ChatDBPath, 0)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to open conversation store: %w", err)
		}
		rt.Conversations = conv
		deps.Conversations = conv
	}

	rt.Builder, err = prompt.New(deps, prompt.Options{
		MaxLength:       cfg.Prompt.MaxLength,
		DefaultLanguage: cfg.Prompt.DefaultLanguage,
		DefaultLocation: cfg.Prompt.DefaultLocation,
		SmartSelect:     cfg.Prompt.SmartSelect,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}

	if cfg.Templates.Watch {
		if err := rt.watch(ctx, cfg); err != nil {
			rt.Close()
			return nil, err
		}
	}

	return rt, nil
}

// Reload re-reads the template files and the tokenizer user dictionary.
func (r *Runtime) Reload() error {
	if err := r.Catalog.Reload(); err != nil {
		return err
	}
	return r.Tokenizer.ReloadUserDictionary()
}

func (r *Runtime) Close() {
	if r.watcher != nil {
		r.watcher.Stop()
	}
	if r.Conversations != nil {
		if err := r.Conversations.Close(); err != nil {
			slog.Warn("failed to close conversation store", "error", err)
		}
	}
	if r.rdb != nil {
		_ = r.rdb.Close()
	}
	if r.History != nil {
		if err := r.History.Close(); err != nil {
			slog.Warn("failed to close history db", "error", err)
		}
	}
}

func (r *Runtime) watch(ctx context.Context, cfg *config.Config) error {
	w, err := templates.NewWatcher(templates.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	r.watcher = w

	for _, path := range r.Catalog.Paths() {
		if err := w.Watch(path, r.Catalog.Reload); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}
	if cfg.Tokenizer.UserDictionary != "" {
		if err := w.Watch(cfg.Tokenizer.UserDictionary, r.Tokenizer.ReloadUserDictionary); err != nil {
			return fmt.Errorf("failed to watch %s: %w", cfg.Tokenizer.UserDictionary, err)
		}
	}

	w.Start(ctx)
	slog.Info("watching templates for changes", "files", r.Catalog.Paths())
	return nil
}

// NewTokenizer returns a cached tokenizer whose segmenter loads its
// dictionaries on first use.
func NewTokenizer(cfg config.Tokenizer) (tokenizer.Tokenizer, error) {
	lazy := tokenizer.NewLazy(func() (tokenizer.Tokenizer, error) {
		var opts []tokenizer.GseOption
		if cfg.UserDictionary != "" {
			opts = append(opts, tokenizer.WithUserDictionary(cfg.UserDictionary))
		}
		return tokenizer.NewGse(cfg.BaseDictionary, opts...)
	})

	return tokenizer.NewCached(lazy, cfg.CacheSize)
}

// OpenHistory opens and migrates the history database.
func OpenHistory(ctx context.Context, cfg *config.Config) (*history.DB, error) {
	dsn := cfg.History.SqlitePath
	if cfg.History.Driver == "postgres" {
		dsn = cfg.Postgres.ConnStr()
	}

	db, err := history.Open(cfg.History.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate history db: %w", err)
	}

	return db, nil
}

func newClassifier(cfg *config.Config) (*intent.Classifier, error) {
	if !cfg.Prompt.UseMLIntent {
		return intent.NewClassifier(intent.DefaultRules())
	}

	llm, err := ollama.New(
		ollama.WithServerURL(cfg.Ollama.Address()),
		ollama.WithModel(cfg.Ollama.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding model: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	scorer, err := intent.NewEmbeddingScorer(embedder, intent.DefaultExamples, cfg.Prompt.ScorerTemp)
	if err != nil {
		return nil, err
	}
	slog.Info("statistical intent scoring enabled", "model", cfg.Ollama.EmbeddingModel)

	return intent.NewClassifier(intent.DefaultRules(), intent.WithScorer(scorer))
}

func weatherOverrides(cfg config.Weather) map[string]weather.Report {
	out := make(map[string]weather.Report, len(cfg.Table))
	for city, e := range cfg.Table {
		out[city] = weather.Report{Weather: e.Weather, Temperature: e.Temperature}
	}
	return out
}
