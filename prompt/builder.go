// Package prompt runs a dining request through the full NLU pipeline and
// renders the resulting prompt.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/imkonsowa/waiter-prompts/assembler"
	"github.com/imkonsowa/waiter-prompts/intent"
	"github.com/imkonsowa/waiter-prompts/models"
	"github.com/imkonsowa/waiter-prompts/slots"
	"github.com/imkonsowa/waiter-prompts/templates"
	"github.com/imkonsowa/waiter-prompts/tokenizer"
	"github.com/imkonsowa/waiter-prompts/weather"
)

const (
	DefaultLanguage = "zh-CN"
	DefaultLocation = "北京"
)

// Stage names reported to a Trace func, in pipeline order.
const (
	StageNormalized = "normalized"
	StageTokenized  = "tokenized"
	StageSlots      = "slots"
	StageIntent     = "intent"
	StageTemplate   = "template"
	StageContext    = "context"
)

type HistoryStore interface {
	OrderHistory(ctx context.Context, userID string) ([]string, error)
	PlayedGames(ctx context.Context, userID string) ([]string, error)
}

type ConversationStore interface {
	History(ctx context.Context, sessionID string) ([]string, error)
	Append(ctx context.Context, sessionID, request, reply string) error
}

// Trace receives intermediate results while a prompt is built.
type Trace func(stage string, data any)

type Deps struct {
	Tokenizer  tokenizer.Tokenizer
	Extractor  *slots.Extractor
	Classifier *intent.Classifier
	Selector   *templates.Selector
	Assembler  *assembler.Assembler
	Renderer   *templates.Renderer

	// Optional lookups. Nil disables them.
	Weather       weather.Provider
	History       HistoryStore
	Conversations ConversationStore
}

type Options struct {
	MaxLength       int
	DefaultLanguage string
	DefaultLocation string
	SmartSelect     bool
}

type Builder struct {
	deps Deps
	opts Options
}

func New(deps Deps, opts Options) (*Builder, error) {
	switch {
	case deps.Tokenizer == nil:
		return nil, errors.New("prompt builder requires a tokenizer")
	case deps.Extractor == nil:
		return nil, errors.New("prompt builder requires a slot extractor")
	case deps.Classifier == nil:
		return nil, errors.New("prompt builder requires an intent classifier")
	case deps.Selector == nil:
		return nil, errors.New("prompt builder requires a template selector")
	case deps.Assembler == nil:
		return nil, errors.New("prompt builder requires a context assembler")
	case deps.Renderer == nil:
		return nil, errors.New("prompt builder requires a renderer")
	}

	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = DefaultLanguage
	}
	if opts.DefaultLocation == "" {
		opts.DefaultLocation = DefaultLocation
	}

	return &Builder{deps: deps, opts: opts}, nil
}

type Result struct {
	Prompt      string
	Intent      intent.Label
	Template    string
	Language    string
	Slots       slots.Set
	OrderPlaced bool
	Context     assembler.Context
}

// SlotMap renders the slots as plain strings, the form used on the wire.
func (r *Result) SlotMap() map[string]string {
	out := make(map[string]string, len(r.Slots))
	for name, v := range r.Slots {
		out[string(name)] = v.String()
	}
	return out
}

func (r *Result) Event(req models.PromptRequest) models.PromptEvent {
	return models.PromptEvent{
		RequestID: req.RequestID,
		UserID:    req.UserID,
		Intent:    string(r.Intent),
		Template:  r.Template,
		Language:  r.Language,
		Slots:     r.SlotMap(),
		Prompt:    r.Prompt,
	}
}

func (b *Builder) Build(ctx context.Context, req models.PromptRequest) (*Result, error) {
	return b.BuildTraced(ctx, req, nil)
}

// BuildTraced is Build with every intermediate stage reported to trace.
// Only unknown templates and unsupported languages fail; lookup errors fall
// back to empty data.
func (b *Builder) BuildTraced(ctx context.Context, req models.PromptRequest, trace Trace) (*Result, error) {
	if trace == nil {
		trace = func(string, any) {}
	}

	text := Normalize(req.Text, b.opts.MaxLength)
	trace(StageNormalized, text)

	tokenized := b.deps.Tokenizer.Tokenize(strings.ToLower(text))
	trace(StageTokenized, tokenized)

	set := b.deps.Extractor.Extract(text, tokenized)
	trace(StageSlots, set.String())

	orderPlaced := req.OrderPlaced || DetectOrder(text) || DetectOrder(tokenized)

	label := b.deps.Classifier.Classify(ctx, text, set)
	trace(StageIntent, label)

	name := b.chooseTemplate(req, label, set, orderPlaced)
	lang := req.Language
	if lang == "" {
		lang = b.opts.DefaultLanguage
	}
	trace(StageTemplate, map[string]string{"name": name, "language": lang})

	location := req.Location
	if location == "" {
		location = b.opts.DefaultLocation
	}

	in := assembler.Input{
		Request:     text,
		Location:    location,
		Slots:       set,
		OrderPlaced: orderPlaced,
	}
	if b.deps.Weather != nil {
		report := b.deps.Weather.Lookup(ctx, location)
		in.Weather = &report
	}
	if req.UserID != "" {
		in.OrderHistory, in.PlayedGames = b.userHistory(ctx, req.UserID)
		in.Conversation = b.conversation(ctx, req.UserID)
	}

	vars := b.deps.Assembler.Assemble(in)
	trace(StageContext, vars)

	out, err := b.deps.Renderer.Render(name, lang, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	if req.UserID != "" && b.deps.Conversations != nil && text != "" {
		if err := b.deps.Conversations.Append(ctx, req.UserID, text, ""); err != nil {
			slog.Warn("failed to record conversation turn", "user", req.UserID, "error", err)
		}
	}

	return &Result{
		Prompt:      out,
		Intent:      label,
		Template:    name,
		Language:    lang,
		Slots:       set,
		OrderPlaced: orderPlaced,
		Context:     vars,
	}, nil
}

func (b *Builder) chooseTemplate(req models.PromptRequest, label intent.Label, set slots.Set, orderPlaced bool) string {
	switch {
	case req.Template != "":
		return req.Template
	case orderPlaced:
		return templates.PreMealGame
	case req.SmartSelect || b.opts.SmartSelect:
		return b.deps.Selector.SelectBySlots(set)
	default:
		return b.deps.Selector.Select(label, "")
	}
}

func (b *Builder) userHistory(ctx context.Context, userID string) (orders, games []string) {
	if b.deps.History == nil {
		return nil, nil
	}

	orders, err := b.deps.History.OrderHistory(ctx, userID)
	if err != nil {
		slog.Warn("order history unavailable", "user", userID, "error", err)
		orders = nil
	}
	games, err = b.deps.History.PlayedGames(ctx, userID)
	if err != nil {
		slog.Warn("played games unavailable", "user", userID, "error", err)
		games = nil
	}
	return orders, games
}

func (b *Builder) conversation(ctx context.Context, userID string) []string {
	if b.deps.Conversations == nil {
		return nil
	}
	lines, err := b.deps.Conversations.History(ctx, userID)
	if err != nil {
		slog.Warn("conversation history unavailable", "user", userID, "error", err)
		return nil
	}
	return lines
}
