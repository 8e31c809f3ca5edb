package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/imkonsowa/waiter-prompts/models"
	"github.com/imkonsowa/waiter-prompts/prompt"
	"github.com/imkonsowa/waiter-prompts/templates"
)

type Handler struct {
	builder *prompt.Builder
	catalog *templates.Catalog
	reload  func() error
}

func NewHandler(builder *prompt.Builder, catalog *templates.Catalog, reload func() error) *Handler {
	return &Handler{
		builder: builder,
		catalog: catalog,
		reload:  reload,
	}
}

func (h *Handler) BuildPrompt(ctx context.Context, req models.PromptRequest) (*prompt.Result, error) {
	return h.builder.Build(ctx, req)
}

// StreamPrompt reports every pipeline stage as a debug message followed by
// the rendered prompt. The channel ends with io.EOF on success.
func (h *Handler) StreamPrompt(ctx context.Context, req models.PromptRequest) chan *ProcessingResult {
	resultChan := make(chan *ProcessingResult)

	go func() {
		defer close(resultChan)

		send := func(r *ProcessingResult) bool {
			select {
			case resultChan <- r:
				return true
			case <-ctx.Done():
				return false
			}
		}

		res, err := h.builder.BuildTraced(ctx, req, func(stage string, data any) {
			send(&ProcessingResult{
				Msg: WebSocketsMessage{
					Type: MessageDebug,
					Data: StageMessage{Stage: stage, Data: data},
				},
			})
		})
		if err != nil {
			send(&ProcessingResult{Err: fmt.Errorf("failed to build prompt: %w", err)})
			return
		}

		if !send(&ProcessingResult{Msg: WebSocketsMessage{Type: MessagePrompt, Data: NewPromptResponse(res)}}) {
			return
		}

		send(&ProcessingResult{Err: io.EOF})
	}()

	return resultChan
}

func (h *Handler) Templates() templates.Info {
	return h.catalog.Info()
}

func (h *Handler) Languages(name string) ([]string, error) {
	if !h.catalog.Has(name) {
		return nil, fmt.Errorf("%w: %s", templates.ErrTemplateNotFound, name)
	}
	return h.catalog.Languages(name), nil
}

func (h *Handler) Reload() error {
	return h.reload()
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, templates.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, templates.ErrLanguageNotSupported):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
