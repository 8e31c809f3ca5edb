package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/imkonsowa/waiter-prompts/models"
	"github.com/imkonsowa/waiter-prompts/prompt"
)

type Publisher interface {
	Publish(subject string, data []byte) error
}

type Handler struct {
	builder   *prompt.Builder
	publisher Publisher
	subject   string
}

func NewHandler(builder *prompt.Builder, publisher Publisher, subject string) (*Handler, error) {
	if subject == "" {
		return nil, errors.New("prompts subject is required")
	}

	return &Handler{
		builder:   builder,
		publisher: publisher,
		subject:   subject,
	}, nil
}

// HandlePromptRequest builds the prompt for one request and publishes the
// result. Requests that can never succeed are logged and dropped; only a
// failed publish is returned so the message is redelivered.
func (h *Handler) HandlePromptRequest(ctx context.Context, msg []byte) error {
	var req models.PromptRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		slog.Error("dropping malformed prompt request", "error", err)
		return nil
	}

	if err := req.Validate(); err != nil {
		slog.Warn("dropping invalid prompt request", "request_id", req.RequestID, "error", err)
		return nil
	}

	res, err := h.builder.Build(ctx, req)
	if err != nil {
		slog.Error("failed to build prompt", "request_id", req.RequestID, "error", err)
		return nil
	}

	event := res.Event(req)
	event.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal prompt event: %w", err)
	}

	if err := h.publisher.Publish(h.subject, data); err != nil {
		return fmt.Errorf("failed to publish prompt event: %w", err)
	}

	slog.Info(event.Stringify(), "request_id", req.RequestID)
	return nil
}
