package main

import (
	"github.com/imkonsowa/waiter-prompts/models"
	"github.com/imkonsowa/waiter-prompts/prompt"
)

const (
	MessageDebug  = "debug"
	MessagePrompt = "prompt"
	MessageError  = "error"
)

type WebSocketsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ProcessingResult struct {
	Err error
	Msg WebSocketsMessage
}

type StageMessage struct {
	Stage string      `json:"stage"`
	Data  interface{} `json:"data"`
}

type PromptResponse struct {
	Intent      string            `json:"intent"`
	Template    string            `json:"template"`
	Language    string            `json:"language"`
	Slots       map[string]string `json:"slots"`
	OrderPlaced bool              `json:"order_placed"`
	Prompt      string            `json:"prompt"`
}

func NewPromptResponse(res *prompt.Result) PromptResponse {
	return PromptResponse{
		Intent:      string(res.Intent),
		Template:    res.Template,
		Language:    res.Language,
		Slots:       res.SlotMap(),
		OrderPlaced: res.OrderPlaced,
		Prompt:      res.Prompt,
	}
}

// PromptQuery carries a prompt request in websocket query parameters.
type PromptQuery struct {
	Text        string `form:"text"`
	UserID      string `form:"user_id"`
	Location    string `form:"location"`
	Language    string `form:"language"`
	Template    string `form:"template"`
	OrderPlaced bool   `form:"order_placed"`
	SmartSelect bool   `form:"smart_select"`
}

func (q *PromptQuery) ToRequest() models.PromptRequest {
	return models.PromptRequest{
		Text:        q.Text,
		UserID:      q.UserID,
		Location:    q.Location,
		Language:    q.Language,
		Template:    q.Template,
		OrderPlaced: q.OrderPlaced,
		SmartSelect: q.SmartSelect,
	}
}
