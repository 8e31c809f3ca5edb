package models

import (
	"fmt"
	"strings"
	"time"
)

type OrderRecord struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	Dish      string    `gorm:"not null" json:"dish"`
	Quantity  int       `gorm:"default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

func (o *OrderRecord) TableName() string {
	return "order_records"
}

func (o *OrderRecord) Stringify() string {
	if o.Quantity > 1 {
		return fmt.Sprintf("%s × %d", o.Dish, o.Quantity)
	}
	return o.Dish
}

type PlayedGame struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	Game      string    `gorm:"not null" json:"game"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *PlayedGame) TableName() string {
	return "played_games"
}

// UserHistory is the seed format for a user's past orders and games.
type UserHistory struct {
	UserID string        `json:"user_id"`
	Orders []OrderRecord `json:"orders"`
	Games  []string      `json:"games"`
}

// PromptRequest is the payload accepted over HTTP, websocket and NATS.
type PromptRequest struct {
	RequestID   string `json:"request_id,omitempty"`
	Text        string `json:"text"`
	UserID      string `json:"user_id,omitempty"`
	Location    string `json:"location,omitempty"`
	Language    string `json:"language,omitempty"`
	Template    string `json:"template,omitempty"`
	OrderPlaced bool   `json:"order_placed,omitempty"`
	SmartSelect bool   `json:"smart_select,omitempty"`
}

func (r *PromptRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("text is required")
	}
	return nil
}

// PromptEvent is published once a prompt has been built.
type PromptEvent struct {
	RequestID string            `json:"request_id,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	Intent    string            `json:"intent"`
	Template  string            `json:"template"`
	Language  string            `json:"language"`
	Slots     map[string]string `json:"slots"`
	Prompt    string            `json:"prompt"`
	CreatedAt time.Time         `json:"created_at"`
}

func (e *PromptEvent) Stringify() string {
	return fmt.Sprintf("Prompt: intent=%s template=%s/%s user=%s", e.Intent, e.Template, e.Language, e.UserID)
}
