package history

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/memory/sqlite3"
)

// Conversations keeps per-session chat turns in sqlite.
type Conversations struct {
	db    *sql.DB
	limit int
}

func OpenConversations(path string, limit int) (*Conversations, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	return NewConversations(db, limit), nil
}

func NewConversations(db *sql.DB, limit int) *Conversations {
	return &Conversations{db: db, limit: limit}
}

func (c *Conversations) session(ctx context.Context, id string) *sqlite3.SqliteChatMessageHistory {
	opts := []sqlite3.SqliteChatMessageHistoryOption{
		sqlite3.WithSession(id),
		sqlite3.WithDB(c.db),
		sqlite3.WithContext(ctx),
	}
	if c.limit > 0 {
		opts = append(opts, sqlite3.WithLimit(c.limit))
	}
	return sqlite3.NewSqliteChatMessageHistory(opts...)
}

// History returns the session's turns as "role: content" lines, oldest first.
func (c *Conversations) History(ctx context.Context, sessionID string) ([]string, error) {
	msgs, err := c.session(ctx, sessionID).Messages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation %s: %w", sessionID, err)
	}

	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", m.GetType(), m.GetContent()))
	}
	return lines, nil
}

// Append records one exchange. An empty reply records only the user turn.
func (c *Conversations) Append(ctx context.Context, sessionID, request, reply string) error {
	h := c.session(ctx, sessionID)
	if err := h.AddUserMessage(ctx, request); err != nil {
		return err
	}
	if reply == "" {
		return nil
	}
	return h.AddMessage(ctx, llms.AIChatMessage{Content: reply})
}

func (c *Conversations) Close() error {
	return c.db.Close()
}
