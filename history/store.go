// Package history provides a user's past orders, played games and recent
// conversation.
package history

import "context"

// Store returns per-user history. Unknown users yield empty lists.
type Store interface {
	OrderHistory(ctx context.Context, userID string) ([]string, error)
	PlayedGames(ctx context.Context, userID string) ([]string, error)
}
