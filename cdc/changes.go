package main

import (
	"encoding/json"
	"fmt"
	"sort"
)

// historyTables are the tables whose rows carry a user_id.
var historyTables = map[string]bool{
	"order_records": true,
	"played_games":  true,
}

type WAL2JSONMessage struct {
	Change []WAL2JSONChange `json:"change"`
}

type WAL2JSONChange struct {
	Kind         string        `json:"kind"`
	Table        string        `json:"table"`
	ColumnNames  []string      `json:"columnnames,omitempty"`
	ColumnValues []interface{} `json:"columnvalues,omitempty"`
	OldKeys      *struct {
		KeyNames  []string      `json:"keynames"`
		KeyValues []interface{} `json:"keyvalues"`
	} `json:"oldkeys,omitempty"`
}

// affectedUsers decodes one wal2json transaction and returns the sorted,
// distinct users whose history it touched.
func affectedUsers(data []byte) ([]string, error) {
	var msg WAL2JSONMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("parse wal2json: %w", err)
	}

	seen := make(map[string]struct{})
	for _, change := range msg.Change {
		if !historyTables[change.Table] {
			continue
		}

		switch change.Kind {
		case "insert", "update":
			if id, ok := lookup(change.ColumnNames, change.ColumnValues, "user_id"); ok {
				seen[id] = struct{}{}
			}
		}

		// updates moving a row between users and deletes carry the old row
		if change.OldKeys != nil {
			if id, ok := lookup(change.OldKeys.KeyNames, change.OldKeys.KeyValues, "user_id"); ok {
				seen[id] = struct{}{}
			}
		}
	}

	users := make([]string, 0, len(seen))
	for id := range seen {
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}

func lookup(names []string, values []interface{}, column string) (string, bool) {
	for i, name := range names {
		if name != column || i >= len(values) {
			continue
		}
		if v, ok := values[i].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
