package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/imkonsowa/waiter-prompts/bootstrap"
	"github.com/imkonsowa/waiter-prompts/history"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load user order and game history",
	Long: `Replace the stored history of the listed users.

Without --file the two demo users (U123456 and U987654) are loaded. The file
is a JSON array of {"user_id", "orders": [{"dish", "quantity"}], "games"}.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "JSON file with user histories")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	users := history.DemoUsers()
	if seedFile != "" {
		data, err := os.ReadFile(seedFile)
		if err != nil {
			return err
		}
		users = nil
		if err := json.Unmarshal(data, &users); err != nil {
			return fmt.Errorf("failed to parse %s: %w", seedFile, err)
		}
	}

	db, err := bootstrap.OpenHistory(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Seed(cmd.Context(), users); err != nil {
		return fmt.Errorf("failed to seed history: %w", err)
	}

	for _, u := range users {
		slog.Info("seeded user history", "user", u.UserID, "orders", len(u.Orders), "games", len(u.Games))
	}
	slog.Info("seed complete", "users", len(users), "driver", cfg.History.Driver)

	return nil
}
