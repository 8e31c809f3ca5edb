// Command cdc keeps the redis history cache in step with postgres by dropping
// a user's cached history whenever their orders or games change.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/imkonsowa/waiter-prompts/config"
	"github.com/imkonsowa/waiter-prompts/history"
)

func main() {
	cfg := config.LoadConfig()
	config.SetupLogging(cfg.Logging)

	if cfg.Redis.Addr == "" {
		log.Fatal("redis.addr is not set, there is no history cache to invalidate")
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	errChan := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	listener := NewListener(cfg, func(ctx context.Context, userIDs []string) error {
		if err := history.Invalidate(ctx, rdb, userIDs...); err != nil {
			return err
		}
		slog.Info("invalidated cached history", "users", userIDs)
		return nil
	})
	defer listener.Close(context.Background())

	go func() {
		errChan <- listener.Run(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalln("Error:", err)
		}
	case <-shutdown:
		log.Println("Shutting down...")
		cancel()

		// wait until listener.Run returns
		<-errChan
	}
}
