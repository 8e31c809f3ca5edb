package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/imkonsowa/waiter-prompts/bootstrap"
	"github.com/imkonsowa/waiter-prompts/config"
)

func main() {
	cfg := config.LoadConfig()
	config.SetupLogging(cfg.Logging)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nc, err := NewNats(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer nc.Close()

	if err := nc.EnsureStream(cfg.Nats); err != nil {
		log.Fatal("failed to create stream: ", err)
	}

	rt, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer rt.Close()

	handler, err := NewHandler(rt.Builder, nc, cfg.Nats.PromptsSubject)
	if err != nil {
		log.Fatal(err)
	}

	slog.Info("starting prompt worker", "workers", cfg.Worker.Workers, "queueSize", cfg.Worker.QueueSize)
	pool := NewWorkerPool(ctx, cfg.Worker.Workers, cfg.Worker.QueueSize, handler.HandlePromptRequest)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return nc.Subscribe(gctx, cfg.Nats.RequestsSubject, func(m *nats.Msg) {
			pool.Submit(gctx, m)
		})
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- g.Wait()
	}()

	select {
	case <-shutdown:
		slog.Info("Shutting down")
	case err := <-errChan:
		slog.Error("Shutting down due to error", "error", err)
	}

	cancel()
	pool.Stop()
	pool.Wait()
}
