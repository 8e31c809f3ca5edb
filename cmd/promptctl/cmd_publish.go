package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/imkonsowa/waiter-prompts/models"
)

var (
	publishReq  models.PromptRequest
	publishWait time.Duration
)

var publishCmd = &cobra.Command{
	Use:   "publish [text]",
	Short: "Submit a prompt request to the worker over NATS",
	Long: `Publish a prompt request on the requests subject. With --wait the
command also prints the matching prompt event published by the worker.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishReq.UserID, "user", "", "User ID for order and game history")
	publishCmd.Flags().StringVar(&publishReq.Location, "location", "", "City used for weather and local dishes")
	publishCmd.Flags().StringVar(&publishReq.Language, "lang", "", "Template language")
	publishCmd.Flags().StringVar(&publishReq.Template, "template", "", "Force a template by name")
	publishCmd.Flags().BoolVar(&publishReq.OrderPlaced, "order-placed", false, "The table has already ordered")
	publishCmd.Flags().DurationVar(&publishWait, "wait", 0, "Wait this long for the built prompt")
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	req := publishReq
	req.Text = strings.Join(args, " ")
	req.RequestID = uuid.NewString()
	if err := req.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	nc, err := nats.Connect(cfg.Nats.ConnStr())
	if err != nil {
		return fmt.Errorf("failed to connect to nats: %w", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		return fmt.Errorf("failed to get jetstream context: %w", err)
	}

	var sub *nats.Subscription
	if publishWait > 0 {
		sub, err = js.SubscribeSync(cfg.Nats.PromptsSubject, nats.DeliverNew())
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", cfg.Nats.PromptsSubject, err)
		}
		defer sub.Unsubscribe()
	}

	if _, err := js.Publish(cfg.Nats.RequestsSubject, data); err != nil {
		return fmt.Errorf("failed to publish request: %w", err)
	}
	slog.Info("published prompt request", "request_id", req.RequestID, "subject", cfg.Nats.RequestsSubject)

	if sub == nil {
		fmt.Fprintln(cmd.OutOrStdout(), req.RequestID)
		return nil
	}

	deadline := time.Now().Add(publishWait)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("no prompt for request %s within %s", req.RequestID, publishWait)
		}

		msg, err := sub.NextMsg(remaining)
		if errors.Is(err, nats.ErrTimeout) {
			continue
		}
		if err != nil {
			return err
		}
		_ = msg.Ack()

		var ev models.PromptEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil || ev.RequestID != req.RequestID {
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n", ev.Stringify(), ev.Prompt)
		return nil
	}
}
