package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkonsowa/waiter-prompts/models"
	"github.com/imkonsowa/waiter-prompts/prompt"
	"github.com/imkonsowa/waiter-prompts/prompt/prompttest"
	"github.com/imkonsowa/waiter-prompts/templates"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	events   []models.PromptEvent
	err      error
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}

	var ev models.PromptEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, ev)
	return nil
}

func newTestHandler(t *testing.T, pub Publisher) *Handler {
	t.Helper()
	builder, _ := prompttest.NewBuilder(t, prompt.Options{})
	h, err := NewHandler(builder, pub, "prompts.built")
	require.NoError(t, err)
	return h
}

func TestHandlePromptRequestPublishesEvent(t *testing.T) {
	pub := &recordingPublisher{}
	h := newTestHandler(t, pub)

	data, err := json.Marshal(models.PromptRequest{RequestID: "r-1", Text: "4人聚餐，预算300元，不吃海鲜", UserID: "U1"})
	require.NoError(t, err)

	require.NoError(t, h.HandlePromptRequest(context.Background(), data))

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, "prompts.built", pub.subjects[0])
	assert.Equal(t, "r-1", ev.RequestID)
	assert.Equal(t, "U1", ev.UserID)
	assert.Equal(t, templates.EnhancedBasic, ev.Template)
	assert.Equal(t, "4", ev.Slots["party_size"])
	assert.Contains(t, ev.Prompt, "预算：300元")
	assert.False(t, ev.CreatedAt.IsZero())
}

func TestHandlePromptRequestDropsBadInput(t *testing.T) {
	pub := &recordingPublisher{}
	h := newTestHandler(t, pub)
	ctx := context.Background()

	assert.NoError(t, h.HandlePromptRequest(ctx, []byte(`{"text":`)))
	assert.NoError(t, h.HandlePromptRequest(ctx, []byte(`{"text":"  "}`)))
	assert.NoError(t, h.HandlePromptRequest(ctx, []byte(`{"text":"你好","template":"nope"}`)))
	assert.Empty(t, pub.events)
}

func TestHandlePromptRequestPublishFailure(t *testing.T) {
	h := newTestHandler(t, &recordingPublisher{err: errors.New("nats down")})

	err := h.HandlePromptRequest(context.Background(), []byte(`{"text":"四位，吃火锅"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nats down")
}

func TestNewHandlerRequiresSubject(t *testing.T) {
	_, err := NewHandler(nil, &recordingPublisher{}, "")
	require.Error(t, err)
}

func TestWorkerPoolProcessesMessages(t *testing.T) {
	var handled atomic.Int32
	var failed atomic.Int32

	pool := NewWorkerPool(context.Background(), 2, 4, func(_ context.Context, msg []byte) error {
		if string(msg) == "bad" {
			failed.Add(1)
			return errors.New("bad message")
		}
		handled.Add(1)
		return nil
	})

	ctx := context.Background()
	for _, body := range []string{"a", "b", "bad", "c"} {
		require.True(t, pool.Submit(ctx, &nats.Msg{Data: []byte(body)}))
	}

	assert.Eventually(t, func() bool {
		return handled.Load() == 3 && failed.Load() == 1
	}, time.Second, 10*time.Millisecond)

	pool.Stop()
	pool.Wait()

	assert.False(t, pool.Submit(ctx, &nats.Msg{Data: []byte("late")}))
}

func TestWorkerPoolSubmitHonorsContext(t *testing.T) {
	block := make(chan struct{})
	pool := NewWorkerPool(context.Background(), 1, 1, func(context.Context, []byte) error {
		<-block
		return nil
	})
	defer func() {
		close(block)
		pool.Stop()
		pool.Wait()
	}()

	ctx, cancel := context.WithCancel(context.Background())

	// one message in flight, one queued
	require.True(t, pool.Submit(ctx, &nats.Msg{}))
	require.True(t, pool.Submit(ctx, &nats.Msg{}))

	cancel()
	assert.False(t, pool.Submit(ctx, &nats.Msg{}))
}
