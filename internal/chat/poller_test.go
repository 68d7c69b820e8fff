package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thirtymeals/internal/models"
)

func TestPollerDeliversOnlyFreshMessages(t *testing.T) {
	start := time.Now()
	var mu sync.Mutex
	backlog := []models.Message{}

	fetch := func(_ context.Context, since time.Time) ([]models.Message, error) {
		mu.Lock()
		defer mu.Unlock()
		var out []models.Message
		for _, m := range backlog {
			if m.Timestamp.After(since) {
				out = append(out, m)
			}
		}
		return out, nil
	}

	got := make(chan models.Message, 10)
	poller := NewPoller(10*time.Millisecond, fetch, func(msgs []models.Message) {
		for _, m := range msgs {
			got <- m
		}
	})
	poller.Start(context.Background())
	defer poller.Stop()

	mu.Lock()
	backlog = append(backlog, models.Message{ID: "m1", UserID: "u1", Text: "hi", Timestamp: start.Add(50 * time.Millisecond)})
	mu.Unlock()

	select {
	case m := <-got:
		assert.Equal(t, "m1", m.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("опросчик не выдал новое сообщение")
	}

	// Сообщение не выдаётся повторно на следующих тиках.
	select {
	case m := <-got:
		t.Fatalf("повторная выдача сообщения %s", m.ID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPollerDiscardsStaleResponses(t *testing.T) {
	start := time.Now()
	newer := models.Message{ID: "new", Timestamp: start.Add(2 * time.Hour)}
	older := models.Message{ID: "old", Timestamp: start.Add(time.Hour)}

	// Первый ответ приносит более новое сообщение, второй - запоздавший
	// ответ с более старым. Запоздавший должен быть отброшен.
	responses := [][]models.Message{{newer}, {older, newer}}
	var mu sync.Mutex
	call := 0

	fetch := func(_ context.Context, _ time.Time) ([]models.Message, error) {
		mu.Lock()
		defer mu.Unlock()
		resp := responses[call]
		if call < len(responses)-1 {
			call++
		}
		return resp, nil
	}

	var deliveredMu sync.Mutex
	var delivered []string
	poller := NewPoller(10*time.Millisecond, fetch, func(msgs []models.Message) {
		deliveredMu.Lock()
		defer deliveredMu.Unlock()
		for _, m := range msgs {
			delivered = append(delivered, m.ID)
		}
	})
	poller.Start(context.Background())

	time.Sleep(200 * time.Millisecond)
	poller.Stop()

	deliveredMu.Lock()
	defer deliveredMu.Unlock()
	require.Equal(t, []string{"new"}, delivered)
}

func TestPollerStopTerminatesLoop(t *testing.T) {
	fetch := func(_ context.Context, _ time.Time) ([]models.Message, error) {
		return nil, nil
	}
	poller := NewPoller(5*time.Millisecond, fetch, nil)
	poller.Start(context.Background())

	done := make(chan struct{})
	go func() {
		poller.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop не завершился")
	}
}
