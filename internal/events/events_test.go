package events

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_DeliversOnlyToOwner(t *testing.T) {
	b := NewBroker()
	alice := b.Subscribe("alice")
	bob := b.Subscribe("bob")
	defer b.Unsubscribe(alice)
	defer b.Unsubscribe(bob)

	b.Publish(Event{UserID: "alice", Stage: StageGenerating, Message: "Generating your design..."})

	select {
	case evt := <-alice:
		assert.Equal(t, StageGenerating, evt.Stage)
	case <-time.After(time.Second):
		t.Fatal("alice did not receive event")
	}
	select {
	case evt := <-bob:
		t.Fatalf("bob received %v", evt)
	default:
	}
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("u")
	defer b.Unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(Event{UserID: "u", Stage: StageGenerating})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked")
	}
	assert.Len(t, ch, cap(ch))
}

func TestBroker_UnsubscribeTwiceIsSafe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("u")
	b.Unsubscribe(ch)
	assert.NotPanics(t, func() { b.Unsubscribe(ch) })
	assert.Equal(t, 0, b.Subscribers())
}

func TestHandler_RequiresUser(t *testing.T) {
	h := Handler{Broker: NewBroker()}
	rec := httptest.NewRecorder()
	h.Stream(rec, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_StreamsEvents(t *testing.T) {
	broker := NewBroker()
	h := Handler{Broker: broker, UserID: func(*http.Request) string { return "u1" }}
	srv := httptest.NewServer(http.HandlerFunc(h.Stream))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return broker.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	broker.Publish(Event{UserID: "u1", Stage: StageCompleted, Message: "done"})

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: completed", strings.TrimSpace(line))
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"stage":"completed"`)
	assert.Contains(t, line, `"message":"done"`)
}

func TestHandler_StreamOutlivesWriteTimeout(t *testing.T) {
	broker := NewBroker()
	h := Handler{Broker: broker, UserID: func(*http.Request) string { return "u1" }}
	srv := httptest.NewUnstartedServer(http.HandlerFunc(h.Stream))
	srv.Config.WriteTimeout = 200 * time.Millisecond
	srv.Start()
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Eventually(t, func() bool { return broker.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(3 * srv.Config.WriteTimeout)
	broker.Publish(Event{UserID: "u1", Stage: StageFinalizing, Message: "Finalizing your results..."})

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: finalizing", strings.TrimSpace(line))
}
