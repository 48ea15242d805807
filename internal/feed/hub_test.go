package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/arena/internal/event"
)

type fakeControl struct {
	mu      sync.Mutex
	moves   [][2]float64
	attacks int
	retries int
}

func (f *fakeControl) Move(_ context.Context, dx, dy float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, [2]float64{dx, dy})
	return nil
}

func (f *fakeControl) Attack(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attacks++
	return nil
}

func (f *fakeControl) Retry(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retries++
	return nil
}

func (f *fakeControl) Snapshot(context.Context) (any, error) {
	return map[string]int{"tick": 7}, nil
}

func (f *fakeControl) counts() (int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.moves), f.attacks, f.retries
}

type received struct {
	Kind     string          `json:"kind"`
	Event    *wireEvent      `json:"event"`
	Snapshot json.RawMessage `json:"snapshot"`
}

func startHub(t *testing.T, control Controller) (*Hub, *websocket.Conn) {
	t.Helper()

	hub := NewHub(Config{QueueSize: 16, WriteTimeout: time.Second}, control)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		srv.Close()
	})

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	return hub, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg received
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_SnapshotThenEvents(t *testing.T) {
	hub, conn := startHub(t, &fakeControl{})

	first := readMessage(t, conn)
	assert.Equal(t, KindSnapshot, first.Kind)
	assert.JSONEq(t, `{"tick":7}`, string(first.Snapshot))

	hub.Publish(event.Event{Type: event.TypeHealthChanged, Source: 3, Current: 4, Max: 10})
	hub.Publish(event.Event{Type: event.TypeRespawnPending, Source: 1, Delay: 750 * time.Millisecond})

	msg := readMessage(t, conn)
	require.Equal(t, KindEvent, msg.Kind)
	require.NotNil(t, msg.Event)
	assert.Equal(t, "health_changed", msg.Event.Type)
	assert.Equal(t, uint32(3), msg.Event.Source)
	assert.Equal(t, 4, msg.Event.Current)
	assert.Equal(t, 10, msg.Event.Max)

	msg = readMessage(t, conn)
	require.NotNil(t, msg.Event)
	assert.Equal(t, "respawn_pending", msg.Event.Type)
	assert.Equal(t, int64(750), msg.Event.DelayMs)
}

func TestHub_ReadOnlyFeedSkipsSnapshot(t *testing.T) {
	hub, conn := startHub(t, nil)

	hub.Publish(event.Event{Type: event.TypeGameOver, Source: 1})

	msg := readMessage(t, conn)
	assert.Equal(t, KindEvent, msg.Kind)
	assert.Equal(t, "game_over", msg.Event.Type)
}

func TestHub_ClientCommands(t *testing.T) {
	control := &fakeControl{}
	_, conn := startHub(t, control)
	readMessage(t, conn) // snapshot

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"input","dx":1,"dy":-1}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"dance"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"attack"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"retry"}`)))

	require.Eventually(t, func() bool {
		moves, attacks, retries := control.counts()
		return moves == 1 && attacks == 1 && retries == 1
	}, 2*time.Second, 10*time.Millisecond)

	control.mu.Lock()
	assert.Equal(t, [2]float64{1, -1}, control.moves[0])
	control.mu.Unlock()
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub, conn := startHub(t, nil)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub(Config{QueueSize: 2}, nil)

	done := make(chan struct{})
	go func() {
		for range 10 {
			hub.Publish(event.Event{Type: event.TypeDied, Source: 1})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish() blocked on a full queue")
	}
	assert.Equal(t, int64(8), hub.Dropped())
}

type brokenControl struct {
	fakeControl
}

func (brokenControl) Snapshot(context.Context) (any, error) {
	return nil, errors.New("runner stopped")
}

func TestHub_SnapshotFailureClosesConnection(t *testing.T) {
	hub := NewHub(Config{QueueSize: 4, WriteTimeout: time.Second}, &brokenControl{})
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseInternalServerErr), "got %v", err)
	assert.Zero(t, hub.ClientCount())
}
