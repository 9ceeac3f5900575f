package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"task_manager/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID string, buf int) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, buf), Hub: hub}
}

func TestHub_PublishRoutesByOwner(t *testing.T) {
	hub := NewHub()
	a1 := newTestClient(hub, "alice", 4)
	a2 := newTestClient(hub, "alice", 4)
	b := newTestClient(hub, "bob", 4)
	for _, c := range []*Client{a1, a2, b} {
		require.True(t, hub.Register(c))
	}
	assert.Equal(t, 2, hub.Connections("alice"))

	hub.Publish(domain.TaskEvent{Type: domain.EventTaskCreated, TaskID: "t1", UserID: "alice"})

	for _, c := range []*Client{a1, a2} {
		select {
		case raw := <-c.Send:
			var got map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.Equal(t, "task.created", got["type"])
			assert.Equal(t, "t1", got["taskId"])
			assert.NotContains(t, got, "userId")
		default:
			t.Fatal("alice's connection got nothing")
		}
	}
	assert.Len(t, b.Send, 0)
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := newTestClient(hub, "alice", 1)
	require.True(t, hub.Register(slow))

	hub.Publish(domain.TaskEvent{Type: domain.EventTaskUpdated, TaskID: "t1", UserID: "alice"})
	hub.Publish(domain.TaskEvent{Type: domain.EventTaskUpdated, TaskID: "t1", UserID: "alice"})

	assert.Equal(t, 0, hub.Connections("alice"))
	<-slow.Send
	_, open := <-slow.Send
	assert.False(t, open, "dropped client's channel is closed")

	hub.Unregister(slow)
}

func TestHub_CloseRejectsNewClients(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub, "alice", 1)
	require.True(t, hub.Register(c))

	hub.Close()
	_, open := <-c.Send
	assert.False(t, open)
	assert.False(t, hub.Register(newTestClient(hub, "alice", 1)))
}

type staticResolver map[string]string

func (r staticResolver) ResolveToken(token string) (string, error) {
	if id, ok := r[token]; ok {
		return id, nil
	}
	return "", domain.ErrInvalidToken
}

func TestHandleWS_DeliversEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	r := gin.New()
	r.GET("/ws", HandleWS(hub, staticResolver{"tok": "alice"}, nil))
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token=bad", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token=tok", nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ready map[string]string
	require.NoError(t, conn.ReadJSON(&ready))
	assert.Equal(t, MsgReady, ready["type"])

	require.Eventually(t, func() bool { return hub.Connections("alice") == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(domain.TaskEvent{Type: domain.EventTaskDue, TaskID: "t9", UserID: "alice"})
	var ev map[string]interface{}
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "task.due", ev["type"])
	assert.Equal(t, "t9", ev["taskId"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": MsgPing}))
	var pong map[string]string
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, MsgPong, pong["type"])

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Connections("alice") == 0 }, time.Second, 10*time.Millisecond)
}
