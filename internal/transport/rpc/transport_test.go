package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ocpp/chargepoint/internal/ocpperr"
)

// echoHandler answers every inbound CALL with a fixed payload, so tests can
// drive the transport from both directions over one fake central system.
type echoHandler struct {
	result interface{}
	err    *ocpperr.Error
}

func (h *echoHandler) HandleCall(ctx context.Context, action string, payload json.RawMessage) (interface{}, *ocpperr.Error) {
	return h.result, h.err
}

type recordingListener struct {
	mu          sync.Mutex
	connects    int
	disconnects int
}

func (l *recordingListener) OnConnected() {
	l.mu.Lock()
	l.connects++
	l.mu.Unlock()
}

func (l *recordingListener) OnDisconnected(err error) {
	l.mu.Lock()
	l.disconnects++
	l.mu.Unlock()
}

func (l *recordingListener) counts() (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connects, l.disconnects
}

var upgrader = websocket.Upgrader{Subprotocols: []string{subprotocol}}

// fakeCentralSystem accepts exactly one upgrade, optionally sends a CALL of
// its own right after the handshake, and forwards every frame it reads to
// onMessage.
func fakeCentralSystem(t *testing.T, onConnect func(conn *websocket.Conn), onMessage func(conn *websocket.Conn, msgType int, msgID, action string, payload json.RawMessage)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		if onConnect != nil {
			onConnect(conn)
		}
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var frame []json.RawMessage
			require.NoError(t, json.Unmarshal(data, &frame))
			var msgType int
			require.NoError(t, json.Unmarshal(frame[0], &msgType))
			var msgID string
			require.NoError(t, json.Unmarshal(frame[1], &msgID))
			var action string
			var payload json.RawMessage
			if msgType == 2 {
				require.NoError(t, json.Unmarshal(frame[2], &action))
				payload = frame[3]
			} else if msgType == 3 {
				payload = frame[2]
			}
			onMessage(conn, msgType, msgID, action, payload)
		}
	}))
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestTransport_CallRoundTrip(t *testing.T) {
	srv := fakeCentralSystem(t, nil, func(conn *websocket.Conn, msgType int, msgID, action string, payload json.RawMessage) {
		if msgType == 2 {
			resp, _ := json.Marshal([]interface{}{3, msgID, map[string]interface{}{"currentTime": "2026-07-31T00:00:00Z"}})
			_ = conn.WriteMessage(websocket.TextMessage, resp)
		}
	})
	defer srv.Close()

	listener := &recordingListener{}
	tr := New(Options{URL: wsURL(srv), CallTimeout: time.Second}, &echoHandler{}, listener)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tr.Run(ctx)

	require.Eventually(t, tr.IsConnected, time.Second, 5*time.Millisecond)

	payload, callErr := tr.Call(context.Background(), "Heartbeat", map[string]interface{}{})
	require.Nil(t, callErr)
	assert.Contains(t, string(payload), "currentTime")

	tr.Stop()
	connects, _ := listener.counts()
	assert.Equal(t, 1, connects)
}

func TestTransport_CallTimesOutWhenNoResponse(t *testing.T) {
	srv := fakeCentralSystem(t, nil, func(conn *websocket.Conn, msgType int, msgID, action string, payload json.RawMessage) {
		// never respond
	})
	defer srv.Close()

	tr := New(Options{URL: wsURL(srv), CallTimeout: 20 * time.Millisecond}, &echoHandler{}, &recordingListener{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tr.Run(ctx)
	defer tr.Stop()

	require.Eventually(t, tr.IsConnected, time.Second, 5*time.Millisecond)

	_, callErr := tr.Call(context.Background(), "Heartbeat", map[string]interface{}{})
	require.NotNil(t, callErr)
	assert.Equal(t, ocpperr.Transient, callErr.Kind)
}

func TestTransport_ServesInboundCall(t *testing.T) {
	received := make(chan string, 1)
	srv := fakeCentralSystem(t, func(conn *websocket.Conn) {
		frame, _ := json.Marshal([]interface{}{2, "srv-msg-1", "RemoteStartTransaction", map[string]interface{}{}})
		_ = conn.WriteMessage(websocket.TextMessage, frame)
	}, func(conn *websocket.Conn, msgType int, msgID, action string, payload json.RawMessage) {
		if msgType == 3 {
			received <- msgType3Status(t, payload)
		}
	})
	defer srv.Close()

	handler := &echoHandler{result: map[string]interface{}{"status": "Accepted"}}
	tr := New(Options{URL: wsURL(srv), CallTimeout: time.Second}, handler, &recordingListener{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tr.Run(ctx)
	defer tr.Stop()

	select {
	case status := <-received:
		assert.Equal(t, "Accepted", status)
	case <-time.After(time.Second):
		t.Fatal("never received CALLRESULT for inbound call")
	}
}

func msgType3Status(t *testing.T, payload json.RawMessage) string {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &m))
	s, _ := m["status"].(string)
	return s
}
