// Package rpc implements the charge point's outbound WebSocket connection
// to the central system: OCPP-J message framing (CALL/CALLRESULT/CALLERROR),
// request/response correlation by message id, a reconnect loop with
// exponential backoff, and a listener contract for connection lifecycle
// events. Inbound CALLs are handed to a pluggable Handler so this package
// stays ignorant of action routing.
package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/go-ocpp/chargepoint/internal/domain/serialization"
	"github.com/go-ocpp/chargepoint/internal/logger"
	"github.com/go-ocpp/chargepoint/internal/metrics"
	"github.com/go-ocpp/chargepoint/internal/ocpperr"
)

// subprotocol is the WebSocket subprotocol OCPP 1.6-J central systems and
// charge points negotiate.
const subprotocol = "ocpp1.6"

const (
	stateDisconnected = 0
	stateConnecting   = 1
	stateConnected    = 2
)

// Handler processes an inbound CALL and returns either a result payload
// (serialized into a CALLRESULT) or an *ocpperr.Error of Kind Protocol
// (serialized into a CALLERROR).
type Handler interface {
	HandleCall(ctx context.Context, action string, payload json.RawMessage) (result interface{}, err *ocpperr.Error)
}

// Listener observes connection lifecycle transitions.
type Listener interface {
	OnConnected()
	OnDisconnected(err error)
}

// Spy observes every frame crossing the wire, in either direction, for
// tests and diagnostics. direction is "sent" or "received".
type Spy func(direction string, frame []byte)

// Options configures a Transport. It is deliberately independent of
// internal/config so this package can be unit tested without it.
type Options struct {
	URL                   string
	ChargePointIdentifier string
	SecurityProfile       int
	AuthorizationKey      string
	ConnectionTimeout     time.Duration
	CallTimeout           time.Duration
	ReconnectBackoffMin   time.Duration
	ReconnectBackoffMax   time.Duration
}

type pendingCall struct {
	resultCh chan callResult
}

type callResult struct {
	payload json.RawMessage
	err     *ocpperr.Error
}

// Transport owns the single outbound WebSocket connection to the central
// system and the reconnect loop that keeps it alive.
type Transport struct {
	opts       Options
	dialer     *websocket.Dialer
	serializer *serialization.Serializer
	handler    Handler
	listener   Listener
	spy        Spy

	writeMu sync.Mutex
	conn    *websocket.Conn

	pendingMu sync.Mutex
	pending   map[string]*pendingCall

	stateMu sync.RWMutex
	state   int

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New builds an unstarted Transport. Call Run to start dialing.
func New(opts Options, handler Handler, listener Listener) *Transport {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 30 * time.Second
	}
	if opts.ConnectionTimeout <= 0 {
		opts.ConnectionTimeout = 30 * time.Second
	}
	if opts.ReconnectBackoffMin <= 0 {
		opts.ReconnectBackoffMin = time.Second
	}
	if opts.ReconnectBackoffMax <= 0 {
		opts.ReconnectBackoffMax = 2 * time.Minute
	}
	return &Transport{
		opts:       opts,
		dialer:     &websocket.Dialer{HandshakeTimeout: opts.ConnectionTimeout, Subprotocols: []string{subprotocol}},
		serializer: serialization.NewSerializer(serialization.FormatJSON),
		handler:    handler,
		listener:   listener,
		pending:    make(map[string]*pendingCall),
		stopCh:     make(chan struct{}),
	}
}

// SetSpy installs a frame observer. Not safe to call concurrently with Run.
func (t *Transport) SetSpy(spy Spy) { t.spy = spy }

// IsConnected reports whether the transport currently holds a live socket.
func (t *Transport) IsConnected() bool {
	t.stateMu.RLock()
	defer t.stateMu.RUnlock()
	return t.state == stateConnected
}

// Run dials the central system and keeps the connection alive, reconnecting
// with exponential backoff on every failure, until ctx is cancelled or Stop
// is called. It always returns nil; failures are reported to the Listener,
// not returned, since reconnecting is this transport's whole job.
func (t *Transport) Run(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(t.opts.ReconnectBackoffMin),
		backoff.WithMaxInterval(t.opts.ReconnectBackoffMax),
		backoff.WithMaxElapsedTime(0),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.stopCh:
			return nil
		default:
		}

		if err := t.connectAndServe(ctx); err != nil {
			logger.Errorf("rpc: connection attempt failed: %v", err)
		}
		t.setState(stateDisconnected)

		d, berr := bo.NextBackOff()
		if berr != nil {
			d = t.opts.ReconnectBackoffMax
		}
		metrics.ReconnectsTotal.Inc()

		select {
		case <-ctx.Done():
			return nil
		case <-t.stopCh:
			return nil
		case <-time.After(d):
		}
	}
}

// Stop halts the reconnect loop and closes any live connection.
func (t *Transport) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
	})
	t.writeMu.Lock()
	if t.conn != nil {
		t.conn.Close()
	}
	t.writeMu.Unlock()
}

func (t *Transport) connectAndServe(ctx context.Context) error {
	t.setState(stateConnecting)

	header := http.Header{}
	if t.opts.SecurityProfile >= 1 && t.opts.AuthorizationKey != "" {
		token := base64.StdEncoding.EncodeToString([]byte(t.opts.ChargePointIdentifier + ":" + t.opts.AuthorizationKey))
		header.Set("Authorization", "Basic "+token)
	}

	conn, resp, err := t.dialer.DialContext(ctx, t.opts.URL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s: %w (status %s)", t.opts.URL, err, resp.Status)
		}
		return fmt.Errorf("dial %s: %w", t.opts.URL, err)
	}

	t.writeMu.Lock()
	t.conn = conn
	t.writeMu.Unlock()
	t.setState(stateConnected)

	if t.listener != nil {
		t.listener.OnConnected()
	}

	readErr := t.readLoop(ctx, conn)

	t.failPending(ocpperr.NewTransient("rpc.Transport", "connection lost", readErr))

	t.writeMu.Lock()
	conn.Close()
	t.conn = nil
	t.writeMu.Unlock()

	if t.listener != nil {
		t.listener.OnDisconnected(readErr)
	}
	return readErr
}

func (t *Transport) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if t.spy != nil {
			t.spy("received", data)
		}
		t.handleFrame(ctx, data)
	}
}

func (t *Transport) handleFrame(ctx context.Context, data []byte) {
	msgType, msgID, action, payload, err := t.serializer.DeserializeMessage(data)
	if err != nil {
		logger.Errorf("rpc: discarding malformed frame: %v", err)
		return
	}

	switch msgType {
	case 2: // Call
		metrics.MessagesReceived.WithLabelValues(action, "call").Inc()
		go t.serveCall(ctx, msgID, action, payload)
	case 3: // CallResult
		metrics.MessagesReceived.WithLabelValues("", "result").Inc()
		t.resolvePending(msgID, callResult{payload: payload})
	case 4: // CallError
		metrics.MessagesReceived.WithLabelValues("", "error").Inc()
		var fields struct {
			ErrorCode        string      `json:"errorCode"`
			ErrorDescription string      `json:"errorDescription"`
			ErrorDetails     interface{} `json:"errorDetails"`
		}
		_ = json.Unmarshal(payload, &fields)
		t.resolvePending(msgID, callResult{err: ocpperr.NewProtocol("rpc.Call", fields.ErrorCode, fields.ErrorDescription, nil)})
	default:
		logger.Errorf("rpc: unexpected message type %d", msgType)
	}
}

func (t *Transport) serveCall(ctx context.Context, msgID, action string, payload json.RawMessage) {
	result, callErr := t.handler.HandleCall(ctx, action, payload)

	var frame []byte
	var err error
	if callErr != nil {
		frame, err = t.serializer.SerializeMessage(4, msgID, action, map[string]interface{}{
			"errorCode":        callErr.Code,
			"errorDescription": callErr.Message,
			"errorDetails":     map[string]interface{}{},
		})
	} else {
		frame, err = t.serializer.SerializeMessage(3, msgID, action, result)
	}
	if err != nil {
		logger.Errorf("rpc: failed to serialize response to %s %s: %v", action, msgID, err)
		return
	}

	if err := t.send(frame); err != nil {
		logger.Errorf("rpc: failed to send response to %s %s: %v", action, msgID, err)
		return
	}
	msgType := "result"
	if callErr != nil {
		msgType = "error"
	}
	metrics.MessagesSent.WithLabelValues(action, msgType).Inc()
}

// Call sends a CALL for action and blocks until a CALLRESULT/CALLERROR
// arrives, ctx is cancelled, or the call timeout elapses.
func (t *Transport) Call(ctx context.Context, action string, payload interface{}) (json.RawMessage, *ocpperr.Error) {
	if !t.IsConnected() {
		return nil, ocpperr.NewTransient("rpc.Call", "not connected", nil)
	}

	msgID := uuid.New().String()
	frame, err := t.serializer.SerializeMessage(2, msgID, action, payload)
	if err != nil {
		return nil, ocpperr.NewInvariant("rpc.Call", "failed to serialize request", err)
	}

	pc := &pendingCall{resultCh: make(chan callResult, 1)}
	t.pendingMu.Lock()
	t.pending[msgID] = pc
	t.pendingMu.Unlock()

	start := time.Now()
	if err := t.send(frame); err != nil {
		t.pendingMu.Lock()
		delete(t.pending, msgID)
		t.pendingMu.Unlock()
		return nil, ocpperr.NewTransient("rpc.Call", "failed to send request", err)
	}
	metrics.MessagesSent.WithLabelValues(action, "call").Inc()

	timer := time.NewTimer(t.opts.CallTimeout)
	defer timer.Stop()

	select {
	case res := <-pc.resultCh:
		metrics.CallDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
		if res.err != nil {
			return nil, res.err
		}
		return res.payload, nil
	case <-timer.C:
		t.pendingMu.Lock()
		delete(t.pending, msgID)
		t.pendingMu.Unlock()
		metrics.CallTimeouts.WithLabelValues(action).Inc()
		return nil, ocpperr.NewTransient("rpc.Call", "timed out waiting for response", nil)
	case <-ctx.Done():
		t.pendingMu.Lock()
		delete(t.pending, msgID)
		t.pendingMu.Unlock()
		return nil, ocpperr.NewTransient("rpc.Call", "context cancelled", ctx.Err())
	case <-t.stopCh:
		return nil, ocpperr.NewTransient("rpc.Call", "transport stopped", nil)
	}
}

func (t *Transport) resolvePending(msgID string, res callResult) {
	t.pendingMu.Lock()
	pc, ok := t.pending[msgID]
	if ok {
		delete(t.pending, msgID)
	}
	t.pendingMu.Unlock()
	if !ok {
		logger.Errorf("rpc: received response for unknown message id %s", msgID)
		return
	}
	pc.resultCh <- res
}

func (t *Transport) failPending(err *ocpperr.Error) {
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()
	for id, pc := range t.pending {
		pc.resultCh <- callResult{err: err}
		delete(t.pending, id)
	}
}

func (t *Transport) send(frame []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if t.conn == nil {
		return fmt.Errorf("no active connection")
	}
	if t.spy != nil {
		t.spy("sent", frame)
	}
	return t.conn.WriteMessage(websocket.TextMessage, frame)
}

func (t *Transport) setState(s int) {
	t.stateMu.Lock()
	t.state = s
	t.stateMu.Unlock()
	metrics.ConnectionState.Set(float64(s))
}
