// Package dispatcher routes inbound OCPP CALLs to registered action
// handlers and turns their result into the rpc.Handler contract: a
// response payload for a CALLRESULT, or an *ocpperr.Error for a CALLERROR.
package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-ocpp/chargepoint/internal/ocpperr"
)

// HandlerFunc processes one action's payload. ok=false with both error
// fields empty is treated as an internal error (a handler bug, not a
// rejection it meant to report).
type HandlerFunc func(ctx context.Context, payload json.RawMessage) (response interface{}, ok bool, errorCode, errorMessage string)

// Dispatcher maps OCPP action names to handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// New builds an empty Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

// Register binds action to fn. If action is already registered, Register
// fails unless allowReplace is set, in which case the new handler wins.
func (d *Dispatcher) Register(action string, allowReplace bool, fn HandlerFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.handlers[action]; exists && !allowReplace {
		return ocpperr.NewInvariant("dispatcher.Register", fmt.Sprintf("action %q already registered", action), nil)
	}
	d.handlers[action] = fn
	return nil
}

// HandleCall implements rpc.Handler: look up action's handler and adapt its
// bool/out-param result into a response or a Protocol error.
func (d *Dispatcher) HandleCall(ctx context.Context, action string, payload json.RawMessage) (interface{}, *ocpperr.Error) {
	d.mu.RLock()
	fn, ok := d.handlers[action]
	d.mu.RUnlock()

	if !ok {
		return nil, ocpperr.NewProtocol("dispatcher.HandleCall", ocpperr.CodeNotImplemented, fmt.Sprintf("no handler registered for action %q", action), nil)
	}

	response, handled, errorCode, errorMessage := fn(ctx, payload)
	if handled {
		return response, nil
	}
	if errorCode == "" {
		errorCode = ocpperr.CodeInternalError
	}
	if errorMessage == "" {
		errorMessage = fmt.Sprintf("handler for %q failed without reporting a reason", action)
	}
	return nil, ocpperr.NewProtocol("dispatcher.HandleCall", errorCode, errorMessage, nil)
}
