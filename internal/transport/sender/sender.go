// Package sender validates an outgoing OCPP request against its schema and
// delegates the call to the RPC transport, translating its result into one
// of the result variants the rest of the module branches on.
package sender

import (
	"context"
	"encoding/json"

	"github.com/go-ocpp/chargepoint/internal/domain/validation"
	"github.com/go-ocpp/chargepoint/internal/ocpperr"
)

// Caller is the subset of rpc.Transport the sender depends on.
type Caller interface {
	Call(ctx context.Context, action string, payload interface{}) (json.RawMessage, *ocpperr.Error)
	IsConnected() bool
}

// Outcome classifies how a Send attempt concluded.
type Outcome int

const (
	Ok Outcome = iota
	Nok
	Timeout
	Disconnected
	InvalidPayload
	InvalidResponse
)

// Result carries the outcome of one Send call and whichever fields apply.
type Result struct {
	Outcome      Outcome
	Response     json.RawMessage
	ErrorCode    string
	ErrorMessage string
}

// Sender validates requests before handing them to the transport.
type Sender struct {
	caller    Caller
	validator *validation.Validator
}

// New builds a Sender over caller, validating outgoing payloads with v.
func New(caller Caller, v *validation.Validator) *Sender {
	return &Sender{caller: caller, validator: v}
}

// IsConnected reports whether the underlying transport currently has a
// live session, passed through so callers don't need their own reference
// to the transport just to check this.
func (s *Sender) IsConnected() bool {
	return s.caller.IsConnected()
}

// Send validates payload against action's schema, then performs the call.
func (s *Sender) Send(ctx context.Context, action string, payload interface{}) Result {
	if err := s.validator.ValidateOCPPMessage(2, "validation-only", action, payload); err != nil {
		return Result{Outcome: InvalidPayload, ErrorMessage: err.Error()}
	}

	if !s.caller.IsConnected() {
		return Result{Outcome: Disconnected}
	}

	response, callErr := s.caller.Call(ctx, action, payload)
	if callErr != nil {
		switch callErr.Kind {
		case ocpperr.Protocol:
			return Result{Outcome: Nok, ErrorCode: callErr.Code, ErrorMessage: callErr.Message}
		case ocpperr.Transient:
			if !s.caller.IsConnected() {
				return Result{Outcome: Disconnected}
			}
			return Result{Outcome: Timeout}
		default:
			return Result{Outcome: Nok, ErrorCode: ocpperr.CodeInternalError, ErrorMessage: callErr.Error()}
		}
	}

	if err := s.validator.ValidateJSON(response); err != nil {
		return Result{Outcome: InvalidResponse, ErrorMessage: err.Error()}
	}
	return Result{Outcome: Ok, Response: response}
}
